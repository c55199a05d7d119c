package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/metrics"
)

var (
	ErrEmptyImage       = errors.New("image has no pixels")
	ErrInvalidReference = errors.New("reference length must be a positive number")
)

const (
	DefaultReferenceMM    = 100.0
	DefaultMinContourArea = 20.0
)

// AnalyzerConfig настройки анализатора ползунов.
type AnalyzerConfig struct {
	ReferenceMM    float64 // физическая длина стороны кадра, мм
	MinContourArea float64 // контуры меньше этой площади в пикселях считаются шумом
	Annotate       bool    // обводить область на обработанном изображении
}

// DefaultAnalyzerConfig возвращает калибровку по умолчанию.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ReferenceMM:    DefaultReferenceMM,
		MinContourArea: DefaultMinContourArea,
	}
}

// FlatnessAnalyzer находит ползун на снимке колеса и оценивает его.
type FlatnessAnalyzer struct {
	contours port.ContourExtractor
	renderer port.ArtifactRenderer
	store    port.ArtifactStore
	logger   *slog.Logger
	cfg      AnalyzerConfig
}

// NewFlatnessAnalyzer создаёт анализатор с калибровкой из cfg.
func NewFlatnessAnalyzer(contours port.ContourExtractor, renderer port.ArtifactRenderer, store port.ArtifactStore, logger *slog.Logger, cfg AnalyzerConfig) *FlatnessAnalyzer {
	return &FlatnessAnalyzer{
		contours: contours,
		renderer: renderer,
		store:    store,
		logger:   logger,
		cfg:      cfg,
	}
}

// Analyze возвращает отчёт для img или nil, если ни один контур не
// дотягивает до минимальной площади. Артефакты пишутся только вместе с отчётом.
func (a *FlatnessAnalyzer) Analyze(ctx context.Context, img image.Image, name string) (*entity.SeverityReport, error) {
	tracer := otel.Tracer("app")
	ctx, span := tracer.Start(ctx, "FlatnessAnalyzer.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("image.name", name))

	if math.IsNaN(a.cfg.ReferenceMM) || math.IsInf(a.cfg.ReferenceMM, 0) || a.cfg.ReferenceMM <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, a.cfg.ReferenceMM)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, name)
	}

	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	contours, err := a.contours.Contours(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("find contours in %s: %w", name, err)
	}

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	region, ok := entity.UnionRegion(contours, a.cfg.MinContourArea, width, height)
	if !ok {
		a.logger.Debug("no flat area found", "image", name, "contours", len(contours))
		return nil, nil
	}

	area := entity.FlatArea(region, width, height, a.cfg.ReferenceMM)
	severity := entity.ClassifySeverity(area)

	report := &entity.SeverityReport{
		ImageName:      name,
		Image:          entity.ProcessedName(name),
		Heatmap:        entity.HeatmapName(name),
		FlatAreaMM2:    area,
		Severity:       severity,
		ImpactAnalysis: entity.Impact(severity),
		Region:         region,
	}

	if err := a.saveArtifacts(ctx, img, report); err != nil {
		return nil, err
	}

	metrics.ReportsTotal.WithLabelValues(string(severity)).Inc()
	metrics.FlatAreaMM2.Observe(area)
	span.SetAttributes(
		attribute.Float64("flat_area_mm2", area),
		attribute.String("severity", string(severity)),
	)
	a.logger.Info("flat area measured",
		"image", name,
		"flat_area_mm2", entity.RoundArea(area),
		"severity", severity,
	)

	return report, nil
}

func (a *FlatnessAnalyzer) saveArtifacts(ctx context.Context, img image.Image, report *entity.SeverityReport) error {
	processed := img
	if a.cfg.Annotate {
		annotated, err := a.renderer.Annotate(img, report.Region)
		if err != nil {
			return fmt.Errorf("annotate %s: %w", report.ImageName, err)
		}
		processed = annotated
	}
	if _, err := a.store.SaveArtifact(ctx, report.Image, processed); err != nil {
		return fmt.Errorf("save %s: %w", report.Image, err)
	}

	heatmap, err := a.renderer.Heatmap(img)
	if err != nil {
		return fmt.Errorf("render heatmap for %s: %w", report.ImageName, err)
	}
	if _, err := a.store.SaveArtifact(ctx, report.Heatmap, heatmap); err != nil {
		return fmt.Errorf("save %s: %w", report.Heatmap, err)
	}

	return nil
}
