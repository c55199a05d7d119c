package app

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

// LabelsFileName пишется рядом с кадрами, если включено сохранение меток.
const LabelsFileName = "results.txt"

// InspectionConfig настройки сервиса проверки.
type InspectionConfig struct {
	SaveLabels bool
	LabelsDir  string // по умолчанию каталог первого сохранённого кадра
}

// InspectionService прогоняет видео через весь конвейер: выделяет кадры,
// классифицирует их, оценивает ползуны и сохраняет запуск.
type InspectionService struct {
	extractor  *FrameExtractor
	analyzer   *FlatnessAnalyzer
	loader     port.ImageLoader
	classifier port.Classifier
	reports    port.ReportRepository
	notifier   port.ReportNotifier
	logger     *slog.Logger
	cfg        InspectionConfig
}

// NewInspectionService собирает конвейер. notifier может быть nil.
func NewInspectionService(
	extractor *FrameExtractor,
	analyzer *FlatnessAnalyzer,
	loader port.ImageLoader,
	classifier port.Classifier,
	reports port.ReportRepository,
	notifier port.ReportNotifier,
	logger *slog.Logger,
	cfg InspectionConfig,
) *InspectionService {
	return &InspectionService{
		extractor:  extractor,
		analyzer:   analyzer,
		loader:     loader,
		classifier: classifier,
		reports:    reports,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

// Inspect проверяет одно видео и возвращает сводку запуска.
func (s *InspectionService) Inspect(ctx context.Context, videoPath string) (*entity.InspectionSummary, error) {
	tracer := otel.Tracer("app")
	ctx, span := tracer.Start(ctx, "InspectionService.Inspect")
	defer span.End()

	summary := &entity.InspectionSummary{
		RunID:     uuid.New(),
		Video:     videoPath,
		StartedAt: time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("run.id", summary.RunID.String()))

	log := s.logger.With("run_id", summary.RunID.String())
	log.Info("inspection started", "video", videoPath)

	extraction, err := s.extractor.Extract(ctx, videoPath)
	summary.Extraction = extraction
	if err != nil {
		return summary, err
	}

	if err := s.reports.SaveRun(ctx, summary); err != nil {
		return summary, fmt.Errorf("save run: %w", err)
	}

	images := make(map[string]image.Image, extraction.Count())
	for _, frame := range extraction.Frames {
		name := frame.Name()
		img, err := s.loader.Load(frame.Path)
		if err != nil {
			s.skip(log, summary, name, err)
			continue
		}
		label, err := s.classifier.Classify(ctx, name, img)
		if err != nil {
			s.skip(log, summary, name, err)
			continue
		}
		summary.Labels = append(summary.Labels, entity.Classification{ImageName: name, Label: label})
		images[name] = img
	}

	if err := s.reports.SaveLabels(ctx, summary); err != nil {
		return summary, fmt.Errorf("save labels: %w", err)
	}
	if s.cfg.SaveLabels {
		if err := s.writeLabels(summary); err != nil {
			return summary, err
		}
	}

	for _, c := range summary.Labels {
		if c.Label != entity.LabelFlat {
			continue
		}
		report, err := s.analyzer.Analyze(ctx, images[c.ImageName], c.ImageName)
		if err != nil {
			s.skip(log, summary, c.ImageName, err)
			continue
		}
		if report == nil {
			continue
		}
		summary.Reports = append(summary.Reports, *report)
	}

	if err := s.reports.SaveReports(ctx, summary); err != nil {
		return summary, fmt.Errorf("save reports: %w", err)
	}

	s.notify(ctx, log, summary.Reports)

	log.Info("inspection completed",
		"frames", extraction.Count(),
		"labels", len(summary.Labels),
		"reports", len(summary.Reports),
		"skipped", len(summary.Skipped),
	)

	return summary, nil
}

func (s *InspectionService) skip(log *slog.Logger, summary *entity.InspectionSummary, name string, err error) {
	log.Warn("skipping frame", "image", name, "err", err)
	summary.Skipped = append(summary.Skipped, entity.AnalysisOutcome{
		ImageName: name,
		Skipped:   err.Error(),
	})
}

func (s *InspectionService) notify(ctx context.Context, log *slog.Logger, reports []entity.SeverityReport) {
	if s.notifier == nil {
		return
	}
	for _, r := range reports {
		if r.Severity != entity.SeverityHigh {
			continue
		}
		if err := s.notifier.NotifyReport(ctx, r); err != nil {
			log.Error("failed to send alert", "image", r.ImageName, "err", err)
		}
	}
}

func (s *InspectionService) labelsDir(summary *entity.InspectionSummary) string {
	if s.cfg.LabelsDir != "" {
		return s.cfg.LabelsDir
	}
	if summary.Extraction.Count() > 0 {
		return filepath.Dir(summary.Extraction.Frames[0].Path)
	}
	return "."
}

func (s *InspectionService) writeLabels(summary *entity.InspectionSummary) error {
	path := filepath.Join(s.labelsDir(summary), LabelsFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", LabelsFileName, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, c := range summary.Labels {
		fmt.Fprintf(w, "%s: %s\n", c.ImageName, c.Label)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", LabelsFileName, err)
	}
	return nil
}

// PassThroughClassifier помечает каждый кадр как flat, чтобы все они
// попали в анализатор.
type PassThroughClassifier struct{}

// Classify всегда возвращает entity.LabelFlat.
func (PassThroughClassifier) Classify(ctx context.Context, name string, img image.Image) (entity.Label, error) {
	return entity.LabelFlat, nil
}

var _ port.Classifier = PassThroughClassifier{}
