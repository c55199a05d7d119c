package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
	"wheelflat/internal/infrastructure/metrics"
)

// BatchAnalyzer прогоняет анализатор ползунов по каталогу изображений.
type BatchAnalyzer struct {
	analyzer *FlatnessAnalyzer
	loader   port.ImageLoader
	logger   *slog.Logger
}

// NewBatchAnalyzer создаёт пакетный анализатор поверх analyzer.
func NewBatchAnalyzer(analyzer *FlatnessAnalyzer, loader port.ImageLoader, logger *slog.Logger) *BatchAnalyzer {
	return &BatchAnalyzer{
		analyzer: analyzer,
		loader:   loader,
		logger:   logger,
	}
}

// AnalyzeDir анализирует все изображения каталога в порядке имён. Файл, который
// не удалось декодировать или проанализировать, пропускается и попадает в outcomes.
func (b *BatchAnalyzer) AnalyzeDir(ctx context.Context, dir string) ([]entity.SeverityReport, []entity.AnalysisOutcome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read image directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && imaging.IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var reports []entity.SeverityReport
	outcomes := make([]entity.AnalysisOutcome, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return reports, outcomes, err
		}

		outcome := b.analyzeFile(ctx, filepath.Join(dir, name), name)
		outcomes = append(outcomes, outcome)
		if outcome.Found() {
			reports = append(reports, *outcome.Report)
		}
	}

	b.logger.Info("batch analysis completed",
		"dir", dir,
		"images", len(names),
		"reports", len(reports),
	)

	return reports, outcomes, nil
}

func (b *BatchAnalyzer) analyzeFile(ctx context.Context, path, name string) entity.AnalysisOutcome {
	outcome := entity.AnalysisOutcome{ImageName: name}

	img, err := b.loader.Load(path)
	if err != nil {
		outcome.Skipped = err.Error()
		b.logger.Warn("skipping image", "image", name, "err", err)
		metrics.ImagesAnalyzedTotal.WithLabelValues("skipped").Inc()
		return outcome
	}

	report, err := b.analyzer.Analyze(ctx, img, name)
	if err != nil {
		outcome.Skipped = err.Error()
		b.logger.Warn("skipping image", "image", name, "err", err)
		metrics.ImagesAnalyzedTotal.WithLabelValues("skipped").Inc()
		return outcome
	}

	outcome.Report = report
	if report != nil {
		metrics.ImagesAnalyzedTotal.WithLabelValues("flat").Inc()
	} else {
		metrics.ImagesAnalyzedTotal.WithLabelValues("clean").Inc()
	}
	return outcome
}
