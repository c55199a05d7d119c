package container

import (
	"log/slog"

	app "wheelflat/internal/application"
	"wheelflat/internal/domain/port"
)

// Ports адаптеры, из которых собираются сервисы.
type Ports struct {
	Opener     port.VideoOpener
	Scorer     port.SimilarityScorer
	Frames     port.FrameStore
	Artifacts  port.ArtifactStore
	Loader     port.ImageLoader
	Contours   port.ContourExtractor
	Renderer   port.ArtifactRenderer
	Classifier port.Classifier
	Reports    port.ReportRepository
	Notifier   port.ReportNotifier // необязателен
	Sessions   port.SessionRepository
}

// Settings настройки сервисов.
type Settings struct {
	Extractor  app.ExtractorConfig
	Analyzer   app.AnalyzerConfig
	Inspection app.InspectionConfig
}

// Container хранит собранные сервисы и ресурсы, которые нужно закрыть.
type Container struct {
	SessionService    *app.SessionService
	FrameExtractor    *app.FrameExtractor
	FlatnessAnalyzer  *app.FlatnessAnalyzer
	BatchAnalyzer     *app.BatchAnalyzer
	InspectionService *app.InspectionService

	Reports  port.ReportRepository
	Renderer port.ArtifactRenderer

	closers []func() error
}

// New собирает сервисы из готовых адаптеров.
func New(p Ports, s Settings, logger *slog.Logger) *Container {
	classifier := p.Classifier
	if classifier == nil {
		classifier = app.PassThroughClassifier{}
	}

	extractor := app.NewFrameExtractor(p.Opener, p.Scorer, p.Frames, logger.With("component", "extractor"), s.Extractor)
	analyzer := app.NewFlatnessAnalyzer(p.Contours, p.Renderer, p.Artifacts, logger.With("component", "analyzer"), s.Analyzer)
	batch := app.NewBatchAnalyzer(analyzer, p.Loader, logger.With("component", "batch"))
	inspection := app.NewInspectionService(extractor, analyzer, p.Loader, classifier, p.Reports, p.Notifier,
		logger.With("component", "inspection"), s.Inspection)

	return &Container{
		SessionService:    app.NewSessionService(p.Sessions),
		FrameExtractor:    extractor,
		FlatnessAnalyzer:  analyzer,
		BatchAnalyzer:     batch,
		InspectionService: inspection,
		Reports:           p.Reports,
		Renderer:          p.Renderer,
	}
}

// Close освобождает всё, что открыл Build, в обратном порядке.
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
