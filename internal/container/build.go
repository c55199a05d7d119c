package container

import (
	"context"
	"fmt"
	"log/slog"

	"wheelflat/config"
	telegram "wheelflat/internal/api"
	app "wheelflat/internal/application"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
	"wheelflat/internal/infrastructure/storage"
	"wheelflat/internal/infrastructure/video"
	"wheelflat/internal/infrastructure/vision"
)

// SettingsFromConfig переносит конфигурацию в настройки сервисов.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Extractor: app.ExtractorConfig{Threshold: cfg.SimilarityThreshold},
		Analyzer: app.AnalyzerConfig{
			ReferenceMM:    cfg.ReferenceMM,
			MinContourArea: cfg.MinContourArea,
			Annotate:       cfg.AnnotateProcessed,
		},
		Inspection: app.InspectionConfig{
			SaveLabels: cfg.SaveLabels,
			LabelsDir:  cfg.FramesDir,
		},
	}
}

// Build открывает выбранные в cfg адаптеры и собирает сервисы.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	var closers []func() error
	fail := func(err error) (*Container, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	loader := imaging.NewFileLoader()
	processor := vision.NewGoCVProcessor()

	frames, err := storage.NewFileStore(cfg.FramesDir)
	if err != nil {
		return fail(err)
	}

	artifacts, err := artifactStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	reports, closeReports, err := reportRepository(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if closeReports != nil {
		closers = append(closers, closeReports)
	}

	var notifier port.ReportNotifier
	if cfg.TelegramToken != "" && cfg.AlertChatID != 0 {
		n, err := telegram.NewNotifierFromToken(cfg.TelegramToken, cfg.AlertChatID)
		if err != nil {
			return fail(err)
		}
		notifier = n
	}

	c := New(Ports{
		Opener:     video.NewOpener(loader),
		Scorer:     imaging.NewSSIM(),
		Frames:     frames,
		Artifacts:  artifacts,
		Loader:     loader,
		Contours:   processor,
		Renderer:   processor,
		Classifier: app.PassThroughClassifier{},
		Reports:    reports,
		Notifier:   notifier,
		Sessions:   storage.NewMemorySessionRepository(),
	}, SettingsFromConfig(cfg), logger)
	c.closers = closers

	logger.Info("container ready",
		"artifact_store", cfg.ArtifactStore,
		"report_store", cfg.ReportStore,
		"alerts", notifier != nil,
	)
	return c, nil
}

func artifactStore(ctx context.Context, cfg *config.Config) (port.ArtifactStore, error) {
	switch cfg.ArtifactStore {
	case "minio":
		store, err := storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOBucket,
			Prefix:    cfg.MinIOPrefix,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "fs", "":
		return storage.NewFileStore(cfg.ArtifactDir)
	default:
		return nil, fmt.Errorf("unknown artifact store %q", cfg.ArtifactStore)
	}
}

func reportRepository(ctx context.Context, cfg *config.Config) (port.ReportRepository, func() error, error) {
	switch cfg.ReportStore {
	case "sqlite":
		repo, err := storage.NewSQLiteReportRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case "postgres":
		repo, err := storage.NewPostgresReportRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { repo.Close(); return nil }, nil
	case "memory", "":
		return storage.NewMemoryReportRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown report store %q", cfg.ReportStore)
	}
}
