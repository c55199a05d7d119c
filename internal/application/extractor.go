package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/metrics"
)

var (
	ErrStreamOpen       = errors.New("video stream could not be opened")
	ErrInvalidThreshold = errors.New("similarity threshold must be within [0, 1]")
	ErrImageSize        = errors.New("frame size differs from the previous frame")
)

// DefaultThreshold сходство, ниже которого кадр считается новым колесом.
const DefaultThreshold = 0.75

// ExtractorConfig настройки выделения кадров.
type ExtractorConfig struct {
	Threshold float64
}

// FrameExtractor оставляет из видео по одному кадру на колесо.
type FrameExtractor struct {
	opener port.VideoOpener
	scorer port.SimilarityScorer
	store  port.FrameStore
	logger *slog.Logger
	cfg    ExtractorConfig
}

// NewFrameExtractor создаёт экстрактор кадров с порогом сходства из cfg.
func NewFrameExtractor(opener port.VideoOpener, scorer port.SimilarityScorer, store port.FrameStore, logger *slog.Logger, cfg ExtractorConfig) *FrameExtractor {
	return &FrameExtractor{
		opener: opener,
		scorer: scorer,
		store:  store,
		logger: logger,
		cfg:    cfg,
	}
}

// Extract читает поток целиком и сохраняет каждый кадр, сходство которого с
// последним сохранённым ниже порога. Первый кадр сохраняется всегда.
//
// Отмена ctx или закрытие потока досрочно завершают проход: уже сохранённые
// кадры возвращаются без ошибки.
func (e *FrameExtractor) Extract(ctx context.Context, videoPath string) (*entity.ExtractionResult, error) {
	tracer := otel.Tracer("app")
	ctx, span := tracer.Start(ctx, "FrameExtractor.Extract", trace.WithAttributes(
		attribute.String("video.path", videoPath),
		attribute.Float64("extractor.threshold", e.cfg.Threshold),
	))
	defer span.End()

	result := &entity.ExtractionResult{}

	if math.IsNaN(e.cfg.Threshold) || e.cfg.Threshold < 0 || e.cfg.Threshold > 1 {
		return result, fmt.Errorf("%w: %v", ErrInvalidThreshold, e.cfg.Threshold)
	}

	start := time.Now()
	source, err := e.opener.Open(ctx, videoPath)
	if err != nil {
		span.SetStatus(codes.Error, "open failed")
		e.logger.Error("failed to open video", "path", videoPath, "err", err)
		return result, fmt.Errorf("%w: %s: %v", ErrStreamOpen, videoPath, err)
	}
	defer source.Close()

	counter := entity.NewAxleCounter()
	var last *entity.Frame

	for {
		frame, err := source.Next(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("read frame %d: %w", result.FramesRead, err)
		}
		if frame.Gray == nil {
			return result, fmt.Errorf("frame %d has no grayscale plane", frame.Index)
		}

		result.FramesRead++
		metrics.FramesReadTotal.Inc()

		if last != nil {
			if !frame.Gray.Rect.Size().Eq(last.Gray.Rect.Size()) {
				return result, fmt.Errorf("%w: frame %d is %v, expected %v",
					ErrImageSize, frame.Index, frame.Gray.Rect.Size(), last.Gray.Rect.Size())
			}
			score, err := e.scorer.Score(last.Gray, frame.Gray)
			if err != nil {
				return result, fmt.Errorf("score frame %d: %w", frame.Index, err)
			}
			if score >= e.cfg.Threshold {
				continue
			}
		}

		wheel, axle := counter.Next()
		name := entity.FrameName(wheel, axle)
		path, err := e.store.SaveFrame(ctx, name, frame.Image)
		if err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("save frame %s: %w", name, err)
		}

		result.Frames = append(result.Frames, entity.RetainedFrame{
			WheelIndex:  wheel,
			AxleIndex:   axle,
			SourceIndex: frame.Index,
			Path:        path,
		})
		metrics.FramesRetainedTotal.Inc()

		kept := frame
		last = &kept
		e.logger.Debug("frame retained", "name", name, "source_index", frame.Index)
	}

	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("frames.read", result.FramesRead),
		attribute.Int("frames.retained", result.Count()),
	)
	e.logger.Info("extraction completed",
		"video", videoPath,
		"retained", result.Count(),
		"read", result.FramesRead,
		"duration", time.Since(start).String(),
	)

	return result, nil
}
