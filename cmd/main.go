package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wheelflat/config"
	telegram "wheelflat/internal/api"
	"wheelflat/internal/container"
	"wheelflat/internal/domain/entity"
	"wheelflat/internal/infrastructure/logging"
	"wheelflat/internal/infrastructure/metrics"
	"wheelflat/internal/infrastructure/tracing"
)

const usage = `usage: wheelflat <command> [flags]

commands:
  extract   keep one frame per wheel from a video
  analyze   grade flat areas on every image in a directory
  inspect   extract, classify and grade a video end to end
  bot       run the Telegram bot`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	dir, err := parseFlags(cmd, os.Args[2:], cfg)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, usage)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cmd, dir, cfg, logger); err != nil {
		logger.Error("command failed", "command", cmd, "err", err)
		os.Exit(1)
	}
}

// parseFlags накладывает флаги командной строки поверх окружения и
// возвращает каталог для analyze. Флаги можно писать и после каталога.
func parseFlags(cmd string, args []string, cfg *config.Config) (string, error) {
	switch cmd {
	case "extract", "analyze", "inspect", "bot":
	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&cfg.VideoPath, "video", cfg.VideoPath, "video file or directory of frames")
	fs.StringVar(&cfg.FramesDir, "frames", cfg.FramesDir, "directory for retained frames")
	fs.Float64Var(&cfg.SimilarityThreshold, "threshold", cfg.SimilarityThreshold, "similarity below which a frame is kept")
	fs.Float64Var(&cfg.ReferenceMM, "reference-mm", cfg.ReferenceMM, "physical length of the image side in mm")
	fs.Float64Var(&cfg.MinContourArea, "min-area", cfg.MinContourArea, "smallest contour area in pixels")
	fs.StringVar(&cfg.ArtifactDir, "artifacts", cfg.ArtifactDir, "directory for processed images and heat maps")
	fs.BoolVar(&cfg.AnnotateProcessed, "annotate", cfg.AnnotateProcessed, "outline the region on processed images")
	fs.BoolVar(&cfg.SaveLabels, "save-labels", cfg.SaveLabels, "write results.txt next to the frames")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	dir := fs.String("dir", "", "image directory (analyze)")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	switch {
	case len(positional) > 1:
		return "", fmt.Errorf("unexpected arguments %v", positional[1:])
	case len(positional) == 1 && *dir == "":
		*dir = positional[0]
	case len(positional) == 1:
		return "", fmt.Errorf("directory given twice: %q and -dir %q", positional[0], *dir)
	}
	return *dir, nil
}

func run(ctx context.Context, cmd, dir string, cfg *config.Config, logger *slog.Logger) error {
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint, "wheelflat")
		if err != nil {
			logger.Warn("tracing init failed, continuing without tracing", "err", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				tp.Shutdown(shutdownCtx)
			}()
		}
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.StartServer(ctx, cfg.MetricsPort, logger)
		defer srv.Close()
	}

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	switch cmd {
	case "extract":
		if cfg.VideoPath == "" {
			return errors.New("video path is required")
		}
		result, err := c.FrameExtractor.Extract(ctx, cfg.VideoPath)
		if err != nil {
			return err
		}
		for _, f := range result.Frames {
			fmt.Println(f.Path)
		}
		return nil

	case "analyze":
		if dir == "" {
			dir = cfg.FramesDir
		}
		reports, outcomes, err := c.BatchAnalyzer.AnalyzeDir(ctx, dir)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if !o.OK() {
				logger.Warn("image skipped", "image", o.ImageName, "reason", o.Skipped)
			}
		}
		if reports == nil {
			reports = []entity.SeverityReport{}
		}
		return writeJSON(os.Stdout, reports)

	case "inspect":
		if cfg.VideoPath == "" {
			return errors.New("video path is required")
		}
		summary, err := c.InspectionService.Inspect(ctx, cfg.VideoPath)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, inspectOutput{
			RunID:   summary.RunID.String(),
			Labels:  summary.LabelMap(),
			Reports: summary.Reports,
		})

	case "bot":
		if cfg.TelegramToken == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}
		bot, err := telegram.NewBot(cfg.TelegramToken, c.SessionService, c.FlatnessAnalyzer, c.Renderer, c.Reports, logger)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		logger.Info("bot is running")
		return bot.Run(ctx)
	}

	return fmt.Errorf("unknown command %q", cmd)
}

type inspectOutput struct {
	RunID   string                  `json:"run_id"`
	Labels  map[string]entity.Label `json:"labels"`
	Reports []entity.SeverityReport `json:"reports"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
