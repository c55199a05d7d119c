package config

import (
	"fmt"
	"math"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config конфигурация приложения
type Config struct {
	VideoPath           string  `env:"VIDEO_PATH"`
	FramesDir           string  `env:"FRAMES_DIR"           envDefault:"frames"`
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD" envDefault:"0.75"`
	ReferenceMM         float64 `env:"REFERENCE_MM"         envDefault:"100"`
	MinContourArea      float64 `env:"MIN_CONTOUR_AREA"     envDefault:"20"`
	ArtifactDir         string  `env:"ARTIFACT_DIR"         envDefault:"static/results"`
	AnnotateProcessed   bool    `env:"ANNOTATE_PROCESSED"   envDefault:"false"`
	SaveLabels          bool    `env:"SAVE_LABELS"          envDefault:"false"`

	ArtifactStore  string `env:"ARTIFACT_STORE"   envDefault:"fs"`
	MinIOEndpoint  string `env:"MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`
	MinIOBucket    string `env:"MINIO_BUCKET"     envDefault:"wheelflat"`
	MinIOPrefix    string `env:"MINIO_PREFIX"     envDefault:"results"`

	ReportStore string `env:"REPORT_STORE" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"wheelflat.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	TelegramToken string `env:"TELEGRAM_TOKEN"`
	AlertChatID   int64  `env:"ALERT_CHAT_ID"`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
}

// Load читает .env, если он есть, а затем переменные окружения.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate проверяет значения, которые иначе сломали бы конвейер на полпути.
func (c *Config) Validate() error {
	if math.IsNaN(c.SimilarityThreshold) || c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be within [0, 1], got %v", c.SimilarityThreshold)
	}
	if math.IsNaN(c.ReferenceMM) || math.IsInf(c.ReferenceMM, 0) || c.ReferenceMM <= 0 {
		return fmt.Errorf("REFERENCE_MM must be positive, got %v", c.ReferenceMM)
	}
	if math.IsNaN(c.MinContourArea) || c.MinContourArea < 0 {
		return fmt.Errorf("MIN_CONTOUR_AREA must not be negative, got %v", c.MinContourArea)
	}
	switch c.ArtifactStore {
	case "fs", "minio":
	default:
		return fmt.Errorf("unknown ARTIFACT_STORE %q", c.ArtifactStore)
	}
	switch c.ReportStore {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for REPORT_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown REPORT_STORE %q", c.ReportStore)
	}
	return nil
}
