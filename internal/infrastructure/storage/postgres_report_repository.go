package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY,
	video TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id SERIAL PRIMARY KEY,
	run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
	image_name TEXT NOT NULL,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id SERIAL PRIMARY KEY,
	run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
	image_name TEXT NOT NULL,
	image TEXT NOT NULL,
	heatmap TEXT NOT NULL,
	flat_area_mm2 DOUBLE PRECISION NOT NULL,
	severity TEXT NOT NULL,
	impact_analysis TEXT NOT NULL,
	x_min INTEGER NOT NULL DEFAULT 0,
	y_min INTEGER NOT NULL DEFAULT 0,
	x_max INTEGER NOT NULL DEFAULT 0,
	y_max INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_run_id ON reports(run_id);
CREATE INDEX IF NOT EXISTS idx_reports_severity ON reports(severity);
`

// PostgresReportRepository хранит запуски и отчёты в PostgreSQL.
type PostgresReportRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReportRepository подключается к databaseURL и при необходимости создаёт схему.
func NewPostgresReportRepository(ctx context.Context, databaseURL string) (*PostgresReportRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	return &PostgresReportRepository{pool: pool}, nil
}

// Close закрывает пул соединений.
func (r *PostgresReportRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// SaveRun реализует port.ReportRepository.
func (r *PostgresReportRepository) SaveRun(ctx context.Context, summary *entity.InspectionSummary) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO runs (id, video, started_at) VALUES ($1, $2, $3)`,
		summary.RunID, summary.Video, summary.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// SaveLabels реализует port.ReportRepository.
func (r *PostgresReportRepository) SaveLabels(ctx context.Context, summary *entity.InspectionSummary) error {
	batch := &pgx.Batch{}
	for _, c := range summary.Labels {
		batch.Queue(`INSERT INTO labels (run_id, image_name, label) VALUES ($1, $2, $3)`,
			summary.RunID, c.ImageName, string(c.Label))
	}
	return r.sendBatch(ctx, batch, "label")
}

// SaveReports реализует port.ReportRepository.
func (r *PostgresReportRepository) SaveReports(ctx context.Context, summary *entity.InspectionSummary) error {
	now := time.Now()
	batch := &pgx.Batch{}
	for _, rep := range summary.Reports {
		batch.Queue(`
			INSERT INTO reports
			(run_id, image_name, image, heatmap, flat_area_mm2, severity, impact_analysis, x_min, y_min, x_max, y_max, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			summary.RunID, rep.ImageName, rep.Image, rep.Heatmap, rep.FlatAreaMM2,
			string(rep.Severity), rep.ImpactAnalysis,
			rep.Region.XMin, rep.Region.YMin, rep.Region.XMax, rep.Region.YMax, now)
	}
	return r.sendBatch(ctx, batch, "report")
}

func (r *PostgresReportRepository) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert %s: %w", what, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}

	return tx.Commit(ctx)
}

// RecentReports реализует port.ReportRepository.
func (r *PostgresReportRepository) RecentReports(ctx context.Context, limit int) ([]entity.SeverityReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT image_name, image, heatmap, flat_area_mm2, severity, impact_analysis, x_min, y_min, x_max, y_max
		FROM reports ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []entity.SeverityReport
	for rows.Next() {
		var rep entity.SeverityReport
		var severity string
		if err := rows.Scan(&rep.ImageName, &rep.Image, &rep.Heatmap, &rep.FlatAreaMM2, &severity, &rep.ImpactAnalysis,
			&rep.Region.XMin, &rep.Region.YMin, &rep.Region.XMax, &rep.Region.YMax); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rep.Severity = entity.Severity(severity)
		reports = append(reports, rep)
	}

	return reports, rows.Err()
}

var _ port.ReportRepository = (*PostgresReportRepository)(nil)
