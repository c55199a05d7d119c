package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	video TEXT NOT NULL,
	started_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	image_name TEXT NOT NULL,
	label TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	image_name TEXT NOT NULL,
	image TEXT NOT NULL,
	heatmap TEXT NOT NULL,
	flat_area_mm2 REAL NOT NULL,
	severity TEXT NOT NULL,
	impact_analysis TEXT NOT NULL,
	x_min INTEGER DEFAULT 0,
	y_min INTEGER DEFAULT 0,
	x_max INTEGER DEFAULT 0,
	y_max INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_labels_run_id ON labels(run_id);
CREATE INDEX IF NOT EXISTS idx_reports_run_id ON reports(run_id);
CREATE INDEX IF NOT EXISTS idx_reports_severity ON reports(severity);
`

// SQLiteReportRepository хранит запуски и отчёты в файле SQLite.
type SQLiteReportRepository struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// NewSQLiteReportRepository открывает базу по пути dbPath и применяет схему.
func NewSQLiteReportRepository(dbPath string) (*SQLiteReportRepository, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteReportRepository{conn: conn}, nil
}

// Close закрывает соединение с базой.
func (r *SQLiteReportRepository) Close() error {
	return r.conn.Close()
}

// SaveRun реализует port.ReportRepository.
func (r *SQLiteReportRepository) SaveRun(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO runs (id, video, started_at) VALUES (?, ?, ?)`,
		summary.RunID.String(), summary.Video, summary.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// SaveLabels реализует port.ReportRepository.
func (r *SQLiteReportRepository) SaveLabels(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO labels (run_id, image_name, label) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range summary.Labels {
		if _, err := stmt.ExecContext(ctx, summary.RunID.String(), c.ImageName, string(c.Label)); err != nil {
			return fmt.Errorf("failed to insert label: %w", err)
		}
	}

	return tx.Commit()
}

// SaveReports реализует port.ReportRepository.
func (r *SQLiteReportRepository) SaveReports(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reports (run_id, image_name, image, heatmap, flat_area_mm2, severity, impact_analysis, x_min, y_min, x_max, y_max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rep := range summary.Reports {
		_, err := stmt.ExecContext(ctx,
			summary.RunID.String(), rep.ImageName, rep.Image, rep.Heatmap, rep.FlatAreaMM2,
			string(rep.Severity), rep.ImpactAnalysis,
			rep.Region.XMin, rep.Region.YMin, rep.Region.XMax, rep.Region.YMax)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
	}

	return tx.Commit()
}

// RecentReports реализует port.ReportRepository.
func (r *SQLiteReportRepository) RecentReports(ctx context.Context, limit int) ([]entity.SeverityReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.conn.QueryContext(ctx, `
		SELECT image_name, image, heatmap, flat_area_mm2, severity, impact_analysis, x_min, y_min, x_max, y_max
		FROM reports ORDER BY id DESC LIMIT ?
	`, limit)
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

var _ port.ReportRepository = (*SQLiteReportRepository)(nil)
