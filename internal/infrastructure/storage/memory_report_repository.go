package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

// MemoryReportRepository in-memory хранилище запусков и отчётов
type MemoryReportRepository struct {
	mu      sync.RWMutex
	runs    map[uuid.UUID]string
	labels  map[uuid.UUID][]entity.Classification
	reports []entity.SeverityReport
}

// NewMemoryReportRepository создаёт пустое хранилище
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{
		runs:   make(map[uuid.UUID]string),
		labels: make(map[uuid.UUID][]entity.Classification),
	}
}

// SaveRun реализует port.ReportRepository.
func (r *MemoryReportRepository) SaveRun(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	r.runs[summary.RunID] = summary.Video
	r.mu.Unlock()
	return nil
}

// SaveLabels реализует port.ReportRepository.
func (r *MemoryReportRepository) SaveLabels(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	r.labels[summary.RunID] = append([]entity.Classification(nil), summary.Labels...)
	r.mu.Unlock()
	return nil
}

// SaveReports реализует port.ReportRepository.
func (r *MemoryReportRepository) SaveReports(ctx context.Context, summary *entity.InspectionSummary) error {
	r.mu.Lock()
	r.reports = append(r.reports, summary.Reports...)
	r.mu.Unlock()
	return nil
}

// RecentReports реализует port.ReportRepository.
func (r *MemoryReportRepository) RecentReports(ctx context.Context, limit int) ([]entity.SeverityReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.SeverityReport, 0, min(limit, len(r.reports)))
	for i := len(r.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.reports[i])
	}
	return out, nil
}

var _ port.ReportRepository = (*MemoryReportRepository)(nil)
