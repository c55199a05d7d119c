package port

import (
	"context"

	"wheelflat/internal/domain/entity"
)

// ReportRepository хранит запуски проверки и их результаты.
type ReportRepository interface {
	// SaveRun фиксирует начало запуска.
	SaveRun(ctx context.Context, summary *entity.InspectionSummary) error

	// SaveLabels сохраняет метки классификатора для запуска.
	SaveLabels(ctx context.Context, summary *entity.InspectionSummary) error

	// SaveReports сохраняет отчёты запуска.
	SaveReports(ctx context.Context, summary *entity.InspectionSummary) error

	// RecentReports возвращает не больше limit отчётов, новые первыми.
	RecentReports(ctx context.Context, limit int) ([]entity.SeverityReport, error)
}

// ReportNotifier отправляет отчёт тем, кто должен на него отреагировать.
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report entity.SeverityReport) error
}
