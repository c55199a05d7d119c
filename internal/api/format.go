package telegram

import (
	"fmt"
	"strings"

	"wheelflat/internal/domain/entity"
)

// PhotoName даёт имя фото, полученному из чата
func PhotoName(chatID int64, messageID int) string {
	return fmt.Sprintf("telegram_%d_%d.jpg", chatID, messageID)
}

func severityIcon(s entity.Severity) string {
	switch s {
	case entity.SeverityHigh:
		return "🔴"
	case entity.SeverityMedium:
		return "🟠"
	case entity.SeverityLow:
		return "🟡"
	default:
		return "🟢"
	}
}

// FormatReport превращает отчёт в сообщение для чата
func FormatReport(r entity.SeverityReport) string {
	return fmt.Sprintf("%s %s\nПлощадь ползуна: %.2f мм²\n%s",
		severityIcon(r.Severity), r.Severity, entity.RoundArea(r.FlatAreaMM2), r.ImpactAnalysis)
}

// FormatAlert формирует оповещение для дежурного чата
func FormatAlert(r entity.SeverityReport) string {
	return fmt.Sprintf("🚨 %s\n%s", r.ImageName, FormatReport(r))
}

// FormatRecent формирует короткий список отчётов, новые сверху
func FormatRecent(reports []entity.SeverityReport) string {
	if len(reports) == 0 {
		return msgNoReports
	}

	var sb strings.Builder
	sb.WriteString("📋 Последние отчёты:\n")
	for i, r := range reports {
		fmt.Fprintf(&sb, "%d. %s %s: %.2f мм² (%s)\n",
			i+1, severityIcon(r.Severity), r.ImageName, entity.RoundArea(r.FlatAreaMM2), r.Severity)
	}
	return strings.TrimRight(sb.String(), "\n")
}
