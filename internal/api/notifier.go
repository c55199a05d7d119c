package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

// Sender часть tgbotapi.BotAPI, нужная оповещателю
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет отчёты в заданный чат
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier создаёт оповещатель, пишущий в chatID
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NewNotifierFromToken подключается к Bot API только ради оповещений
func NewNotifierFromToken(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return NewNotifier(api, chatID), nil
}

// NotifyReport отправляет оповещение об отчёте в чат
func (n *Notifier) NotifyReport(ctx context.Context, report entity.SeverityReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, FormatAlert(report))); err != nil {
		return fmt.Errorf("send alert for %s: %w", report.ImageName, err)
	}
	return nil
}

var _ port.ReportNotifier = (*Notifier)(nil)
