package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	app "wheelflat/internal/application"
	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
	"wheelflat/internal/infrastructure/imaging"
)

const (
	msgStart = `👋 Привет! Я оцениваю ползуны на поверхности катания колёс.

📸 Отправьте фото колеса, и я измерю площадь ползуна и степень опасности.

📋 Команды:
/check — проверить колесо
/last — последние отчёты
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Отправьте фото поверхности катания
3️⃣ Получите степень опасности, площадь ползуна в мм² и тепловую карту

💡 Советы:
• Снимайте поверхность катания прямо, без наклона
• Колесо должно целиком попадать в кадр
• Избегайте смазанных снимков

📋 Команды:
/check — начать проверку
/last — последние отчёты
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото поверхности катания колеса."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Отправьте /check, а затем фото поверхности катания."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNoFlat          = "✅ Ползун не обнаружен."
	msgNoReports       = "Отчётов пока нет."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgBusy            = "⏳ Ещё обрабатываю предыдущее фото."

	recentLimit = 5
)

// Bot отвечает на фото колеса отчётом о ползуне
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *app.SessionService
	analyzer *app.FlatnessAnalyzer
	renderer port.ArtifactRenderer
	reports  port.ReportRepository
	logger   *slog.Logger
}

// NewBot создаёт бота и подключается к Telegram Bot API
func NewBot(
	token string,
	sessions *app.SessionService,
	analyzer *app.FlatnessAnalyzer,
	renderer port.ArtifactRenderer,
	reports port.ReportRepository,
	logger *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized on telegram", "account", api.Self.UserName)

	return &Bot{
		api:      api,
		sessions: sessions,
		analyzer: analyzer,
		renderer: renderer,
		reports:  reports,
		logger:   logger,
	}, nil
}

// API отдаёт клиента, чтобы оповещения шли через то же соединение
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("failed to load session", "chat_id", msg.Chat.ID, "err", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, session)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := session.UserID, session.ChatID

	switch msg.Command() {
	case "start":
		b.reset(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		current, err := b.sessions.BeginCheck(ctx, userID, chatID)
		if err != nil {
			b.refusePhoto(chatID, current, err)
			return
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		b.reset(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "last":
		reports, err := b.reports.RecentReports(ctx, recentLimit)
		if err != nil {
			b.logger.Error("failed to load reports", "err", err)
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, FormatRecent(reports))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := session.UserID, session.ChatID

	current, err := b.sessions.BeginProcessing(ctx, userID, chatID)
	if err != nil {
		b.refusePhoto(chatID, current, err)
		return
	}
	defer b.reset(ctx, userID, chatID)

	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.logger.Error("failed to download photo", "chat_id", chatID, "err", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		b.logger.Warn("failed to decode photo", "chat_id", chatID, "err", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	name := PhotoName(chatID, msg.MessageID)
	report, err := b.analyzer.Analyze(ctx, img, name)
	if err != nil {
		b.logger.Error("analysis failed", "image", name, "err", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if report == nil {
		b.sendMessage(chatID, msgNoFlat)
		return
	}

	b.storeReport(ctx, name, report)

	b.sendHeatmap(chatID, img, report)
}

func (b *Bot) storeReport(ctx context.Context, name string, report *entity.SeverityReport) {
	summary := &entity.InspectionSummary{
		RunID:     uuid.New(),
		Video:     name,
		StartedAt: time.Now().UTC(),
		Reports:   []entity.SeverityReport{*report},
	}
	if err := b.reports.SaveRun(ctx, summary); err != nil {
		b.logger.Error("failed to store run", "image", name, "err", err)
		return
	}
	if err := b.reports.SaveReports(ctx, summary); err != nil {
		b.logger.Error("failed to store report", "image", name, "err", err)
	}
}

func (b *Bot) sendHeatmap(chatID int64, img image.Image, report *entity.SeverityReport) {
	heatmap, err := b.renderer.Heatmap(img)
	if err != nil {
		b.logger.Warn("failed to render heatmap", "err", err)
		b.sendMessage(chatID, FormatReport(*report))
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, report.Heatmap, heatmap); err != nil {
		b.logger.Warn("failed to encode heatmap", "err", err)
		b.sendMessage(chatID, FormatReport(*report))
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: report.Heatmap, Bytes: buf.Bytes()})
	photo.Caption = FormatReport(*report)
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send photo", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) reset(ctx context.Context, userID, chatID int64) {
	if _, err := b.sessions.Reset(ctx, userID, chatID); err != nil {
		b.logger.Error("failed to save session", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) refusePhoto(chatID int64, session *entity.Session, err error) {
	if !errors.Is(err, app.ErrInvalidTransition) {
		b.logger.Error("failed to update session", "chat_id", chatID, "err", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	b.sendMessage(chatID, refusalMessage(session))
}

// refusalMessage объясняет, почему сессия сейчас не может принять фото
func refusalMessage(session *entity.Session) string {
	if session != nil && session.State == entity.StateProcessing {
		return msgBusy
	}
	return msgSendPhoto
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "err", err)
	}
}
