package port

import (
	"context"

	"wheelflat/internal/domain/entity"
)

// SessionRepository хранит сессии чатов бота.
type SessionRepository interface {
	// Get возвращает сессию пользователя, создаёт новую если не найдена.
	Get(ctx context.Context, userID, chatID int64) (*entity.Session, error)

	// Save сохраняет состояние сессии.
	Save(ctx context.Context, session *entity.Session) error
}
