package app

import (
	"context"
	"errors"
	"fmt"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/domain/port"
)

// ErrInvalidTransition возвращается, если диалог не может перейти в запрошенное состояние.
var ErrInvalidTransition = errors.New("invalid session transition")

// SessionService ведёт диалог бота: main_menu → awaiting_photo → processing → main_menu.
type SessionService struct {
	repo port.SessionRepository
}

// NewSessionService создаёт сервис сессий поверх repo.
func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Get возвращает текущую сессию пользователя.
func (s *SessionService) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// BeginCheck переводит сессию в ожидание фото. Идущую обработку не трогает.
func (s *SessionService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.transition(ctx, userID, chatID, entity.StateAwaitingPhoto, entity.StateMainMenu, entity.StateAwaitingPhoto)
}

// BeginProcessing занимает ожидающую проверку под только что пришедшее фото.
// Если сессия не ждёт фото, возвращает ErrInvalidTransition и текущую
// сессию, по которой видно её состояние.
func (s *SessionService) BeginProcessing(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.transition(ctx, userID, chatID, entity.StateProcessing, entity.StateAwaitingPhoto)
}

// Reset возвращает сессию в главное меню из любого состояния.
func (s *SessionService) Reset(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.transition(ctx, userID, chatID, entity.StateMainMenu)
}

// transition переводит сессию в target, если текущее состояние входит в from;
// пустой from допускает любое состояние.
func (s *SessionService) transition(ctx context.Context, userID, chatID int64, target entity.SessionState, from ...entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if len(from) > 0 && !session.In(from...) {
		return session, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.State, target)
	}

	session.SetState(target)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
