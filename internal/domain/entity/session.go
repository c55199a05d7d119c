package entity

// SessionState шаг диалога, на котором находится чат.
type SessionState string

const (
	StateMainMenu      SessionState = "main_menu"      // ожидание команды
	StateAwaitingPhoto SessionState = "awaiting_photo" // после /check
	StateProcessing    SessionState = "processing"     // идёт анализ
)

// Session описывает один чат Telegram.
type Session struct {
	UserID int64
	ChatID int64
	State  SessionState
}

// NewSession создаёт сессию в главном меню.
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState переводит сессию в другое состояние.
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// In сообщает, находится ли сессия в одном из states.
func (s *Session) In(states ...SessionState) bool {
	for _, st := range states {
		if s.State == st {
			return true
		}
	}
	return false
}
