package entity

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition недопустимый переход состояния сессии
var ErrInvalidTransition = errors.New("invalid session state transition")

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu       UserState = "main_menu"       // В главном меню
	StateAwaitingImages UserState = "awaiting_images" // Ожидание DICOM-снимков
	StateProcessing     UserState = "processing"      // Идёт анализ
)

// User оператор QA и состояние его проверки
type User struct {
	ID        int64     // Telegram User ID
	ChatID    int64     // Telegram Chat ID
	State     UserState // Текущее состояние пользователя
	LastRunID string    // последний завершённый прогон
	UpdatedAt time.Time
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// CanTransition в главное меню можно всегда, анализ начинается только из ожидания снимков,
// новая проверка не начинается во время анализа.
func (u *User) CanTransition(to UserState) bool {
	switch to {
	case StateMainMenu:
		return true
	case StateAwaitingImages:
		return u.State != StateProcessing
	case StateProcessing:
		return u.State == StateAwaitingImages
	default:
		return false
	}
}

// Transition меняет состояние, если переход допустим.
func (u *User) Transition(to UserState, now time.Time) error {
	if !u.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, u.State, to)
	}
	u.State = to
	u.UpdatedAt = now
	return nil
}

// FinishRun запоминает прогон и возвращает пользователя в главное меню.
func (u *User) FinishRun(runID string, now time.Time) {
	u.LastRunID = runID
	u.State = StateMainMenu
	u.UpdatedAt = now
}
