package service

import "errors"

// Синхронно возвращаемые ошибки ручных операций. Хэндлер отображает их
// в коды HTTP через errors.Is.
var (
	// ErrAlreadyClockedIn - ручной clock-in при уже открытой сессии
	ErrAlreadyClockedIn = errors.New("already clocked in")
	// ErrNoActiveSession - clock-out без открытой сессии
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidInterval - ручная сессия с end <= start
	ErrInvalidInterval = errors.New("session end must be after start")
	// ErrSessionOverlap - ручная сессия пересекается с существующей
	ErrSessionOverlap = errors.New("session overlaps an existing session")
	// ErrLocationNotFound - неизвестная локация
	ErrLocationNotFound = errors.New("work location not found")
	// ErrSessionNotFound - неизвестная сессия
	ErrSessionNotFound = errors.New("tracking session not found")
	// ErrSessionNotCompleted - правка или удаление открытой сессии.
	// Открытой сессией владеет машина состояний, а не пользователь.
	ErrSessionNotCompleted = errors.New("only completed sessions can be modified")
	// ErrPositionUnavailable - показание позиции не получено за таймаут.
	// Никогда не эскалируется: проверка трактует его как неубедительный
	// результат и ждёт следующего пробуждения.
	ErrPositionUnavailable = errors.New("position reading unavailable")
)
