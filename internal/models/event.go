package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы сырых сигналов геозабора
const (
	EventEnter = "enter"
	EventExit  = "exit"
)

// Причины, по которым событие было проигнорировано конвейером фильтрации.
// Игнорирование - это ожидаемый классифицированный исход, а не ошибка.
const (
	IgnoreNone              = "none"
	IgnoreDebounced         = "debounced"
	IgnorePoorAccuracy      = "poor_accuracy"
	IgnoreSignalDegradation = "signal_degradation"
	IgnoreNoSession         = "no_session"
)

// Источники показания точности
const (
	AccuracySourceCallback     = "os_callback"
	AccuracySourceVerification = "verification_check"
)

// GeofenceEvent - неизменяемая запись о сыром сигнале enter/exit.
// События никогда не обновляются и не удаляются: журнал используется
// для отладки и эмпирической подстройки порогов фильтрации.
type GeofenceEvent struct {
	ID             uuid.UUID `json:"id"`
	LocationID     uuid.UUID `json:"location_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Accuracy       *float64  `json:"accuracy,omitempty"`
	AccuracySource string    `json:"accuracy_source"`
	Ignored        bool      `json:"ignored"`
	IgnoreReason   string    `json:"ignore_reason"`
	CreatedAt      time.Time `json:"created_at"`
}
