package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationState - долговечное, но эфемерное состояние поэтапной
// проверки выхода. Существует только пока проверка не разрешена:
// удаляется при отмене, подтверждении или финальном неубедительном
// результате. Хранит копию геометрии геозабора, чтобы пробуждение
// после холодного рестарта могло классифицировать позицию без
// дополнительных запросов.
type VerificationState struct {
	SessionID     uuid.UUID `json:"session_id"`
	LocationID    uuid.UUID `json:"location_id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	RadiusMeters  int       `json:"radius_meters"`
	PendingExitAt time.Time `json:"pending_exit_at"`
	CheckIndex    int       `json:"check_index"`
}
