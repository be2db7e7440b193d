package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkLocation представляет круглый геозабор рабочего места.
// Все зарегистрированные локации хранятся в бд, чтобы после холодного
// старта процесса их можно было перерегистрировать в мониторе регионов.
type WorkLocation struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
