package v1

import (
	"time"

	"github.com/google/uuid"
)

// RegisterLocationRequest DTO для регистрации рабочей локации
// @Description DTO для регистрации рабочей локации
type RegisterLocationRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Latitude     float64 `json:"latitude" validate:"required,latitude"`
	Longitude    float64 `json:"longitude" validate:"required,longitude"`
	RadiusMeters int     `json:"radius_meters" validate:"required,gt=0"`
}

// LocationResponse DTO для ответа с информацией о локации
// @Description DTO для ответа с информацией о локации
type LocationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GeofenceEventRequest DTO для сырого сигнала enter/exit от монитора регионов
// @Description DTO для сырого сигнала enter/exit от монитора регионов
type GeofenceEventRequest struct {
	LocationID uuid.UUID `json:"location_id" validate:"required"`
	EventType  string    `json:"event_type" validate:"required,oneof=enter exit"`
	Timestamp  time.Time `json:"timestamp" validate:"required"`
	Latitude   float64   `json:"latitude" validate:"required,latitude"`
	Longitude  float64   `json:"longitude" validate:"required,longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

// GeofenceEventResponse DTO для ответа с классифицированным событием
// @Description DTO для ответа с классифицированным событием
type GeofenceEventResponse struct {
	ID           uuid.UUID `json:"id"`
	LocationID   uuid.UUID `json:"location_id"`
	EventType    string    `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	Ignored      bool      `json:"ignored"`
	IgnoreReason string    `json:"ignore_reason"`
}

// ClockRequest DTO для ручного clock-in/clock-out
// @Description DTO для ручного clock-in/clock-out
type ClockRequest struct {
	LocationID uuid.UUID `json:"location_id" validate:"required"`
}

// ManualSessionRequest DTO для ретроактивной ручной сессии
// @Description DTO для ретроактивной ручной сессии
type ManualSessionRequest struct {
	LocationID uuid.UUID `json:"location_id" validate:"required"`
	Start      time.Time `json:"start" validate:"required"`
	End        time.Time `json:"end" validate:"required"`
}

// SessionUpdateRequest DTO для частичной правки завершённой сессии.
// Незаполненные поля остаются без изменений.
// @Description DTO для частичной правки завершённой сессии
type SessionUpdateRequest struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// SessionResponse DTO для ответа с информацией о сессии
// @Description DTO для ответа с информацией о сессии
type SessionResponse struct {
	ID              uuid.UUID  `json:"id"`
	LocationID      uuid.UUID  `json:"location_id"`
	ClockIn         time.Time  `json:"clock_in"`
	ClockOut        *time.Time `json:"clock_out,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	TrackingMethod  string     `json:"tracking_method"`
	State           string     `json:"state"`
	PendingExitAt   *time.Time `json:"pending_exit_at,omitempty"`
	IsShort         bool       `json:"is_short"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PositionReportRequest DTO для показания позиции устройства
// @Description DTO для показания позиции устройства
type PositionReportRequest struct {
	Latitude  float64   `json:"latitude" validate:"required,latitude"`
	Longitude float64   `json:"longitude" validate:"required,longitude"`
	Accuracy  float64   `json:"accuracy" validate:"required,gte=0"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ReconcileResponse DTO для ответа прохода выверки
// @Description DTO для ответа прохода выверки
type ReconcileResponse struct {
	Confirmed int `json:"confirmed"`
}

// StatsResponse DTO для ответа со статистикой трекинга
// @Description DTO для ответа со статистикой трекинга
type StatsResponse struct {
	CompletedSessions int            `json:"completed_sessions"`
	TrackedMinutes    int            `json:"tracked_minutes"`
	IgnoredEvents     map[string]int `json:"ignored_events"`
}
