package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Состояния рабочей сессии
const (
	SessionActive      = "active"
	SessionPendingExit = "pending_exit"
	SessionCompleted   = "completed"
)

// Способ создания сессии
const (
	MethodGeofenceAuto = "geofence_auto"
	MethodManual       = "manual"
)

// TrackingSession - запись о рабочей сессии (clock-in/clock-out).
// Инварианты: ClockOut != nil <=> State == completed,
// PendingExitAt != nil <=> State == pending_exit. Переходы выполняются
// только через методы ниже, чтобы поля не разъезжались.
type TrackingSession struct {
	ID              uuid.UUID `json:"id"`
	LocationID      uuid.UUID `json:"location_id"`
	ClockIn         time.Time `json:"clock_in"`
	ClockOut        *time.Time `json:"clock_out,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	TrackingMethod  string    `json:"tracking_method"`
	State           string    `json:"state"`
	PendingExitAt   *time.Time `json:"pending_exit_at,omitempty"`
	ExitAccuracy    *float64  `json:"exit_accuracy,omitempty"`
	CheckinAccuracy *float64  `json:"checkin_accuracy,omitempty"`
	IsShort         bool      `json:"is_short"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsOpen сообщает, занимает ли сессия локацию (active или pending_exit).
func (s *TrackingSession) IsOpen() bool {
	return s.State == SessionActive || s.State == SessionPendingExit
}

// MarkPendingExit переводит активную сессию в состояние pending_exit.
// Повторный вызов на уже ожидающей сессии ничего не меняет.
func (s *TrackingSession) MarkPendingExit(exitAt time.Time, exitAccuracy *float64) {
	if s.State != SessionActive {
		return
	}
	s.State = SessionPendingExit
	s.PendingExitAt = &exitAt
	s.ExitAccuracy = exitAccuracy
}

// ResumeActive отменяет незавершённый выход (ложная тревога).
// Вызов на не-ожидающей сессии - no-op.
func (s *TrackingSession) ResumeActive() {
	if s.State != SessionPendingExit {
		return
	}
	s.State = SessionActive
	s.PendingExitAt = nil
	s.ExitAccuracy = nil
}

// AdjustInterval корректирует границы завершённой сессии задним числом
// и пересчитывает производные поля. Вызов на незавершённой сессии - no-op.
func (s *TrackingSession) AdjustInterval(start, end time.Time, minSession time.Duration) {
	if s.State != SessionCompleted {
		return
	}
	d := end.Sub(start)
	minutes := int(math.Round(d.Minutes()))
	s.ClockIn = start
	s.ClockOut = &end
	s.DurationMinutes = &minutes
	s.IsShort = d < minSession
}

// Complete завершает сессию. Идемпотентно: завершение уже завершённой
// сессии ничего не меняет. Длительность округляется до минут,
// короткие сессии помечаются, но никогда не удаляются.
func (s *TrackingSession) Complete(clockOut time.Time, minSession time.Duration) {
	if s.State == SessionCompleted {
		return
	}
	d := clockOut.Sub(s.ClockIn)
	minutes := int(math.Round(d.Minutes()))
	s.State = SessionCompleted
	s.ClockOut = &clockOut
	s.DurationMinutes = &minutes
	s.PendingExitAt = nil
	s.IsShort = d < minSession
}
