package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lukashondrich/open-workinghours-sub004/internal/broadcast"
	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	"github.com/lukashondrich/open-workinghours-sub004/internal/geofence"
	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/notify"
	"github.com/lukashondrich/open-workinghours-sub004/internal/telemetry"
)

// SessionRepository определяет контракт для работы с бд сессий
type SessionRepository interface {
	Create(ctx context.Context, session *models.TrackingSession) error
	Update(ctx context.Context, session *models.TrackingSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrackingSession, error)
	GetOpenByLocation(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*models.TrackingSession, error)
	FindOverlapping(ctx context.Context, locationID uuid.UUID, start, end time.Time) ([]*models.TrackingSession, error)
	ListHistory(ctx context.Context, locationID uuid.UUID, from, to time.Time, limit int) ([]*models.TrackingSession, error)
	GetTrackingStats(ctx context.Context, minutes int) (int, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventRepository определяет контракт для журнала сырых сигналов
type EventRepository interface {
	Create(ctx context.Context, event *models.GeofenceEvent) error
	GetLatestByLocation(ctx context.Context, locationID uuid.UUID) (*models.GeofenceEvent, error)
	CountIgnoredByReason(ctx context.Context, minutes int) (map[string]int, error)
}

// LocationRepository определяет контракт для работы с бд локаций
type LocationRepository interface {
	Create(ctx context.Context, loc *models.WorkLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkLocation, error)
	List(ctx context.Context) ([]*models.WorkLocation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VerificationStore определяет контракт для долговечного состояния
// поэтапной проверки выхода
type VerificationStore interface {
	Save(ctx context.Context, state *models.VerificationState) error
	Get(ctx context.Context, locationID uuid.UUID) (*models.VerificationState, error)
	Delete(ctx context.Context, locationID uuid.UUID) error
}

// TrackingStats - сводка по трекингу за окно времени
type TrackingStats struct {
	CompletedSessions int            `json:"completed_sessions"`
	TrackedMinutes    int            `json:"tracked_minutes"`
	IgnoredEvents     map[string]int `json:"ignored_events"`
}

// TrackingService определяет контракт машины состояний трекинга
type TrackingService interface {
	RegisterLocation(ctx context.Context, loc *models.WorkLocation) error
	ListLocations(ctx context.Context) ([]*models.WorkLocation, error)
	UnregisterLocation(ctx context.Context, id uuid.UUID) error
	RestoreMonitoring(ctx context.Context) error

	HandleGeofenceEvent(ctx context.Context, event *models.GeofenceEvent) (*models.GeofenceEvent, error)

	ClockIn(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error)
	ClockOut(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error)
	CreateManualSession(ctx context.Context, locationID uuid.UUID, start, end time.Time) (*models.TrackingSession, error)
	UpdateManualSession(ctx context.Context, id uuid.UUID, start, end *time.Time) (*models.TrackingSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	GetActiveSession(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error)
	GetHistory(ctx context.Context, locationID uuid.UUID, from, to time.Time, limit int) ([]*models.TrackingSession, error)
	ReportPosition(ctx context.Context, p *models.Position) error

	Reconcile(ctx context.Context) (int, error)
	GetStats(ctx context.Context, minutes int) (*TrackingStats, error)
}

type trackingService struct {
	sessions  SessionRepository
	events    EventRepository
	locations LocationRepository
	monitor   geofence.RegionMonitor
	verifier  ExitVerifier
	positions PositionReader
	notifier  notify.Notifier
	caster    broadcast.Broadcaster
	metrics   *telemetry.Metrics
	logger    *logrus.Logger
	cfg       *config.Config
	locks     *LocationLocks
}

func NewTrackingService(
	sessions SessionRepository,
	events EventRepository,
	locations LocationRepository,
	monitor geofence.RegionMonitor,
	verifier ExitVerifier,
	positions PositionReader,
	notifier notify.Notifier,
	caster broadcast.Broadcaster,
	metrics *telemetry.Metrics,
	logger *logrus.Logger,
	cfg *config.Config,
	locks *LocationLocks,
) TrackingService {
	return &trackingService{
		sessions:  sessions,
		events:    events,
		locations: locations,
		monitor:   monitor,
		verifier:  verifier,
		positions: positions,
		notifier:  notifier,
		caster:    caster,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		locks:     locks,
	}
}

// RegisterLocation сохраняет локацию и ставит её геозабор на мониторинг
func (s *trackingService) RegisterLocation(ctx context.Context, loc *models.WorkLocation) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "tracking",
		"method":  "RegisterLocation",
		"name":    loc.Name,
	})
	log.Info("Registering work location")

	if err := s.locations.Create(ctx, loc); err != nil {
		log.WithError(err).Error("Failed to create work location in repository")
		return fmt.Errorf("service: could not create work location: %w", err)
	}
	if err := s.monitor.Register(ctx, loc); err != nil {
		log.WithError(err).Error("Failed to register region in monitor")
		return fmt.Errorf("service: could not register region: %w", err)
	}

	log.WithField("location_id", loc.ID).Info("Work location registered")
	return nil
}

// ListLocations возвращает все зарегистрированные локации
func (s *trackingService) ListLocations(ctx context.Context) ([]*models.WorkLocation, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list work locations: %w", err)
	}
	return locations, nil
}

// UnregisterLocation снимает локацию с мониторинга и удаляет её
func (s *trackingService) UnregisterLocation(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"method":      "UnregisterLocation",
		"location_id": id,
	})
	log.Info("Unregistering work location")

	if err := s.monitor.Unregister(ctx, id); err != nil {
		log.WithError(err).Error("Failed to unregister region in monitor")
		return fmt.Errorf("service: could not unregister region: %w", err)
	}
	if err := s.locations.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete work location")
		return fmt.Errorf("service: could not delete work location: %w", err)
	}

	log.Info("Work location unregistered")
	return nil
}

// RestoreMonitoring перерегистрирует все геозаборы из бд.
// Вызывается при холодном старте: до этого ни одному колбэку
// доверять нельзя.
func (s *trackingService) RestoreMonitoring(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "tracking",
		"method":  "RestoreMonitoring",
	})

	locations, err := s.locations.List(ctx)
	if err != nil {
		return fmt.Errorf("service: could not load locations for restore: %w", err)
	}
	for _, loc := range locations {
		if err := s.monitor.Register(ctx, loc); err != nil {
			return fmt.Errorf("service: could not re-register region %s: %w", loc.ID, err)
		}
	}

	log.WithField("count", len(locations)).Info("Region monitoring restored")
	return nil
}

// HandleGeofenceEvent прогоняет сырой сигнал через конвейер фильтрации
// и выполняет переход машины состояний. Игнорирование события -
// ожидаемый исход, а не ошибка: событие сохраняется с причиной, метод
// возвращает его без ошибки.
func (s *trackingService) HandleGeofenceEvent(ctx context.Context, event *models.GeofenceEvent) (*models.GeofenceEvent, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"method":      "HandleGeofenceEvent",
		"location_id": event.LocationID,
		"event_type":  event.EventType,
	})

	// Любая обработка начинается с выверки протухших незавершённых
	// выходов: их должна была закрыть проверка, которая могла не выполниться
	if _, err := s.reconcileStale(ctx); err != nil {
		log.WithError(err).Warn("Stale pending sweep failed, continuing with event")
	}

	unlock := s.locks.Lock(event.LocationID)
	defer unlock()

	if event.AccuracySource == "" {
		event.AccuracySource = models.AccuracySourceCallback
	}

	// Этап 1: дебаунс - гасим осцилляцию GPS на границе геозабора
	latest, err := s.events.GetLatestByLocation(ctx, event.LocationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load latest event: %w", err)
	}
	if latest != nil && event.Timestamp.Sub(latest.Timestamp) < s.cfg.EventCooldown {
		return s.logIgnored(ctx, event, models.IgnoreDebounced)
	}

	open, err := s.sessions.GetOpenByLocation(ctx, event.LocationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load open session: %w", err)
	}

	switch event.EventType {
	case models.EventEnter:
		return s.handleEnter(ctx, log, event, open)
	case models.EventExit:
		return s.handleExit(ctx, log, event, open)
	default:
		return nil, fmt.Errorf("service: unknown event type %q", event.EventType)
	}
}

// handleEnter обрабатывает принятый сигнал входа
func (s *trackingService) handleEnter(ctx context.Context, log *logrus.Entry, event *models.GeofenceEvent, open *models.TrackingSession) (*models.GeofenceEvent, error) {
	if open == nil {
		if err := s.logAccepted(ctx, event); err != nil {
			return nil, err
		}
		session, err := s.openSession(ctx, event.LocationID, event.Timestamp, models.MethodGeofenceAuto, event.Accuracy)
		if err != nil {
			return nil, err
		}
		log.WithField("session_id", session.ID).Info("Session opened on enter")
		s.sendNotification(ctx, "Clocked in", fmt.Sprintf("Arrived at work location at %s", event.Timestamp.Format(time.Kitchen)), session)
		return event, nil
	}

	if open.State == models.SessionPendingExit {
		pendingAt := *open.PendingExitAt
		if event.Timestamp.Sub(pendingAt) <= s.cfg.HysteresisWindow {
			// Ложная тревога: пользователь не уходил
			if err := s.verifier.Cancel(ctx, event.LocationID); err != nil {
				return nil, fmt.Errorf("service: could not cancel verification: %w", err)
			}
			open.ResumeActive()
			if err := s.sessions.Update(ctx, open); err != nil {
				return nil, fmt.Errorf("service: could not resume session: %w", err)
			}
			if err := s.logAccepted(ctx, event); err != nil {
				return nil, err
			}
			s.broadcastChange(ctx, open, broadcast.ChangeResumed)
			log.WithField("session_id", open.ID).Info("Pending exit cancelled by enter within hysteresis")
			return event, nil
		}

		// Пользователь действительно уходил и вернулся: закрываем старую
		// сессию исходным временем выхода и открываем новую
		if err := s.verifier.Cancel(ctx, event.LocationID); err != nil {
			return nil, fmt.Errorf("service: could not cancel verification: %w", err)
		}
		if err := s.completeSession(ctx, open, pendingAt, "hysteresis_elapsed"); err != nil {
			return nil, err
		}
		if err := s.logAccepted(ctx, event); err != nil {
			return nil, err
		}
		session, err := s.openSession(ctx, event.LocationID, event.Timestamp, models.MethodGeofenceAuto, event.Accuracy)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"completed_session": open.ID,
			"new_session":       session.ID,
		}).Info("Pending exit confirmed by late enter, fresh session opened")
		return event, nil
	}

	// Повторный enter при активной сессии: логируем, перехода нет
	if err := s.logAccepted(ctx, event); err != nil {
		return nil, err
	}
	log.WithField("session_id", open.ID).Debug("Duplicate enter for active session, no transition")
	return event, nil
}

// handleExit обрабатывает сигнал выхода: фильтры точности применяются
// только к выходам
func (s *trackingService) handleExit(ctx context.Context, log *logrus.Entry, event *models.GeofenceEvent, open *models.TrackingSession) (*models.GeofenceEvent, error) {
	if open == nil {
		return s.logIgnored(ctx, event, models.IgnoreNoSession)
	}

	// Этап 2: абсолютный порог точности
	if event.Accuracy != nil && *event.Accuracy > s.cfg.MaxExitAccuracy {
		return s.logIgnored(ctx, event, models.IgnorePoorAccuracy)
	}

	// Этап 3: относительная деградация сигнала против точности входа
	if event.Accuracy != nil && open.CheckinAccuracy != nil &&
		*event.Accuracy > *open.CheckinAccuracy*s.cfg.DegradationFactor {
		return s.logIgnored(ctx, event, models.IgnoreSignalDegradation)
	}

	// Этап 4: подавление повторного выхода при уже ожидающем
	if open.State == models.SessionPendingExit {
		if err := s.logAccepted(ctx, event); err != nil {
			return nil, err
		}
		log.WithField("session_id", open.ID).Debug("Duplicate exit while pending, no transition")
		return event, nil
	}

	if err := s.logAccepted(ctx, event); err != nil {
		return nil, err
	}

	// Высокая уверенность: точность лучше жёсткого порога -
	// закрываем сразу, без гистерезиса
	if event.Accuracy != nil && *event.Accuracy < s.cfg.ImmediateExitAccuracy {
		if err := s.completeSession(ctx, open, event.Timestamp, "immediate_exit"); err != nil {
			return nil, err
		}
		log.WithField("session_id", open.ID).Info("High-confidence exit, session completed immediately")
		return event, nil
	}

	// Низкая или неизвестная уверенность: переходим в pending_exit и
	// запускаем поэтапную проверку
	loc, err := s.locations.GetByID(ctx, event.LocationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load location for verification: %w", err)
	}
	open.MarkPendingExit(event.Timestamp, event.Accuracy)
	if err := s.sessions.Update(ctx, open); err != nil {
		return nil, fmt.Errorf("service: could not mark pending exit: %w", err)
	}
	if err := s.verifier.Begin(ctx, open, loc); err != nil {
		return nil, fmt.Errorf("service: could not begin exit verification: %w", err)
	}
	s.broadcastChange(ctx, open, broadcast.ChangePendingExit)
	log.WithField("session_id", open.ID).Info("Low-confidence exit, verification started")
	return event, nil
}

// ClockIn открывает сессию вручную
func (s *trackingService) ClockIn(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"method":      "ClockIn",
		"location_id": locationID,
	})
	log.Info("Manual clock-in requested")

	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return nil, fmt.Errorf("service: clock-in location: %w", err)
	}

	unlock := s.locks.Lock(locationID)
	defer unlock()

	open, err := s.sessions.GetOpenByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load open session: %w", err)
	}
	if open != nil {
		log.WithField("session_id", open.ID).Warn("Clock-in rejected, session already open")
		return nil, ErrAlreadyClockedIn
	}

	session, err := s.openSession(ctx, locationID, time.Now(), models.MethodManual, nil)
	if err != nil {
		return nil, err
	}
	log.WithField("session_id", session.ID).Info("Manual clock-in completed")
	return session, nil
}

// ClockOut закрывает открытую сессию вручную. Любая ручная операция
// отменяет незавершённую проверку выхода в той же логической единице.
func (s *trackingService) ClockOut(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"method":      "ClockOut",
		"location_id": locationID,
	})
	log.Info("Manual clock-out requested")

	unlock := s.locks.Lock(locationID)
	defer unlock()

	open, err := s.sessions.GetOpenByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load open session: %w", err)
	}
	if open == nil {
		log.Warn("Clock-out rejected, no open session")
		return nil, ErrNoActiveSession
	}

	if open.State == models.SessionPendingExit {
		if err := s.verifier.Cancel(ctx, locationID); err != nil {
			return nil, fmt.Errorf("service: could not cancel verification: %w", err)
		}
	}
	if err := s.completeSession(ctx, open, time.Now(), "manual"); err != nil {
		return nil, err
	}
	log.WithField("session_id", open.ID).Info("Manual clock-out completed")
	return open, nil
}

// CreateManualSession создает завершённую сессию задним числом
func (s *trackingService) CreateManualSession(ctx context.Context, locationID uuid.UUID, start, end time.Time) (*models.TrackingSession, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"method":      "CreateManualSession",
		"location_id": locationID,
	})
	log.Info("Retroactive manual session requested")

	if !end.After(start) {
		return nil, ErrInvalidInterval
	}
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return nil, fmt.Errorf("service: manual session location: %w", err)
	}

	unlock := s.locks.Lock(locationID)
	defer unlock()

	if err := s.checkOverlap(ctx, locationID, uuid.Nil, start, end); err != nil {
		return nil, err
	}

	session := &models.TrackingSession{
		LocationID:     locationID,
		ClockIn:        start,
		TrackingMethod: models.MethodManual,
		State:          models.SessionActive,
	}
	session.Complete(end, s.cfg.MinSessionDuration)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("service: could not create manual session: %w", err)
	}
	s.broadcastChange(ctx, session, broadcast.ChangeManualCreated)
	log.WithField("session_id", session.ID).Info("Retroactive manual session created")
	return session, nil
}

// UpdateManualSession корректирует границы завершённой сессии
// (частичное обновление: nil оставляет границу как есть). Открытые
// сессии принадлежат машине состояний и правке не подлежат.
func (s *trackingService) UpdateManualSession(ctx context.Context, id uuid.UUID, start, end *time.Time) (*models.TrackingSession, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "tracking",
		"method":     "UpdateManualSession",
		"session_id": id,
	})
	log.Info("Session adjustment requested")

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: update session: %w", err)
	}
	if session.IsOpen() {
		log.Warn("Adjustment rejected, session is still open")
		return nil, ErrSessionNotCompleted
	}

	newStart := session.ClockIn
	if start != nil {
		newStart = *start
	}
	newEnd := *session.ClockOut
	if end != nil {
		newEnd = *end
	}
	if !newEnd.After(newStart) {
		return nil, ErrInvalidInterval
	}

	unlock := s.locks.Lock(session.LocationID)
	defer unlock()

	if err := s.checkOverlap(ctx, session.LocationID, session.ID, newStart, newEnd); err != nil {
		return nil, err
	}

	session.AdjustInterval(newStart, newEnd, s.cfg.MinSessionDuration)
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("service: could not update session: %w", err)
	}
	s.broadcastChange(ctx, session, broadcast.ChangeManualUpdated)
	log.Info("Session adjusted")
	return session, nil
}

// DeleteSession безвозвратно удаляет завершённую сессию.
// Восстановить удалённую сессию нельзя.
func (s *trackingService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "tracking",
		"method":     "DeleteSession",
		"session_id": id,
	})
	log.Info("Session deletion requested")

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: delete session: %w", err)
	}
	if session.IsOpen() {
		log.Warn("Deletion rejected, session is still open")
		return ErrSessionNotCompleted
	}

	unlock := s.locks.Lock(session.LocationID)
	defer unlock()

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("service: could not delete session: %w", err)
	}
	s.broadcastChange(ctx, session, broadcast.ChangeManualDeleted)
	log.Info("Session deleted")
	return nil
}

// GetActiveSession возвращает открытую сессию локации
func (s *trackingService) GetActiveSession(ctx context.Context, locationID uuid.UUID) (*models.TrackingSession, error) {
	open, err := s.sessions.GetOpenByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load open session: %w", err)
	}
	if open == nil {
		return nil, ErrNoActiveSession
	}
	return open, nil
}

// GetHistory возвращает завершённые сессии локации, свежие первыми.
// Лимит зажимается в границы 1..1000, по умолчанию 100.
func (s *trackingService) GetHistory(ctx context.Context, locationID uuid.UUID, from, to time.Time, limit int) ([]*models.TrackingSession, error) {
	if limit < 1 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	sessions, err := s.sessions.ListHistory(ctx, locationID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("service: could not list history: %w", err)
	}
	return sessions, nil
}

// ReportPosition сохраняет присланное устройством показание позиции
func (s *trackingService) ReportPosition(ctx context.Context, p *models.Position) error {
	if err := s.positions.Report(ctx, p); err != nil {
		return fmt.Errorf("service: could not store position: %w", err)
	}
	return nil
}

// Reconcile - явный проход выверки при возврате приложения на передний
// план. Ограничивает сверху протухание состояния, даже если все фоновые
// колбэки были потеряны.
func (s *trackingService) Reconcile(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "tracking",
		"method":  "Reconcile",
	})

	count, err := s.reconcileStale(ctx)
	if err != nil {
		log.WithError(err).Error("Reconciliation pass failed")
		return 0, fmt.Errorf("service: reconciliation failed: %w", err)
	}
	log.WithField("confirmed", count).Info("Reconciliation pass completed")
	return count, nil
}

// GetStats возвращает сводку за окно времени. При minutes <= 0
// используется окно из конфигурации.
func (s *trackingService) GetStats(ctx context.Context, minutes int) (*TrackingStats, error) {
	if minutes <= 0 {
		minutes = s.cfg.StatsTimeWindowMinutes
	}
	count, tracked, err := s.sessions.GetTrackingStats(ctx, minutes)
	if err != nil {
		return nil, fmt.Errorf("service: could not get session stats: %w", err)
	}
	ignored, err := s.events.CountIgnoredByReason(ctx, minutes)
	if err != nil {
		return nil, fmt.Errorf("service: could not get ignored event stats: %w", err)
	}
	return &TrackingStats{
		CompletedSessions: count,
		TrackedMinutes:    tracked,
		IgnoredEvents:     ignored,
	}, nil
}

// reconcileStale безусловно подтверждает все незавершённые выходы
// старше порога протухания, используя исходное время выхода
func (s *trackingService) reconcileStale(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.StalePendingAge())
	stale, err := s.sessions.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("could not find stale pending sessions: %w", err)
	}

	confirmed := 0
	for _, session := range stale {
		unlock := s.locks.Lock(session.LocationID)

		// Перечитываем под блокировкой: колбэк мог успеть разрешить выход
		current, err := s.sessions.GetByID(ctx, session.ID)
		if err != nil {
			unlock()
			return confirmed, fmt.Errorf("could not reload stale session %s: %w", session.ID, err)
		}
		if current.State != models.SessionPendingExit || current.PendingExitAt == nil || !current.PendingExitAt.Before(cutoff) {
			unlock()
			continue
		}

		pendingAt := *current.PendingExitAt
		if err := s.verifier.Cancel(ctx, current.LocationID); err != nil {
			unlock()
			return confirmed, fmt.Errorf("could not cancel verification for stale session %s: %w", current.ID, err)
		}
		// Намеренно исходное время выхода, а не время выверки
		if err := s.completeSession(ctx, current, pendingAt, "reconciled"); err != nil {
			unlock()
			return confirmed, err
		}
		s.metrics.StaleReconciled()
		confirmed++
		unlock()

		s.logger.WithFields(logrus.Fields{
			"service":    "tracking",
			"method":     "reconcileStale",
			"session_id": current.ID,
		}).Info("Stale pending exit confirmed by reconciliation")
	}
	return confirmed, nil
}

// overlapsInterval - полуоткрытый тест пересечения сессии с интервалом
// [start, end): existing.start < new.end && new.start < existing.end.
// Открытая сессия тянется до +бесконечности. Касание границ разрешено.
func overlapsInterval(session *models.TrackingSession, start, end time.Time) bool {
	if !session.ClockIn.Before(end) {
		return false
	}
	return session.ClockOut == nil || session.ClockOut.After(start)
}

// checkOverlap применяет полуоткрытый предикат к кандидатам из
// репозитория. exclude исключает саму правящуюся сессию из проверки.
func (s *trackingService) checkOverlap(ctx context.Context, locationID, exclude uuid.UUID, start, end time.Time) error {
	candidates, err := s.sessions.FindOverlapping(ctx, locationID, start, end)
	if err != nil {
		return fmt.Errorf("service: could not check overlap: %w", err)
	}
	for _, c := range candidates {
		if c.ID == exclude {
			continue
		}
		if overlapsInterval(c, start, end) {
			s.logger.WithFields(logrus.Fields{
				"service":     "tracking",
				"location_id": locationID,
				"overlaps":    c.ID,
			}).Warn("Manual session rejected, overlap detected")
			return ErrSessionOverlap
		}
	}
	return nil
}

// openSession создает активную сессию и оповещает слушателей.
// Вызывается с удерживаемой блокировкой локации.
func (s *trackingService) openSession(ctx context.Context, locationID uuid.UUID, clockIn time.Time, method string, checkinAccuracy *float64) (*models.TrackingSession, error) {
	session := &models.TrackingSession{
		LocationID:      locationID,
		ClockIn:         clockIn,
		TrackingMethod:  method,
		State:           models.SessionActive,
		CheckinAccuracy: checkinAccuracy,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("service: could not create session: %w", err)
	}
	s.metrics.SessionStarted(method)
	s.broadcastChange(ctx, session, broadcast.ChangeClockIn)
	return session, nil
}

// completeSession завершает сессию и оповещает слушателей.
// Автоматическое завершение (любой триггер, кроме ручного clock-out)
// дополнительно уведомляет пользователя. Вызывается с удерживаемой
// блокировкой локации.
func (s *trackingService) completeSession(ctx context.Context, session *models.TrackingSession, clockOut time.Time, trigger string) error {
	session.Complete(clockOut, s.cfg.MinSessionDuration)
	if err := s.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("service: could not complete session: %w", err)
	}
	s.metrics.SessionCompleted(trigger)
	change := broadcast.ChangeClockOut
	if trigger == "reconciled" {
		change = broadcast.ChangeReconciled
	}
	s.broadcastChange(ctx, session, change)
	if trigger != "manual" {
		s.sendNotification(ctx, "Clocked out", fmt.Sprintf("Left work location at %s", clockOut.Format(time.Kitchen)), session)
	}
	return nil
}

// logAccepted сохраняет принятое событие в журнал
func (s *trackingService) logAccepted(ctx context.Context, event *models.GeofenceEvent) error {
	event.Ignored = false
	event.IgnoreReason = models.IgnoreNone
	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("service: could not log event: %w", err)
	}
	s.metrics.EventAccepted(event.EventType)
	return nil
}

// logIgnored сохраняет событие с причиной игнорирования и завершает
// обработку без перехода
func (s *trackingService) logIgnored(ctx context.Context, event *models.GeofenceEvent, reason string) (*models.GeofenceEvent, error) {
	event.Ignored = true
	event.IgnoreReason = reason
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("service: could not log ignored event: %w", err)
	}
	s.metrics.EventIgnored(reason)
	s.logger.WithFields(logrus.Fields{
		"service":     "tracking",
		"location_id": event.LocationID,
		"event_type":  event.EventType,
		"reason":      reason,
	}).Info("Geofence event ignored")
	return event, nil
}

// broadcastChange шлёт fire-and-forget оповещение об изменении сессии.
// Провал оповещения не влияет на корректность - только лог.
func (s *trackingService) broadcastChange(ctx context.Context, session *models.TrackingSession, change string) {
	event := broadcast.Event{
		LocationID: session.LocationID,
		SessionID:  session.ID,
		Change:     change,
		State:      session.State,
		Timestamp:  time.Now(),
	}
	if err := s.caster.TrackingChanged(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to broadcast tracking change")
	}
}

// sendNotification шлёт best-effort уведомление пользователю
func (s *trackingService) sendNotification(ctx context.Context, title, body string, session *models.TrackingSession) {
	n := notify.Notification{
		Title: title,
		Body:  body,
		Metadata: map[string]string{
			"location_id": session.LocationID.String(),
			"session_id":  session.ID.String(),
		},
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.WithError(err).Warn("Failed to send notification")
	}
}
