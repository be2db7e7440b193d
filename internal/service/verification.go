package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lukashondrich/open-workinghours-sub004/internal/broadcast"
	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/notify"
	"github.com/lukashondrich/open-workinghours-sub004/internal/telemetry"
)

// CheckScheduler - долговечный планировщик отложенных пробуждений.
// Задания переживают перезапуск процесса.
type CheckScheduler interface {
	Schedule(ctx context.Context, id string, delay time.Duration, payload []byte) error
	Cancel(ctx context.Context, id string) error
}

// PositionReader отдаёт дискретные показания позиции
type PositionReader interface {
	Report(ctx context.Context, p *models.Position) error
	CurrentPosition(ctx context.Context, maxAge time.Duration) (*models.Position, error)
}

// ExitVerifier - контракт поэтапной проверки выхода, видимый машине
// состояний. Begin и Cancel вызываются с удерживаемой блокировкой
// локации, чтобы отмена проверок и переход сессии были одной
// логической единицей.
type ExitVerifier interface {
	Begin(ctx context.Context, session *models.TrackingSession, loc *models.WorkLocation) error
	Cancel(ctx context.Context, locationID uuid.UUID) error
}

// checkPayload - полезная нагрузка запланированного пробуждения
type checkPayload struct {
	LocationID uuid.UUID `json:"location_id"`
	CheckIndex int       `json:"check_index"`
}

func checkID(locationID uuid.UUID, index int) string {
	return fmt.Sprintf("exit-check:%s:%d", locationID, index)
}

// ExitVerificationService разрешает неоднозначные выходы ограниченным
// числом дискретных проверок позиции вместо непрерывного трекинга
type ExitVerificationService struct {
	sessions  SessionRepository
	events    EventRepository
	store     VerificationStore
	scheduler CheckScheduler
	positions PositionReader
	notifier  notify.Notifier
	caster    broadcast.Broadcaster
	metrics   *telemetry.Metrics
	logger    *logrus.Logger
	cfg       *config.Config
	locks     *LocationLocks
}

func NewExitVerificationService(
	sessions SessionRepository,
	events EventRepository,
	store VerificationStore,
	scheduler CheckScheduler,
	positions PositionReader,
	notifier notify.Notifier,
	caster broadcast.Broadcaster,
	metrics *telemetry.Metrics,
	logger *logrus.Logger,
	cfg *config.Config,
	locks *LocationLocks,
) *ExitVerificationService {
	return &ExitVerificationService{
		sessions:  sessions,
		events:    events,
		store:     store,
		scheduler: scheduler,
		positions: positions,
		notifier:  notifier,
		caster:    caster,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		locks:     locks,
	}
}

// Begin сохраняет состояние проверки и планирует пробуждения.
// Вызывается с удерживаемой блокировкой локации.
func (v *ExitVerificationService) Begin(ctx context.Context, session *models.TrackingSession, loc *models.WorkLocation) error {
	log := v.logger.WithFields(logrus.Fields{
		"service":     "verification",
		"method":      "Begin",
		"session_id":  session.ID,
		"location_id": loc.ID,
	})

	if session.PendingExitAt == nil {
		return fmt.Errorf("verification: session %s is not pending exit", session.ID)
	}
	pendingAt := *session.PendingExitAt

	state := &models.VerificationState{
		SessionID:     session.ID,
		LocationID:    loc.ID,
		Latitude:      loc.Latitude,
		Longitude:     loc.Longitude,
		RadiusMeters:  loc.RadiusMeters,
		PendingExitAt: pendingAt,
		CheckIndex:    0,
	}
	if err := v.store.Save(ctx, state); err != nil {
		return fmt.Errorf("verification: could not save state: %w", err)
	}

	for i, offset := range v.cfg.CheckOffsets {
		payload, err := json.Marshal(checkPayload{LocationID: loc.ID, CheckIndex: i})
		if err != nil {
			return fmt.Errorf("verification: could not marshal check payload: %w", err)
		}
		// Смещения считаются от времени выхода, не от текущего момента:
		// доставка сигнала могла запоздать
		delay := time.Until(pendingAt.Add(offset))
		if delay < 0 {
			delay = 0
		}
		if err := v.scheduler.Schedule(ctx, checkID(loc.ID, i), delay, payload); err != nil {
			return fmt.Errorf("verification: could not schedule check %d: %w", i, err)
		}
	}

	log.WithField("checks", len(v.cfg.CheckOffsets)).Info("Exit verification started")
	return nil
}

// Cancel атомарно снимает все запланированные проверки и удаляет
// состояние. Вызывается с удерживаемой блокировкой локации; отмена
// незапущенной проверки - no-op.
func (v *ExitVerificationService) Cancel(ctx context.Context, locationID uuid.UUID) error {
	for i := range v.cfg.CheckOffsets {
		if err := v.scheduler.Cancel(ctx, checkID(locationID, i)); err != nil {
			return fmt.Errorf("verification: could not cancel check %d: %w", i, err)
		}
	}
	if err := v.store.Delete(ctx, locationID); err != nil {
		return fmt.Errorf("verification: could not delete state: %w", err)
	}
	return nil
}

// HandleCheck обслуживает одно пробуждение планировщика. Вызывается
// из колбэка, поэтому любые внутренние ошибки логируются вызывающим
// воркером, а не эскалируются дальше.
func (v *ExitVerificationService) HandleCheck(ctx context.Context, _ string, raw []byte) error {
	var payload checkPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("verification: could not unmarshal check payload: %w", err)
	}

	log := v.logger.WithFields(logrus.Fields{
		"service":     "verification",
		"method":      "HandleCheck",
		"location_id": payload.LocationID,
		"check_index": payload.CheckIndex,
	})

	unlock := v.locks.Lock(payload.LocationID)
	defer unlock()

	// Каждое решение заново выводится из персистентного состояния:
	// пробуждение могло пережить холодный рестарт или опоздать
	state, err := v.store.Get(ctx, payload.LocationID)
	if err != nil {
		return fmt.Errorf("verification: could not load state: %w", err)
	}
	if state == nil {
		log.Debug("Stale wake-up, verification already resolved")
		return nil
	}

	session, err := v.sessions.GetByID(ctx, state.SessionID)
	if err != nil {
		return fmt.Errorf("verification: could not load session: %w", err)
	}
	if session.State != models.SessionPendingExit {
		// Сессию уже разрешил кто-то другой: убираем хвосты
		if err := v.Cancel(ctx, payload.LocationID); err != nil {
			return err
		}
		log.Debug("Session no longer pending, verification state cleaned up")
		return nil
	}

	// Выверка при любой обработке: протухший незавершённый выход
	// подтверждается исходным временем выхода
	if time.Since(state.PendingExitAt) > v.cfg.StalePendingAge() {
		if err := v.confirmExit(ctx, session, state, "reconciled", broadcast.ChangeReconciled); err != nil {
			return err
		}
		v.metrics.StaleReconciled()
		log.Info("Stale pending exit confirmed during check wake-up")
		return nil
	}

	final := payload.CheckIndex >= len(v.cfg.CheckOffsets)-1

	reading, err := v.positions.CurrentPosition(ctx, v.cfg.PositionCheckTimeout)
	if err != nil {
		// Таймаут сенсора не эскалируется: результат неубедителен,
		// ждём следующую проверку
		log.WithError(err).Info("Position reading unavailable, check inconclusive")
		return v.handleInconclusive(ctx, state, payload.CheckIndex, final)
	}

	distance := distanceMeters(reading.Latitude, reading.Longitude, state.Latitude, state.Longitude)
	radius := float64(state.RadiusMeters)

	switch {
	case distance+reading.Accuracy < radius:
		// Уверенно внутри: ложная тревога, отменяем незавершённый выход
		v.metrics.VerificationCheck("inside")
		v.logReading(ctx, state, reading, models.EventEnter)
		if err := v.Cancel(ctx, payload.LocationID); err != nil {
			return err
		}
		session.ResumeActive()
		if err := v.sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("verification: could not resume session: %w", err)
		}
		v.broadcastChange(ctx, session, broadcast.ChangeResumed)
		log.Info("Check confidently inside, pending exit cancelled")
		return nil

	case distance-reading.Accuracy > radius:
		v.logReading(ctx, state, reading, models.EventExit)
		if !final {
			// Уверенно снаружи, но не финальная проверка: переход
			// отложен до финальной
			v.metrics.VerificationCheck("outside")
			return v.advance(ctx, state, payload.CheckIndex)
		}
		v.metrics.VerificationCheck("outside_final")
		if err := v.confirmExit(ctx, session, state, "verified_exit", broadcast.ChangeClockOut); err != nil {
			return err
		}
		log.Info("Final check confidently outside, exit confirmed")
		return nil

	default:
		v.metrics.VerificationCheck("inconclusive")
		log.Info("Check inconclusive")
		return v.handleInconclusive(ctx, state, payload.CheckIndex, final)
	}
}

// handleInconclusive реализует две нижние строки таблицы решений:
// нефинальная проверка двигает индекс, финальная оставляет сессию
// нетронутой и убирает состояние - дальше работает выверка
func (v *ExitVerificationService) handleInconclusive(ctx context.Context, state *models.VerificationState, index int, final bool) error {
	if !final {
		return v.advance(ctx, state, index)
	}
	if err := v.Cancel(ctx, state.LocationID); err != nil {
		return err
	}
	return nil
}

// advance двигает индекс проверки, оставляя сессию в pending_exit
func (v *ExitVerificationService) advance(ctx context.Context, state *models.VerificationState, index int) error {
	state.CheckIndex = index + 1
	if err := v.store.Save(ctx, state); err != nil {
		return fmt.Errorf("verification: could not advance check index: %w", err)
	}
	return nil
}

// confirmExit завершает сессию исходным временем выхода и убирает
// состояние проверки в той же логической единице. Подтверждение
// незавершённого выхода всегда уведомляет пользователя.
func (v *ExitVerificationService) confirmExit(ctx context.Context, session *models.TrackingSession, state *models.VerificationState, trigger, change string) error {
	if err := v.Cancel(ctx, state.LocationID); err != nil {
		return err
	}
	// clockOut - время исходного сигнала выхода, не время проверки
	session.Complete(state.PendingExitAt, v.cfg.MinSessionDuration)
	if err := v.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("verification: could not complete session: %w", err)
	}
	v.metrics.SessionCompleted(trigger)
	v.broadcastChange(ctx, session, change)
	v.sendNotification(ctx, session, state.PendingExitAt)
	return nil
}

// logReading добавляет убедительное показание проверки в журнал событий
func (v *ExitVerificationService) logReading(ctx context.Context, state *models.VerificationState, reading *models.Position, eventType string) {
	accuracy := reading.Accuracy
	event := &models.GeofenceEvent{
		LocationID:     state.LocationID,
		EventType:      eventType,
		Timestamp:      time.Now(),
		Latitude:       reading.Latitude,
		Longitude:      reading.Longitude,
		Accuracy:       &accuracy,
		AccuracySource: models.AccuracySourceVerification,
		Ignored:        false,
		IgnoreReason:   models.IgnoreNone,
	}
	if err := v.events.Create(ctx, event); err != nil {
		v.logger.WithError(err).Warn("Failed to log verification reading")
	}
}

func (v *ExitVerificationService) broadcastChange(ctx context.Context, session *models.TrackingSession, change string) {
	event := broadcast.Event{
		LocationID: session.LocationID,
		SessionID:  session.ID,
		Change:     change,
		State:      session.State,
		Timestamp:  time.Now(),
	}
	if err := v.caster.TrackingChanged(ctx, event); err != nil {
		v.logger.WithError(err).Warn("Failed to broadcast tracking change")
	}
}

func (v *ExitVerificationService) sendNotification(ctx context.Context, session *models.TrackingSession, exitAt time.Time) {
	n := notify.Notification{
		Title: "Clocked out",
		Body:  fmt.Sprintf("Exit confirmed, clocked out at %s", exitAt.Format(time.Kitchen)),
		Metadata: map[string]string{
			"location_id": session.LocationID.String(),
			"session_id":  session.ID.String(),
		},
	}
	if err := v.notifier.Send(ctx, n); err != nil {
		v.logger.WithError(err).Warn("Failed to send notification")
	}
}

const earthRadiusMeters = 6371000

// distanceMeters - расстояние по большому кругу (haversine)
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
