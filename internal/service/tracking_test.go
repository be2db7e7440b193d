package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	broadcast_mocks "github.com/lukashondrich/open-workinghours-sub004/internal/broadcast/mocks"
	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	geofence_mocks "github.com/lukashondrich/open-workinghours-sub004/internal/geofence/mocks"
	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	notify_mocks "github.com/lukashondrich/open-workinghours-sub004/internal/notify/mocks"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service/mocks"
	"github.com/lukashondrich/open-workinghours-sub004/internal/telemetry"
)

type trackingMocks struct {
	sessions  *mocks.MockSessionRepository
	events    *mocks.MockEventRepository
	locations *mocks.MockLocationRepository
	monitor   *geofence_mocks.MockRegionMonitor
	verifier  *mocks.MockExitVerifier
	positions *mocks.MockPositionReader
	notifier  *notify_mocks.MockNotifier
	caster    *broadcast_mocks.MockBroadcaster
}

// newTestTrackingService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestTrackingService(t *testing.T) (*trackingService, *trackingMocks) {
	ctrl := gomock.NewController(t)
	m := &trackingMocks{
		sessions:  mocks.NewMockSessionRepository(ctrl),
		events:    mocks.NewMockEventRepository(ctrl),
		locations: mocks.NewMockLocationRepository(ctrl),
		monitor:   geofence_mocks.NewMockRegionMonitor(ctrl),
		verifier:  mocks.NewMockExitVerifier(ctrl),
		positions: mocks.NewMockPositionReader(ctrl),
		notifier:  notify_mocks.NewMockNotifier(ctrl),
		caster:    broadcast_mocks.NewMockBroadcaster(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		EventCooldown:          10 * time.Second,
		MaxExitAccuracy:        100,
		DegradationFactor:      3,
		ImmediateExitAccuracy:  50,
		MinSessionDuration:     5 * time.Minute,
		HysteresisWindow:       5 * time.Minute,
		StalePendingFactor:     2,
		StatsTimeWindowMinutes: 60,
	}

	service := NewTrackingService(
		m.sessions, m.events, m.locations, m.monitor, m.verifier,
		m.positions, m.notifier, m.caster, telemetry.New(), logger, cfg,
		NewLocationLocks(),
	)
	return service.(*trackingService), m
}

func float64Ptr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

// expectNoStalePending — каждый вызов HandleGeofenceEvent начинается с
// прохода выверки, в большинстве тестов он пустой.
func expectNoStalePending(m *trackingMocks) {
	m.sessions.EXPECT().
		FindStalePending(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(1)
}

func TestHandleGeofenceEvent_EnterOpensSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	sessionID := uuid.New()
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventEnter,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(25),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.sessions.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.TrackingSession) error {
			s.ID = sessionID
			return nil
		}).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)
	m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.IgnoreNone, result.IgnoreReason)
	assert.Equal(t, models.AccuracySourceCallback, result.AccuracySource)
}

func TestHandleGeofenceEvent_Debounced(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	now := time.Now()
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  now,
	}
	latest := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventEnter,
		Timestamp:  now.Add(-3 * time.Second), // внутри окна в 10 секунд
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(latest, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, models.IgnoreDebounced, result.IgnoreReason)
}

func TestHandleGeofenceEvent_ExitWithoutSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(20),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, models.IgnoreNoSession, result.IgnoreReason)
}

func TestHandleGeofenceEvent_ExitPoorAccuracy(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    time.Now().Add(-2 * time.Hour),
		State:      models.SessionActive,
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(150), // хуже абсолютного порога в 100 м
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, models.IgnorePoorAccuracy, result.IgnoreReason)
	assert.Equal(t, models.SessionActive, open.State)
}

func TestHandleGeofenceEvent_ExitSignalDegradation(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:              uuid.New(),
		LocationID:      locationID,
		ClockIn:         time.Now().Add(-2 * time.Hour),
		State:           models.SessionActive,
		CheckinAccuracy: float64Ptr(10),
	}
	// 40 м лучше абсолютного порога, но хуже 10 м * 3
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(40),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, models.IgnoreSignalDegradation, result.IgnoreReason)
	assert.Equal(t, models.SessionActive, open.State)
}

func TestHandleGeofenceEvent_ExitHighConfidence_CompletesImmediately(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	exitAt := time.Now()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    exitAt.Add(-8 * time.Hour),
		State:      models.SessionActive,
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  exitAt,
		Accuracy:   float64Ptr(20), // лучше жёсткого порога в 50 м
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)
	m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.SessionCompleted, open.State)
	require.NotNil(t, open.ClockOut)
	assert.True(t, open.ClockOut.Equal(exitAt))
	require.NotNil(t, open.DurationMinutes)
	assert.Equal(t, 480, *open.DurationMinutes)
	assert.False(t, open.IsShort)
}

func TestHandleGeofenceEvent_ExitLowConfidence_StartsVerification(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	exitAt := time.Now()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    exitAt.Add(-4 * time.Hour),
		State:      models.SessionActive,
	}
	loc := &models.WorkLocation{ID: locationID, Name: "Офис", RadiusMeters: 100}
	// 80 м: между порогом немедленного закрытия и абсолютным порогом
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  exitAt,
		Accuracy:   float64Ptr(80),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.locations.EXPECT().GetByID(ctx, locationID).Return(loc, nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.verifier.EXPECT().Begin(ctx, open, loc).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.SessionPendingExit, open.State)
	require.NotNil(t, open.PendingExitAt)
	assert.True(t, open.PendingExitAt.Equal(exitAt))
}

func TestHandleGeofenceEvent_ExitWithoutAccuracy_StartsVerification(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    time.Now().Add(-time.Hour),
		State:      models.SessionActive,
	}
	loc := &models.WorkLocation{ID: locationID, RadiusMeters: 100}
	// Без точности нельзя закрыть сразу: уверенности нет
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.locations.EXPECT().GetByID(ctx, locationID).Return(loc, nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.verifier.EXPECT().Begin(ctx, open, loc).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	_, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SessionPendingExit, open.State)
}

func TestHandleGeofenceEvent_DuplicateExitWhilePending(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    locationID,
		ClockIn:       time.Now().Add(-time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(time.Now().Add(-time.Minute)),
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(60),
	}

	// Ожидания: событие логируется, но перехода и новой проверки нет
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.verifier.EXPECT().Begin(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.sessions.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.SessionPendingExit, open.State)
}

func TestHandleGeofenceEvent_EnterWithinHysteresis_Resumes(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    locationID,
		ClockIn:       time.Now().Add(-3 * time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(time.Now().Add(-2 * time.Minute)),
		ExitAccuracy:  float64Ptr(70),
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventEnter,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(30),
	}

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.verifier.EXPECT().Cancel(ctx, locationID).Return(nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки: ложная тревога отменена, сессия продолжается
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.SessionActive, open.State)
	assert.Nil(t, open.PendingExitAt)
	assert.Nil(t, open.ExitAccuracy)
	assert.Nil(t, open.ClockOut)
}

func TestHandleGeofenceEvent_EnterAfterHysteresis_CompletesAndReopens(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	pendingAt := time.Now().Add(-8 * time.Minute) // за пределами окна в 5 минут
	open := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    locationID,
		ClockIn:       time.Now().Add(-3 * time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(pendingAt),
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventEnter,
		Timestamp:  time.Now(),
		Accuracy:   float64Ptr(30),
	}
	var created *models.TrackingSession

	// Ожидания
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.verifier.EXPECT().Cancel(ctx, locationID).Return(nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.sessions.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.TrackingSession) error {
			s.ID = uuid.New()
			created = s
			return nil
		}).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(2)
	m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil).Times(1) // clock-out старой сессии

	// Действие
	_, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки: старая сессия закрыта исходным временем выхода
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, open.State)
	require.NotNil(t, open.ClockOut)
	assert.True(t, open.ClockOut.Equal(pendingAt))

	// Новая сессия открыта временем события входа
	require.NotNil(t, created)
	assert.Equal(t, models.SessionActive, created.State)
	assert.True(t, created.ClockIn.Equal(event.Timestamp))
	assert.Equal(t, models.MethodGeofenceAuto, created.TrackingMethod)
}

func TestHandleGeofenceEvent_DuplicateEnterForActiveSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    time.Now().Add(-time.Hour),
		State:      models.SessionActive,
	}
	event := &models.GeofenceEvent{
		LocationID: locationID,
		EventType:  models.EventEnter,
		Timestamp:  time.Now(),
	}

	// Ожидания: событие логируется, переходов нет
	expectNoStalePending(m)
	m.events.EXPECT().GetLatestByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.events.EXPECT().Create(ctx, event).Return(nil).Times(1)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	m.sessions.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	result, err := service.HandleGeofenceEvent(ctx, event)

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Ignored)
	assert.Equal(t, models.SessionActive, open.State)
}

func TestClockIn_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	loc := &models.WorkLocation{ID: locationID, Name: "Офис"}

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(loc, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(nil, nil).Times(1)
	m.sessions.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.TrackingSession) error {
			s.ID = uuid.New()
			return nil
		}).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.ClockIn(ctx, locationID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, session.State)
	assert.Equal(t, models.MethodManual, session.TrackingMethod)
	assert.Nil(t, session.CheckinAccuracy)
}

func TestClockIn_AlreadyClockedIn(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		State:      models.SessionActive,
	}

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	session, err := service.ClockIn(ctx, locationID)

	// Проверки
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
	assert.Nil(t, session)
}

func TestClockOut_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    time.Now().Add(-6 * time.Hour),
		State:      models.SessionActive,
	}

	// Ожидания
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.ClockOut(ctx, locationID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.State)
	require.NotNil(t, session.ClockOut)
	assert.False(t, session.IsShort)
}

func TestClockOut_PendingExitCancelsVerification(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	open := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    locationID,
		ClockIn:       time.Now().Add(-time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(time.Now().Add(-time.Minute)),
	}

	// Ожидания
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(open, nil).Times(1)
	m.verifier.EXPECT().Cancel(ctx, locationID).Return(nil).Times(1)
	m.sessions.EXPECT().Update(ctx, open).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.ClockOut(ctx, locationID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.State)
	assert.Nil(t, session.PendingExitAt)
}

func TestClockOut_NoActiveSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()

	// Ожидания
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(nil, nil).Times(1)

	// Действие
	session, err := service.ClockOut(ctx, locationID)

	// Проверки
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Nil(t, session)
}

func TestCreateManualSession_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 17, 30, 0, 0, time.UTC)

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, end).Return(nil, nil).Times(1)
	m.sessions.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *models.TrackingSession) error {
			s.ID = uuid.New()
			return nil
		}).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, end)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.State)
	assert.Equal(t, models.MethodManual, session.TrackingMethod)
	require.NotNil(t, session.DurationMinutes)
	assert.Equal(t, 510, *session.DurationMinutes)
	assert.False(t, session.IsShort)
}

func TestCreateManualSession_ShortSessionFlagged(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Minute) // короче минимума в 5 минут

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, end).Return(nil, nil).Times(1)
	m.sessions.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, end)

	// Проверки: короткая сессия помечается, но не отбрасывается
	require.NoError(t, err)
	assert.True(t, session.IsShort)
	require.NotNil(t, session.DurationMinutes)
	assert.Equal(t, 3, *session.DurationMinutes)
}

func TestCreateManualSession_InvalidInterval(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	start := time.Now()

	// Ожидания: до репозитория дело не доходит
	m.locations.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)
	m.sessions.EXPECT().FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, start)

	// Проверки
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Nil(t, session)
}

func TestCreateManualSession_Overlap(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	existing := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    start.Add(time.Hour),
		State:      models.SessionActive,
	}

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, end).Return([]*models.TrackingSession{existing}, nil).Times(1)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, end)

	// Проверки
	assert.ErrorIs(t, err, ErrSessionOverlap)
	assert.Nil(t, session)
}

func TestCreateManualSession_BoundaryTouchAllowed(t *testing.T) {
	// Подготовка: существующая сессия 09:00-17:00, новая 17:00-18:00.
	// Интервалы полуоткрытые, касание границ - не пересечение.
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	existingStart := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	existingEnd := existingStart.Add(8 * time.Hour)
	existing := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    existingStart,
		ClockOut:   timePtr(existingEnd),
		State:      models.SessionCompleted,
	}
	start := existingEnd
	end := start.Add(time.Hour)

	// Ожидания: репозиторий отдаёт соседнюю сессию как кандидата,
	// предикат её отклоняет
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, end).Return([]*models.TrackingSession{existing}, nil).Times(1)
	m.sessions.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, end)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, session.DurationMinutes)
	assert.Equal(t, 60, *session.DurationMinutes)
}

func TestCreateManualSession_PartialOverlapRejected(t *testing.T) {
	// Подготовка: существующая сессия 09:00-17:00, новая 16:30-18:00
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	existingStart := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	existingEnd := existingStart.Add(8 * time.Hour)
	existing := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    existingStart,
		ClockOut:   timePtr(existingEnd),
		State:      models.SessionCompleted,
	}
	start := existingEnd.Add(-30 * time.Minute)
	end := existingEnd.Add(time.Hour)

	// Ожидания
	m.locations.EXPECT().GetByID(ctx, locationID).Return(&models.WorkLocation{ID: locationID}, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, end).Return([]*models.TrackingSession{existing}, nil).Times(1)
	m.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	session, err := service.CreateManualSession(ctx, locationID, start, end)

	// Проверки
	assert.ErrorIs(t, err, ErrSessionOverlap)
	assert.Nil(t, session)
}

func TestOverlapsInterval(t *testing.T) {
	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // 09:00
	completed := func(start, end time.Time) *models.TrackingSession {
		return &models.TrackingSession{ClockIn: start, ClockOut: timePtr(end), State: models.SessionCompleted}
	}

	tests := []struct {
		name    string
		session *models.TrackingSession
		start   time.Time
		end     time.Time
		want    bool
	}{
		{
			name:    "касание конца существующей сессии",
			session: completed(base, base.Add(8*time.Hour)), // 09:00-17:00
			start:   base.Add(8 * time.Hour),                // 17:00
			end:     base.Add(9 * time.Hour),                // 18:00
			want:    false,
		},
		{
			name:    "касание начала существующей сессии",
			session: completed(base, base.Add(8*time.Hour)),
			start:   base.Add(-time.Hour),
			end:     base,
			want:    false,
		},
		{
			name:    "частичное пересечение",
			session: completed(base, base.Add(8*time.Hour)),
			start:   base.Add(7*time.Hour + 30*time.Minute), // 16:30
			end:     base.Add(9 * time.Hour),                // 18:00
			want:    true,
		},
		{
			name:    "новый интервал целиком внутри",
			session: completed(base, base.Add(8*time.Hour)),
			start:   base.Add(2 * time.Hour),
			end:     base.Add(3 * time.Hour),
			want:    true,
		},
		{
			name: "открытая сессия тянется до бесконечности",
			session: &models.TrackingSession{
				ClockIn: base,
				State:   models.SessionActive,
			},
			start: base.Add(24 * time.Hour),
			end:   base.Add(25 * time.Hour),
			want:  true,
		},
		{
			name: "интервал целиком до открытой сессии",
			session: &models.TrackingSession{
				ClockIn: base,
				State:   models.SessionActive,
			},
			start: base.Add(-2 * time.Hour),
			end:   base,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlapsInterval(tt.session, tt.start, tt.end))
		})
	}
}

func TestUpdateManualSession_Success(t *testing.T) {
	// Подготовка: сдвигаем конец завершённой сессии с 17:00 на 17:30
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	sessionID := uuid.New()
	locationID := uuid.New()
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	oldEnd := start.Add(8 * time.Hour)
	newEnd := oldEnd.Add(30 * time.Minute)
	session := &models.TrackingSession{
		ID:             sessionID,
		LocationID:     locationID,
		ClockIn:        start,
		ClockOut:       timePtr(oldEnd),
		TrackingMethod: models.MethodManual,
		State:          models.SessionCompleted,
	}

	// Ожидания: сама правящаяся сессия среди кандидатов не считается
	m.sessions.EXPECT().GetByID(ctx, sessionID).Return(session, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, newEnd).Return([]*models.TrackingSession{session}, nil).Times(1)
	m.sessions.EXPECT().Update(ctx, session).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	updated, err := service.UpdateManualSession(ctx, sessionID, nil, timePtr(newEnd))

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, updated.ClockOut)
	assert.True(t, updated.ClockOut.Equal(newEnd))
	require.NotNil(t, updated.DurationMinutes)
	assert.Equal(t, 510, *updated.DurationMinutes)
	assert.False(t, updated.IsShort)
}

func TestUpdateManualSession_RejectsOpenSession(t *testing.T) {
	// Подготовка: открытой сессией владеет машина состояний
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	sessionID := uuid.New()
	open := &models.TrackingSession{
		ID:         sessionID,
		LocationID: uuid.New(),
		ClockIn:    time.Now().Add(-time.Hour),
		State:      models.SessionActive,
	}

	// Ожидания
	m.sessions.EXPECT().GetByID(ctx, sessionID).Return(open, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.sessions.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	updated, err := service.UpdateManualSession(ctx, sessionID, nil, timePtr(time.Now()))

	// Проверки
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
	assert.Nil(t, updated)
}

func TestUpdateManualSession_Overlap(t *testing.T) {
	// Подготовка: расширение конца налезает на соседнюю сессию
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	sessionID := uuid.New()
	locationID := uuid.New()
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	oldEnd := start.Add(8 * time.Hour)
	newEnd := oldEnd.Add(2 * time.Hour)
	session := &models.TrackingSession{
		ID:         sessionID,
		LocationID: locationID,
		ClockIn:    start,
		ClockOut:   timePtr(oldEnd),
		State:      models.SessionCompleted,
	}
	neighbour := &models.TrackingSession{
		ID:         uuid.New(),
		LocationID: locationID,
		ClockIn:    oldEnd.Add(time.Hour),
		ClockOut:   timePtr(oldEnd.Add(3 * time.Hour)),
		State:      models.SessionCompleted,
	}

	// Ожидания
	m.sessions.EXPECT().GetByID(ctx, sessionID).Return(session, nil).Times(1)
	m.sessions.EXPECT().FindOverlapping(ctx, locationID, start, newEnd).Return([]*models.TrackingSession{session, neighbour}, nil).Times(1)
	m.sessions.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	updated, err := service.UpdateManualSession(ctx, sessionID, nil, timePtr(newEnd))

	// Проверки
	assert.ErrorIs(t, err, ErrSessionOverlap)
	assert.Nil(t, updated)
}

func TestDeleteSession_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	sessionID := uuid.New()
	completed := &models.TrackingSession{
		ID:         sessionID,
		LocationID: uuid.New(),
		ClockIn:    time.Now().Add(-9 * time.Hour),
		ClockOut:   timePtr(time.Now().Add(-time.Hour)),
		State:      models.SessionCompleted,
	}

	// Ожидания
	m.sessions.EXPECT().GetByID(ctx, sessionID).Return(completed, nil).Times(1)
	m.sessions.EXPECT().Delete(ctx, sessionID).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	err := service.DeleteSession(ctx, sessionID)

	// Проверки
	require.NoError(t, err)
}

func TestDeleteSession_RejectsOpenSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	sessionID := uuid.New()
	pending := &models.TrackingSession{
		ID:            sessionID,
		LocationID:    uuid.New(),
		ClockIn:       time.Now().Add(-time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(time.Now().Add(-time.Minute)),
	}

	// Ожидания
	m.sessions.EXPECT().GetByID(ctx, sessionID).Return(pending, nil).Times(1)
	m.sessions.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	err := service.DeleteSession(ctx, sessionID)

	// Проверки
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
}

func TestGetHistory_ClampsLimit(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()

	// Ожидания: выход за верхнюю границу зажимается, а не сбрасывается
	m.sessions.EXPECT().ListHistory(ctx, locationID, gomock.Any(), gomock.Any(), 1000).Return(nil, nil).Times(1)
	m.sessions.EXPECT().ListHistory(ctx, locationID, gomock.Any(), gomock.Any(), 100).Return(nil, nil).Times(1)

	// Действие
	_, err := service.GetHistory(ctx, locationID, time.Time{}, time.Time{}, 2000)
	require.NoError(t, err)
	_, err = service.GetHistory(ctx, locationID, time.Time{}, time.Time{}, 0)

	// Проверки
	require.NoError(t, err)
}

func TestGetActiveSession_NoSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()

	// Ожидания
	m.sessions.EXPECT().GetOpenByLocation(ctx, locationID).Return(nil, nil).Times(1)

	// Действие
	session, err := service.GetActiveSession(ctx, locationID)

	// Проверки
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Nil(t, session)
}

func TestReconcile_ConfirmsStalePending(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locationID := uuid.New()
	pendingAt := time.Now().Add(-30 * time.Minute) // старше порога в 10 минут
	stale := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    locationID,
		ClockIn:       time.Now().Add(-5 * time.Hour),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(pendingAt),
	}

	// Ожидания: перечитывание под блокировкой, отмена проверок, закрытие
	m.sessions.EXPECT().FindStalePending(ctx, gomock.Any()).Return([]*models.TrackingSession{stale}, nil).Times(1)
	m.sessions.EXPECT().GetByID(ctx, stale.ID).Return(stale, nil).Times(1)
	m.verifier.EXPECT().Cancel(ctx, locationID).Return(nil).Times(1)
	m.sessions.EXPECT().Update(ctx, stale).Return(nil).Times(1)
	m.caster.EXPECT().TrackingChanged(ctx, gomock.Any()).Return(nil).Times(1)
	m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	confirmed, err := service.Reconcile(ctx)

	// Проверки: clock-out исходным временем выхода, не временем выверки
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, models.SessionCompleted, stale.State)
	require.NotNil(t, stale.ClockOut)
	assert.True(t, stale.ClockOut.Equal(pendingAt))
}

func TestReconcile_SkipsResolvedSession(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	stale := &models.TrackingSession{
		ID:            uuid.New(),
		LocationID:    uuid.New(),
		State:         models.SessionPendingExit,
		PendingExitAt: timePtr(time.Now().Add(-30 * time.Minute)),
	}
	// Под блокировкой сессия оказывается уже закрытой колбэком
	resolved := &models.TrackingSession{
		ID:         stale.ID,
		LocationID: stale.LocationID,
		State:      models.SessionCompleted,
	}

	// Ожидания
	m.sessions.EXPECT().FindStalePending(ctx, gomock.Any()).Return([]*models.TrackingSession{stale}, nil).Times(1)
	m.sessions.EXPECT().GetByID(ctx, stale.ID).Return(resolved, nil).Times(1)
	m.verifier.EXPECT().Cancel(gomock.Any(), gomock.Any()).Times(0)
	m.sessions.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	confirmed, err := service.Reconcile(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 0, confirmed)
}

func TestGetStats_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	ignored := map[string]int{
		models.IgnoreDebounced:    3,
		models.IgnorePoorAccuracy: 1,
	}

	// Ожидания
	m.sessions.EXPECT().GetTrackingStats(ctx, 60).Return(2, 480, nil).Times(1)
	m.events.EXPECT().CountIgnoredByReason(ctx, 60).Return(ignored, nil).Times(1)

	// Действие: окно не задано, берётся из конфигурации
	stats, err := service.GetStats(ctx, 0)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CompletedSessions)
	assert.Equal(t, 480, stats.TrackedMinutes)
	assert.Equal(t, ignored, stats.IgnoredEvents)
}

func TestRegisterLocation_Success(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	loc := &models.WorkLocation{
		Name:         "Офис",
		Latitude:     55.7512,
		Longitude:    37.6184,
		RadiusMeters: 100,
	}

	// Ожидания: сначала сохранение, затем постановка на мониторинг
	m.locations.EXPECT().Create(ctx, loc).Return(nil).Times(1)
	m.monitor.EXPECT().Register(ctx, loc).Return(nil).Times(1)

	// Действие
	err := service.RegisterLocation(ctx, loc)

	// Проверки
	require.NoError(t, err)
}

func TestRestoreMonitoring_ReRegistersAll(t *testing.T) {
	// Подготовка
	service, m := newTestTrackingService(t)
	ctx := context.Background()
	locations := []*models.WorkLocation{
		{ID: uuid.New(), Name: "Офис"},
		{ID: uuid.New(), Name: "Склад"},
	}

	// Ожидания
	m.locations.EXPECT().List(ctx).Return(locations, nil).Times(1)
	m.monitor.EXPECT().Register(ctx, locations[0]).Return(nil).Times(1)
	m.monitor.EXPECT().Register(ctx, locations[1]).Return(nil).Times(1)

	// Действие
	err := service.RestoreMonitoring(ctx)

	// Проверки
	require.NoError(t, err)
}
