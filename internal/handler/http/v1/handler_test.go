package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	"github.com/lukashondrich/open-workinghours-sub004/internal/handler/http/v1/mocks"
	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

// newTestHandler создает новый экземпляр Handler с мокированным сервисом
func newTestHandler(t *testing.T) (*Handler, *mocks.MockTrackingService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockTrackingService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys:                []string{"test-api-key"},
		StatsTimeWindowMinutes: 60,
	}

	handler := NewHandler(mockService, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authHeader() map[string]string {
	return map[string]string{"X-API-Key": "test-api-key"}
}

func TestRegisterLocation_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	reqBody := RegisterLocationRequest{
		Name:         "Office",
		Latitude:     55.7512,
		Longitude:    37.6184,
		RadiusMeters: 100,
	}

	mockService.EXPECT().
		RegisterLocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, loc *models.WorkLocation) error {
			loc.ID = locationID
			loc.CreatedAt = time.Now()
			loc.UpdatedAt = time.Now()
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/locations", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp LocationResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, locationID, resp.ID)
	assert.Equal(t, reqBody.Name, resp.Name)
	assert.Equal(t, reqBody.RadiusMeters, resp.RadiusMeters)
}

func TestRegisterLocation_InvalidJSON(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().RegisterLocation(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/locations", bytes.NewBufferString("{not json"), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterLocation_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().RegisterLocation(gomock.Any(), gomock.Any()).Times(0)

	// Радиус обязателен и должен быть положительным
	reqBody := RegisterLocationRequest{
		Name:      "Office",
		Latitude:  55.7512,
		Longitude: 37.6184,
	}
	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/locations", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterLocation_Unauthorized(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().RegisterLocation(gomock.Any(), gomock.Any()).Times(0)

	reqBody := RegisterLocationRequest{
		Name:         "Office",
		Latitude:     55.7512,
		Longitude:    37.6184,
		RadiusMeters: 100,
	}
	bodyBytes, _ := json.Marshal(reqBody)

	// Без ключа
	w := makeRequest(router, "POST", "/api/v1/locations", bytes.NewBuffer(bodyBytes))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// С неверным ключом
	bodyBytes, _ = json.Marshal(reqBody)
	w = makeRequest(router, "POST", "/api/v1/locations", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteLocation_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()

	mockService.EXPECT().
		UnregisterLocation(gomock.Any(), locationID).
		Return(fmt.Errorf("wrapped: %w", service.ErrLocationNotFound)).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/locations/"+locationID.String(), nil, authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestGeofenceEvent_IgnoredEventReturned(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	reqBody := GeofenceEventRequest{
		LocationID: locationID,
		EventType:  models.EventExit,
		Timestamp:  time.Now(),
		Latitude:   55.7512,
		Longitude:  37.6184,
	}

	mockService.EXPECT().
		HandleGeofenceEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *models.GeofenceEvent) (*models.GeofenceEvent, error) {
			event.ID = uuid.New()
			event.Ignored = true
			event.IgnoreReason = models.IgnoreNoSession
			return event, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/geofence/events", bytes.NewBuffer(bodyBytes), authHeader())

	// Игнорирование - ожидаемый исход классификации, а не ошибка
	assert.Equal(t, http.StatusOK, w.Code)

	var resp GeofenceEventResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Ignored)
	assert.Equal(t, models.IgnoreNoSession, resp.IgnoreReason)
}

func TestIngestGeofenceEvent_InvalidEventType(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().HandleGeofenceEvent(gomock.Any(), gomock.Any()).Times(0)

	reqBody := GeofenceEventRequest{
		LocationID: uuid.New(),
		EventType:  "dwell",
		Timestamp:  time.Now(),
		Latitude:   55.7512,
		Longitude:  37.6184,
	}
	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/geofence/events", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClockIn_Conflict(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()

	mockService.EXPECT().
		ClockIn(gomock.Any(), locationID).
		Return(nil, service.ErrAlreadyClockedIn).Times(1)

	bodyBytes, _ := json.Marshal(ClockRequest{LocationID: locationID})
	w := makeRequest(router, "POST", "/api/v1/tracking/clock-in", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClockIn_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	session := &models.TrackingSession{
		ID:             uuid.New(),
		LocationID:     locationID,
		ClockIn:        time.Now(),
		TrackingMethod: models.MethodManual,
		State:          models.SessionActive,
	}

	mockService.EXPECT().
		ClockIn(gomock.Any(), locationID).
		Return(session, nil).Times(1)

	bodyBytes, _ := json.Marshal(ClockRequest{LocationID: locationID})
	w := makeRequest(router, "POST", "/api/v1/tracking/clock-in", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resp.ID)
	assert.Equal(t, models.SessionActive, resp.State)
	assert.Nil(t, resp.ClockOut)
}

func TestClockOut_NoActiveSession(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()

	mockService.EXPECT().
		ClockOut(gomock.Any(), locationID).
		Return(nil, service.ErrNoActiveSession).Times(1)

	bodyBytes, _ := json.Marshal(ClockRequest{LocationID: locationID})
	w := makeRequest(router, "POST", "/api/v1/tracking/clock-out", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateManualSession_InvalidInterval(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	start := time.Now()

	mockService.EXPECT().
		CreateManualSession(gomock.Any(), locationID, gomock.Any(), gomock.Any()).
		Return(nil, service.ErrInvalidInterval).Times(1)

	bodyBytes, _ := json.Marshal(ManualSessionRequest{LocationID: locationID, Start: start, End: start})
	w := makeRequest(router, "POST", "/api/v1/tracking/sessions", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateManualSession_Overlap(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	start := time.Now().Add(-4 * time.Hour)
	end := time.Now().Add(-time.Hour)

	mockService.EXPECT().
		CreateManualSession(gomock.Any(), locationID, gomock.Any(), gomock.Any()).
		Return(nil, service.ErrSessionOverlap).Times(1)

	bodyBytes, _ := json.Marshal(ManualSessionRequest{LocationID: locationID, Start: start, End: end})
	w := makeRequest(router, "POST", "/api/v1/tracking/sessions", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateSession_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	sessionID := uuid.New()
	start := time.Now().Add(-9 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(8 * time.Hour)
	minutes := 480
	updated := &models.TrackingSession{
		ID:              sessionID,
		LocationID:      uuid.New(),
		ClockIn:         start,
		ClockOut:        &end,
		DurationMinutes: &minutes,
		TrackingMethod:  models.MethodManual,
		State:           models.SessionCompleted,
	}

	mockService.EXPECT().
		UpdateManualSession(gomock.Any(), sessionID, gomock.Nil(), gomock.Any()).
		Return(updated, nil).Times(1)

	bodyBytes, _ := json.Marshal(SessionUpdateRequest{End: &end})
	w := makeRequest(router, "PATCH", "/api/v1/tracking/sessions/"+sessionID.String(), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, sessionID, resp.ID)
	require.NotNil(t, resp.DurationMinutes)
	assert.Equal(t, 480, *resp.DurationMinutes)
}

func TestUpdateSession_NoFields(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	sessionID := uuid.New()

	mockService.EXPECT().
		UpdateManualSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PATCH", "/api/v1/tracking/sessions/"+sessionID.String(), bytes.NewBufferString("{}"), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSession_OpenSessionConflict(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	sessionID := uuid.New()
	end := time.Now()

	mockService.EXPECT().
		UpdateManualSession(gomock.Any(), sessionID, gomock.Any(), gomock.Any()).
		Return(nil, service.ErrSessionNotCompleted).Times(1)

	bodyBytes, _ := json.Marshal(SessionUpdateRequest{End: &end})
	w := makeRequest(router, "PATCH", "/api/v1/tracking/sessions/"+sessionID.String(), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteSession_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	sessionID := uuid.New()

	mockService.EXPECT().
		DeleteSession(gomock.Any(), sessionID).
		Return(nil).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/tracking/sessions/"+sessionID.String(), nil, authHeader())

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestDeleteSession_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	sessionID := uuid.New()

	mockService.EXPECT().
		DeleteSession(gomock.Any(), sessionID).
		Return(service.ErrSessionNotFound).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/tracking/sessions/"+sessionID.String(), nil, authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetActiveSession_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	pendingAt := time.Now().Add(-time.Minute)
	session := &models.TrackingSession{
		ID:             uuid.New(),
		LocationID:     locationID,
		ClockIn:        time.Now().Add(-2 * time.Hour),
		TrackingMethod: models.MethodGeofenceAuto,
		State:          models.SessionPendingExit,
		PendingExitAt:  &pendingAt,
	}

	mockService.EXPECT().
		GetActiveSession(gomock.Any(), locationID).
		Return(session, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/tracking/active?location_id="+locationID.String(), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPendingExit, resp.State)
	require.NotNil(t, resp.PendingExitAt)
}

func TestGetActiveSession_InvalidLocationID(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().GetActiveSession(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/tracking/active?location_id=not-a-uuid", nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()
	clockOut := time.Now().Add(-time.Hour)
	duration := 420
	sessions := []*models.TrackingSession{
		{
			ID:              uuid.New(),
			LocationID:      locationID,
			ClockIn:         clockOut.Add(-7 * time.Hour),
			ClockOut:        &clockOut,
			DurationMinutes: &duration,
			TrackingMethod:  models.MethodGeofenceAuto,
			State:           models.SessionCompleted,
		},
	}

	mockService.EXPECT().
		GetHistory(gomock.Any(), locationID, gomock.Any(), gomock.Any(), 25).
		Return(sessions, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/tracking/history?location_id="+locationID.String()+"&limit=25", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []SessionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, models.SessionCompleted, resp[0].State)
	require.NotNil(t, resp[0].DurationMinutes)
	assert.Equal(t, duration, *resp[0].DurationMinutes)
}

func TestGetHistory_InvalidFromTimestamp(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	locationID := uuid.New()

	mockService.EXPECT().GetHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/tracking/history?location_id="+locationID.String()+"&from=yesterday", nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcile_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().
		Reconcile(gomock.Any()).
		Return(2, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/tracking/reconcile", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReconcileResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Confirmed)
}

func TestGetStats_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	stats := &service.TrackingStats{
		CompletedSessions: 3,
		TrackedMinutes:    1260,
		IgnoredEvents:     map[string]int{models.IgnoreDebounced: 5},
	}

	mockService.EXPECT().
		GetStats(gomock.Any(), 30).
		Return(stats, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/tracking/stats?minutes=30", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CompletedSessions)
	assert.Equal(t, 1260, resp.TrackedMinutes)
	assert.Equal(t, 5, resp.IgnoredEvents[models.IgnoreDebounced])
}

func TestReportPosition_Accepted(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().
		ReportPosition(gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	bodyBytes, _ := json.Marshal(PositionReportRequest{
		Latitude:  55.7512,
		Longitude: 37.6184,
		Accuracy:  15,
		Timestamp: time.Now(),
	})
	w := makeRequest(router, "POST", "/api/v1/positions", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestHealthCheck_OpenWithoutAPIKey(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
