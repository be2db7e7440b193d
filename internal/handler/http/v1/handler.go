package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	"github.com/lukashondrich/open-workinghours-sub004/internal/models"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
)

type Handler struct {
	trackingService service.TrackingService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(trackingService service.TrackingService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		trackingService: trackingService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// respondServiceError отображает ошибки сервиса в коды HTTP
func (h *Handler) respondServiceError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyClockedIn), errors.Is(err, service.ErrSessionOverlap), errors.Is(err, service.ErrSessionNotCompleted):
		log.WithError(err).Warn("Request rejected")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoActiveSession), errors.Is(err, service.ErrLocationNotFound), errors.Is(err, service.ErrSessionNotFound):
		log.WithError(err).Warn("Request target not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInterval):
		log.WithError(err).Warn("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Request failed in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Register a work location
// @Description Register a new work location geofence and start monitoring it. Requires API key.
// @Tags Locations
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param location body RegisterLocationRequest true "Location registration request"
// @Success 201 {object} LocationResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /locations [post]
func (h *Handler) registerLocation(c *gin.Context) {
	var input RegisterLocationRequest
	log := h.logger.WithField("method", "registerLocation")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToLocationModel(input)
	if err := h.trackingService.RegisterLocation(c.Request.Context(), model); err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToLocationResponse(model))
}

// @Summary List work locations
// @Description Get all registered work locations. Requires API key.
// @Tags Locations
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} LocationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /locations [get]
func (h *Handler) listLocations(c *gin.Context) {
	log := h.logger.WithField("method", "listLocations")

	locations, err := h.trackingService.ListLocations(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToLocationResponses(locations))
}

// @Summary Unregister a work location
// @Description Stop monitoring a work location and delete it. Requires API key.
// @Tags Locations
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Location ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid location ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Location not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /locations/{id} [delete]
func (h *Handler) deleteLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}
	log := h.logger.WithField("method", "deleteLocation").WithField("id", id)

	if err := h.trackingService.UnregisterLocation(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Ingest a geofence event
// @Description Ingest a raw enter/exit signal from the region monitor. Ignored events are an expected classified outcome, returned with their reason. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param event body GeofenceEventRequest true "Geofence event"
// @Success 200 {object} GeofenceEventResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /geofence/events [post]
func (h *Handler) ingestGeofenceEvent(c *gin.Context) {
	var input GeofenceEventRequest
	log := h.logger.WithField("method", "ingestGeofenceEvent")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.trackingService.HandleGeofenceEvent(c.Request.Context(), DTOToEventModel(input))
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToEventResponse(event))
}

// @Summary Report a device position
// @Description Store the latest position reading reported by a device. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param position body PositionReportRequest true "Position reading"
// @Success 202 "Accepted"
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions [post]
func (h *Handler) reportPosition(c *gin.Context) {
	var input PositionReportRequest
	log := h.logger.WithField("method", "reportPosition")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := &models.Position{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Accuracy:  input.Accuracy,
		Timestamp: input.Timestamp,
	}
	if err := h.trackingService.ReportPosition(c.Request.Context(), p); err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary Manual clock-in
// @Description Open a tracking session manually. Rejected if a session is already open for the location. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ClockRequest true "Clock-in request"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Location not found"
// @Failure 409 {object} map[string]string "Already clocked in"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/clock-in [post]
func (h *Handler) clockIn(c *gin.Context) {
	var input ClockRequest
	log := h.logger.WithField("method", "clockIn")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.trackingService.ClockIn(c.Request.Context(), input.LocationID)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToSessionResponse(session))
}

// @Summary Manual clock-out
// @Description Complete the open tracking session manually, cancelling any in-flight exit verification. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ClockRequest true "Clock-out request"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No active session"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/clock-out [post]
func (h *Handler) clockOut(c *gin.Context) {
	var input ClockRequest
	log := h.logger.WithField("method", "clockOut")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.trackingService.ClockOut(c.Request.Context(), input.LocationID)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSessionResponse(session))
}

// @Summary Create a retroactive manual session
// @Description Create a completed session for a past interval. Rejects end <= start and overlaps with existing sessions. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ManualSessionRequest true "Manual session request"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body, validation error or invalid interval"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Location not found"
// @Failure 409 {object} map[string]string "Overlapping session"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/sessions [post]
func (h *Handler) createManualSession(c *gin.Context) {
	var input ManualSessionRequest
	log := h.logger.WithField("method", "createManualSession")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.trackingService.CreateManualSession(c.Request.Context(), input.LocationID, input.Start, input.End)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToSessionResponse(session))
}

// @Summary Adjust a completed session
// @Description Partially update the boundaries of a completed session. Open sessions belong to the tracking state machine and cannot be edited. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Param request body SessionUpdateRequest true "Fields to update"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body, session ID or interval"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session still open or overlapping session"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/sessions/{id} [patch]
func (h *Handler) updateSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	log := h.logger.WithField("method", "updateSession").WithField("session_id", id)

	var input SessionUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if input.Start == nil && input.End == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	session, err := h.trackingService.UpdateManualSession(c.Request.Context(), id, input.Start, input.End)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSessionResponse(session))
}

// @Summary Delete a completed session
// @Description Hard-delete a completed session. Deleted sessions cannot be recovered. Open sessions cannot be deleted. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid session ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session still open"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/sessions/{id} [delete]
func (h *Handler) deleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	log := h.logger.WithField("method", "deleteSession").WithField("session_id", id)

	if err := h.trackingService.DeleteSession(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get the active session
// @Description Get the open (active or pending exit) session for a location. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param location_id query string true "Location ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid location ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No active session"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/active [get]
func (h *Handler) getActiveSession(c *gin.Context) {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}
	log := h.logger.WithField("method", "getActiveSession").WithField("location_id", locationID)

	session, err := h.trackingService.GetActiveSession(c.Request.Context(), locationID)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSessionResponse(session))
}

// @Summary Get session history
// @Description Get completed sessions for a location, most recent first. Optional date range filters. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param location_id query string true "Location ID"
// @Param from query string false "Start of range (RFC3339)"
// @Param to query string false "End of range (RFC3339)"
// @Param limit query int false "Maximum number of results" default(100)
// @Success 200 {array} SessionResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location ID"})
		return
	}
	log := h.logger.WithField("method", "getHistory").WithField("location_id", locationID)

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	sessions, err := h.trackingService.GetHistory(c.Request.Context(), locationID, from, to, limit)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToSessionResponses(sessions))
}

// @Summary Run a reconciliation pass
// @Description Confirm all stale pending exits. Called when the client app returns to the foreground. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} ReconcileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/reconcile [post]
func (h *Handler) reconcile(c *gin.Context) {
	log := h.logger.WithField("method", "reconcile")

	confirmed, err := h.trackingService.Reconcile(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ReconcileResponse{Confirmed: confirmed})
}

// @Summary Get tracking statistics
// @Description Get completed session counts, tracked minutes and ignored event breakdown for a time window. Falls back to the configured window when minutes is omitted. Requires API key.
// @Tags Tracking
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param minutes query int false "Time window in minutes"
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tracking/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	minutes, _ := strconv.Atoi(c.DefaultQuery("minutes", "0"))
	stats, err := h.trackingService.GetStats(c.Request.Context(), minutes)
	if err != nil {
		h.respondServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		CompletedSessions: stats.CompletedSessions,
		TrackedMinutes:    stats.TrackedMinutes,
		IgnoredEvents:     stats.IgnoredEvents,
	})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
