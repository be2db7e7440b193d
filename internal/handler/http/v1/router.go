package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check доступен без аутентификации
	api.GET("/system/health", h.healthCheck)

	secured := api.Group("")
	secured.Use(APIKeyAuthMiddleware(h.cfg, h.logger))

	// Маршруты для управления рабочими локациями
	locations := secured.Group("/locations")
	{
		locations.POST("", h.registerLocation)
		locations.GET("", h.listLocations)
		locations.DELETE("/:id", h.deleteLocation)
	}

	// Маршрут приёма сырых сигналов геозоны
	secured.POST("/geofence/events", h.ingestGeofenceEvent)

	// Маршрут приёма показаний позиции устройства
	secured.POST("/positions", h.reportPosition)

	// Маршруты трекинга рабочих сессий
	tracking := secured.Group("/tracking")
	{
		tracking.POST("/clock-in", h.clockIn)
		tracking.POST("/clock-out", h.clockOut)
		tracking.POST("/sessions", h.createManualSession)
		tracking.PATCH("/sessions/:id", h.updateSession)
		tracking.DELETE("/sessions/:id", h.deleteSession)
		tracking.GET("/active", h.getActiveSession)
		tracking.GET("/history", h.getHistory)
		tracking.POST("/reconcile", h.reconcile)
		tracking.GET("/stats", h.getStats)
	}
}
