package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.Use(RateLimitMiddleware(h.cfg.RateLimitRPS, h.cfg.RateLimitBurst, h.logger))
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Записи с координатами и поиск ближайших
	entities := api.Group("/entities")
	{
		entities.POST("", auth, h.createEntity)
		entities.GET("/nearby", h.nearby)
		entities.GET("/:id", h.getEntity)
		entities.PUT("/:id", auth, h.updateEntity)
	}

	// Камеры: оценка плотности и снимки
	cameras := api.Group("/cameras")
	{
		cameras.POST("/score", h.scoreBatch)
		cameras.POST("/observations", auth, h.ingestBatch)
		cameras.POST("/batches", auth, h.ingestBatches)
		cameras.GET("/ranking", h.ranking)
		cameras.GET("/:id/snapshot", h.getSnapshot)
		cameras.DELETE("/snapshots", auth, h.purgeSnapshots)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.PUT("/:id/resolve", auth, h.resolveAlert)
	}

	api.GET("/system/overview", h.overview)
	api.GET("/system/health", h.healthCheck)
}
