package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/shared/middleware"
	"pos-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupImportRoutes(v1, c)
	}

	return router
}

// ========================================
// IMPORT ROUTES
// ========================================
// Bulk imports create products and accounts, so the whole group is admin
// only. The template download sits in the same group since only admins
// have a use for it.
func setupImportRoutes(v1 *gin.RouterGroup, c *container.Container) {
	imports := v1.Group("/imports")
	imports.Use(middleware.AuthMiddleware(c.Config.JWT.Secret), middleware.AdminMiddleware())
	{
		imports.POST("", c.ImportHandler.StartImport)
		imports.GET("", c.ImportHandler.ListJobs)
		imports.GET("/templates/:kind", c.ImportHandler.Template)
		imports.GET("/:id", c.ImportHandler.GetJob)
		imports.GET("/:id/records", c.ImportHandler.ListRecords)
		imports.GET("/:id/events", c.ImportHandler.Events)
		imports.PATCH("/:id", c.ImportHandler.UpdateStatus)
		imports.POST("/:id/retry", c.ImportHandler.Retry)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = err.Error()
		}

		redisStatus := "ok"
		if err := appCtx.Redis.HealthCheck(ctx); err != nil {
			redisStatus = err.Error()
		}

		status := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":   "up",
			"database": dbStatus,
			"redis":    redisStatus,
		})
	}
}
