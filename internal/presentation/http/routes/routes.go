// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/brightforge/brightforge-go/internal/application/container"
	"github.com/brightforge/brightforge-go/internal/presentation/http/handlers"
	"github.com/brightforge/brightforge-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	analyticsHandlers := handlers.NewAnalyticsHandlers(container.IngestService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	dashboardHandlers := handlers.NewDashboardHandlers(container.DashboardService, container.Logger, container.PerfTracker)
	leadHandlers := handlers.NewLeadHandlers(container.LeadService, container.Logger, container.PerfTracker)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/analytics", analyticsHandlers.PostSnapshot)
		api.POST("/leads", leadHandlers.PostLead)
		api.GET("/leads/profile", leadHandlers.GetDecodeProfile)

		admin := api.Group("/admin")
		{
			admin.POST("/auth", authHandlers.PostLogin)
			admin.POST("/logout", authHandlers.PostLogout)
			admin.GET("/status", authHandlers.GetStatus)

			guarded := admin.Group("")
			guarded.Use(middleware.AdminAuthMiddleware(container.AuthService))
			{
				guarded.GET("/data", dashboardHandlers.GetSummary)
				guarded.GET("/operations", dashboardHandlers.GetOperations)
			}
		}
	}

	return r
}
