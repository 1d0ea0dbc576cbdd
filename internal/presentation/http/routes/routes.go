// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"os"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/container"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(container.Logger))
	r.Use(middleware.CORSMiddleware(container.HTTP.CORSOrigins))

	// Serve the static admin dashboard when it has been built.
	if dir := container.HTTP.AdminStaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Static("/admin", dir)
		}
	}

	// Initialize handlers
	healthHandlers := handlers.NewHealthHandlers(container.HTTP.Version)
	leadHandlers := handlers.NewLeadHandlers(container.LeadCaptureService, container.ResendService, container.Logger)
	downloadHandlers := handlers.NewDownloadHandlers(container.DownloadService, container.Logger)
	adminHandlers := handlers.NewAdminHandlers(container.AdminService, container.Logger)

	r.GET("/", healthHandlers.GetRoot)
	r.GET("/healthz", healthHandlers.GetHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := middleware.NewIPRateLimiter(container.HTTP.RateLimitRequests, container.HTTP.RateLimitWindow)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter, container.Logger))
	{
		api.POST("/capture-lead", leadHandlers.PostCaptureLead)
		api.POST("/resend-download", leadHandlers.PostResendDownload)
		api.GET("/download/:token", downloadHandlers.GetDownload)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandlers.PostLogin)

			// Admin authenticated endpoints
			protected := admin.Group("")
			protected.Use(middleware.AdminAuth(container.AdminService.JWTSecret(), container.Logger))
			{
				protected.GET("/dashboard", adminHandlers.GetDashboard)
				protected.GET("/leads", adminHandlers.GetLeads)
				protected.GET("/stats", adminHandlers.GetStats)
				protected.POST("/cleanup", adminHandlers.PostCleanup)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"success": false, "error": "Endpoint not found"})
	})

	return r
}
