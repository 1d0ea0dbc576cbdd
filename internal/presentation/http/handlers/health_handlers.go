package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandlers serves the unauthenticated health endpoints
type HealthHandlers struct {
	version string
	started time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(version string) *HealthHandlers {
	return &HealthHandlers{version: version, started: time.Now()}
}

// GetRoot handles GET /
func (h *HealthHandlers) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Ad Grant AI lead capture API",
		"version": h.version,
		"endpoints": gin.H{
			"captureLead":    "POST /api/v1/capture-lead",
			"download":       "GET /api/v1/download/:token",
			"resendDownload": "POST /api/v1/resend-download",
			"admin":          "/api/v1/admin",
			"health":         "GET /healthz",
		},
	})
}

// GetHealth handles GET /healthz
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
