package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandlers contains the dashboard API handlers
type AdminHandlers struct {
	adminService *services.AdminService
	logger       *logging.ChanneledLogger
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(adminService *services.AdminService, logger *logging.ChanneledLogger) *AdminHandlers {
	return &AdminHandlers{
		adminService: adminService,
		logger:       logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PostLogin handles POST /api/v1/admin/login
func (h *AdminHandlers) PostLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Username and password are required"})
		return
	}

	result, err := h.adminService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user": gin.H{
			"username": result.Username,
			"role":     result.Role,
		},
	})
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandlers) GetDashboard(c *gin.Context) {
	start := time.Now()

	dash, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Leads().Error("Dashboard request failed", "error", err.Error(), "requestId", middleware.GetRequestID(c))
		respondError(c, err)
		return
	}

	h.logger.Leads().Debug("Dashboard served", "totalLeads", dash.Overview.TotalLeads, "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dash})
}

// GetLeads handles GET /api/v1/admin/leads?page&limit&search
func (h *AdminHandlers) GetLeads(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", leads.DefaultPageLimit)

	result, err := h.adminService.ListLeads(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		h.logger.Leads().Error("List leads request failed", "error", err.Error(), "requestId", middleware.GetRequestID(c))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"leads": result.Leads,
			"pagination": gin.H{
				"page":       result.Page,
				"limit":      result.Limit,
				"total":      result.Total,
				"totalPages": result.TotalPages,
			},
		},
	})
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandlers) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

type cleanupRequest struct {
	Days int `json:"days"`
}

// PostCleanup handles POST /api/v1/admin/cleanup
func (h *AdminHandlers) PostCleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	removed, err := h.adminService.Cleanup(c.Request.Context(), req.Days)
	if err != nil {
		respondError(c, err)
		return
	}

	claims, _ := middleware.GetAdminClaims(c)
	username := ""
	if claims != nil {
		username = claims.Username
	}
	h.logger.Leads().Info("Cleanup requested from dashboard", "days", req.Days, "removed", removed, "by", logging.MaskIdentifier(username))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"removed": removed, "days": req.Days}})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
