package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// LeadHandlers contains the public capture and resend handlers
type LeadHandlers struct {
	captureService *services.LeadCaptureService
	resendService  *services.ResendService
	logger         *logging.ChanneledLogger
}

// NewLeadHandlers creates lead handlers with injected dependencies
func NewLeadHandlers(captureService *services.LeadCaptureService, resendService *services.ResendService, logger *logging.ChanneledLogger) *LeadHandlers {
	return &LeadHandlers{
		captureService: captureService,
		resendService:  resendService,
		logger:         logger,
	}
}

// PostCaptureLead handles POST /api/v1/capture-lead
func (h *LeadHandlers) PostCaptureLead(c *gin.Context) {
	start := time.Now()
	h.logger.Leads().Debug("Received capture lead request", "requestId", middleware.GetRequestID(c))

	var req services.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	result, err := h.captureService.Capture(c.Request.Context(), req)
	if err != nil {
		h.logger.Leads().Info("Capture lead request failed", "error", err.Error(), "requestId", middleware.GetRequestID(c), "duration", time.Since(start))
		respondError(c, err)
		return
	}

	message := "Campaign files sent to your email"
	if result.MailtoLink != "" {
		message = "Campaign ready. Use the email link to send the files to yourself."
	}

	h.logger.Leads().Info("Capture lead request completed", "leadId", result.LeadID, "requestId", middleware.GetRequestID(c), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    result,
	})
}

type resendRequest struct {
	Email string `json:"email"`
}

// PostResendDownload handles POST /api/v1/resend-download
func (h *LeadHandlers) PostResendDownload(c *gin.Context) {
	start := time.Now()

	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result, err := h.resendService.Resend(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Leads().Info("Resend download request failed", "error", err.Error(), "requestId", middleware.GetRequestID(c), "duration", time.Since(start))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "A new download link has been issued",
		"data":    result,
	})
}
