package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// DownloadHandlers serves campaign bundles for download tokens
type DownloadHandlers struct {
	downloadService *services.DownloadService
	logger          *logging.ChanneledLogger
}

// NewDownloadHandlers creates download handlers with injected dependencies
func NewDownloadHandlers(downloadService *services.DownloadService, logger *logging.ChanneledLogger) *DownloadHandlers {
	return &DownloadHandlers{
		downloadService: downloadService,
		logger:          logger,
	}
}

// GetDownload handles GET /api/v1/download/:token
func (h *DownloadHandlers) GetDownload(c *gin.Context) {
	token := c.Param("token")

	result, err := h.downloadService.Handle(c.Request.Context(), token)
	if err != nil {
		h.logger.Download().Info("Download request failed", "error", err.Error(), "requestId", middleware.GetRequestID(c))
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Header("Content-Length", strconv.Itoa(len(result.Data)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/zip", result.Data)
}
