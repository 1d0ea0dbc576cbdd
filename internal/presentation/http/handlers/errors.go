// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/gin-gonic/gin"
)

// statusFor maps the error taxonomy to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var verr *leads.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, leads.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, leads.ErrTokenInvalid):
		return http.StatusGone, "Download link has expired or is invalid. Please request a new one."
	case errors.Is(err, leads.ErrLeadNotFound):
		return http.StatusNotFound, "Lead not found"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, leads.ErrStorageCorrupt):
		return http.StatusInternalServerError, "Lead storage is unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, gin.H{"success": false, "error": message})
}
