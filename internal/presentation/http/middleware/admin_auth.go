package middleware

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

const adminClaimsKey = "adminClaims"

// AdminAuth requires a valid admin bearer token.
func AdminAuth(jwtSecret string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Auth().Debug("Admin request without bearer token", "path", c.Request.URL.Path, "requestId", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Access token required"})
			return
		}

		claims, err := security.ValidateAdminToken(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
		if err != nil {
			logger.Auth().Info("Admin token rejected", "error", err.Error(), "path", c.Request.URL.Path, "requestId", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}

// GetAdminClaims returns the claims stored by AdminAuth.
func GetAdminClaims(c *gin.Context) (*security.AdminClaims, bool) {
	v, ok := c.Get(adminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.AdminClaims)
	return claims, ok
}
