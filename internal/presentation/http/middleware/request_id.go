// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"context"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID assigns every request an id, reusing a client-supplied one when present.
// The id is echoed in the response header and carried on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logging.RequestIDKey, id))
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog records one line per request on the http channel and feeds the
// request duration histogram.
func AccessLog(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, statusClass(status)).Observe(duration.Seconds())

		log := logger.HTTP().With(
			"requestId", GetRequestID(c),
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", duration,
			"clientIp", c.ClientIP(),
		)
		switch {
		case status >= 500:
			log.Error("Request failed")
		case status >= 400:
			log.Info("Request rejected")
		default:
			log.Debug("Request completed")
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
