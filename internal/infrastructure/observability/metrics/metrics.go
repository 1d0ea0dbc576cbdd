// Package metrics registers the Prometheus collectors for lead capture,
// downloads, email delivery and HTTP traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LeadCaptures counts captures by outcome: new, existing or failed.
	LeadCaptures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adgrant_lead_captures_total",
		Help: "Total lead captures by outcome",
	}, []string{"outcome"})

	// Downloads counts download attempts by outcome.
	Downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adgrant_downloads_total",
		Help: "Total download attempts by outcome",
	}, []string{"outcome"})

	// EmailDeliveries counts delivery attempts by method.
	EmailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adgrant_email_deliveries_total",
		Help: "Total campaign email deliveries by method",
	}, []string{"method"})

	// HTTPRequestDuration tracks handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adgrant_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "route", "status"})

	// RateLimited counts requests rejected by the per-IP limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adgrant_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// Outcome labels shared by the counters above.
const (
	OutcomeNew          = "new"
	OutcomeExisting     = "existing"
	OutcomeFailed       = "failed"
	OutcomeServed       = "served"
	OutcomeTokenInvalid = "token_invalid"
	OutcomeNotFound     = "not_found"
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
