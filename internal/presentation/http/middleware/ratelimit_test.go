package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_BudgetAndRefill(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(3, 3*time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("203.0.113.7"), "request %d", i)
	}
	assert.False(t, limiter.Allow("203.0.113.7"))
	assert.True(t, limiter.Allow("203.0.113.8"), "budgets are per IP")

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("203.0.113.7"), "one token refills per window/requests")
	assert.False(t, limiter.Allow("203.0.113.7"))
}

func TestIPRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.Allow("203.0.113.7")
	assert.Len(t, limiter.visitors, 1)

	now = now.Add(2 * time.Minute)
	limiter.Allow("203.0.113.8")
	assert.Len(t, limiter.visitors, 1)
	_, kept := limiter.visitors["203.0.113.8"]
	assert.True(t, kept)
}

func TestNewIPRateLimiter_Defaults(t *testing.T) {
	limiter := NewIPRateLimiter(0, 0)
	assert.Equal(t, 100, limiter.burst)
	assert.Equal(t, 15*time.Minute, limiter.window)
}
