package leads

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadAt(created time.Time, downloads int) *Lead {
	l := NewLead{Email: "x@example.org", Consent: true}.Build("id", created)
	l.DownloadCount = downloads
	if downloads > 0 {
		t := created.Add(time.Minute)
		l.LastDownload = &t
	}
	return l
}

func TestComputeStats_Empty(t *testing.T) {
	t.Parallel()

	stats := ComputeStats(nil, time.Now())
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, "0%", stats.ConversionRate)
}

func TestComputeStats_AllConverted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	leads := []*Lead{leadAt(now.Add(-time.Hour), 1), leadAt(now.Add(-48*time.Hour), 3)}

	stats := ComputeStats(leads, now)
	assert.Equal(t, "100.0%", stats.ConversionRate)
	assert.Equal(t, 4, stats.TotalDownloads)
}

func TestComputeStats_Windows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	leads := []*Lead{
		leadAt(now.Add(-1*time.Hour), 0),     // today
		leadAt(now.Add(-16*time.Hour), 2),    // yesterday, inside the week
		leadAt(now.Add(-10*24*time.Hour), 0), // inside the month only
		leadAt(now.Add(-40*24*time.Hour), 0), // outside every window
	}

	stats := ComputeStats(leads, now)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 2, stats.ThisWeek)
	assert.Equal(t, 3, stats.ThisMonth)
	assert.Equal(t, 2, stats.TotalDownloads)
	assert.Equal(t, "25.0%", stats.ConversionRate)
}

func TestComputeStats_TodayStartsAtMidnight(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	leads := []*Lead{
		leadAt(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 0),
		leadAt(time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC), 0),
	}

	stats := ComputeStats(leads, now)
	assert.Equal(t, 1, stats.Today)
}

func TestComputeStats_OneDecimal(t *testing.T) {
	t.Parallel()

	now := time.Now()
	leads := []*Lead{leadAt(now, 1), leadAt(now, 0), leadAt(now, 0)}
	assert.Equal(t, "33.3%", ComputeStats(leads, now).ConversionRate)
}

func TestNewLeadBuild(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewLead{Email: "  Someone@Example.ORG ", OrganizationName: "", WebsiteURL: "https://x.org", Consent: true}.Build("abc", now)

	assert.Equal(t, "someone@example.org", l.Email)
	assert.Nil(t, l.OrganizationName)
	assert.Equal(t, "https://x.org", l.Website())
	assert.Equal(t, 0, l.DownloadCount)
	assert.Nil(t, l.LastDownload)
	assert.False(t, l.HasDownloaded())
}

func TestValidationErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("capture: %w", NewValidationError("email", "is required"))
	require.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)
}
