package leads

import (
	"fmt"
	"time"
)

const (
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour // a fixed 30-day window, not a calendar month
)

// Stats is an on-demand snapshot over the whole lead collection.
type Stats struct {
	Total          int    `json:"total"`
	Today          int    `json:"today"`
	ThisWeek       int    `json:"thisWeek"`
	ThisMonth      int    `json:"thisMonth"`
	TotalDownloads int    `json:"totalDownloads"`
	ConversionRate string `json:"conversionRate"`
}

// ComputeStats aggregates counts relative to now. "Today" starts at local
// midnight of now's date in now's location; week and month are rolling windows.
func ComputeStats(leads []*Lead, now time.Time) Stats {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-weekWindow)
	monthStart := now.Add(-monthWindow)

	var stats Stats
	converted := 0
	for _, lead := range leads {
		if lead == nil {
			continue
		}
		stats.Total++
		created := lead.CreatedAt
		if !created.Before(midnight) {
			stats.Today++
		}
		if !created.Before(weekStart) {
			stats.ThisWeek++
		}
		if !created.Before(monthStart) {
			stats.ThisMonth++
		}
		stats.TotalDownloads += lead.DownloadCount
		if lead.HasDownloaded() {
			converted++
		}
	}

	stats.ConversionRate = conversionRate(converted, stats.Total)
	return stats
}

func conversionRate(converted, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(converted)/float64(total)*100)
}
