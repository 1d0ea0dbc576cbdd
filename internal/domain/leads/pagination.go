package leads

import (
	"sort"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is one slice of the admin lead listing.
type Page struct {
	Leads      []*Lead `json:"leads"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// Paginate filters by a case-insensitive substring of email, organization
// or website, orders newest first and returns the requested page.
// The input slice is not modified.
func Paginate(all []*Lead, page, limit int, search string) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	filtered := make([]*Lead, 0, len(all))
	for _, lead := range all {
		if lead == nil {
			continue
		}
		if needle == "" || matches(lead, needle) {
			filtered = append(filtered, lead)
		}
	}
	SortNewestFirst(filtered)

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Page{
		Leads:      filtered[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// SortNewestFirst orders leads by creation time, most recent first.
func SortNewestFirst(leads []*Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}

func matches(lead *Lead, needle string) bool {
	return strings.Contains(strings.ToLower(lead.Email), needle) ||
		strings.Contains(strings.ToLower(lead.Organization()), needle) ||
		strings.Contains(strings.ToLower(lead.Website()), needle)
}
