// Package leads defines the lead entity, its derived views and the
// repository interface that abstracts where lead records live.
// The core never references a concrete storage backend.
package leads

import (
	"context"
	"strings"
	"time"
)

// Lead represents a person who requested generated campaign files.
type Lead struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	OrganizationName *string    `json:"organizationName"`
	WebsiteURL       *string    `json:"websiteUrl"`
	CampaignID       *string    `json:"campaignId"`
	Consent          bool       `json:"consent"`
	CreatedAt        time.Time  `json:"createdAt"`
	DownloadCount    int        `json:"downloadCount"`
	LastDownload     *time.Time `json:"lastDownload"` // nil until the first download
	IPAddress        *string    `json:"ipAddress"`
	UserAgent        *string    `json:"userAgent"`
}

// NewLead carries the caller-supplied fields for a lead that does not exist yet.
// ID, CreatedAt and the download counters are assigned by the repository.
type NewLead struct {
	Email            string
	OrganizationName string
	WebsiteURL       string
	CampaignID       string
	Consent          bool
	IPAddress        string
	UserAgent        string
}

// Organization returns the organization name or "" when unset.
func (l *Lead) Organization() string { return deref(l.OrganizationName) }

// Website returns the website URL or "" when unset.
func (l *Lead) Website() string { return deref(l.WebsiteURL) }

// Campaign returns the campaign id or "" when unset.
func (l *Lead) Campaign() string { return deref(l.CampaignID) }

// HasDownloaded reports whether the lead has fetched its files at least once.
func (l *Lead) HasDownloaded() bool { return l.DownloadCount > 0 }

// Build materializes a Lead from creation input. Empty optional strings are stored as nil.
func (n NewLead) Build(id string, now time.Time) *Lead {
	return &Lead{
		ID:               id,
		Email:            NormalizeEmail(n.Email),
		OrganizationName: optional(n.OrganizationName),
		WebsiteURL:       optional(n.WebsiteURL),
		CampaignID:       optional(n.CampaignID),
		Consent:          n.Consent,
		CreatedAt:        now.UTC(),
		DownloadCount:    0,
		LastDownload:     nil,
		IPAddress:        optional(n.IPAddress),
		UserAgent:        optional(n.UserAgent),
	}
}

// NormalizeEmail trims and lower-cases an address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository defines the operations for persisting Lead entities.
// Implementations serialize their own read-modify-write cycles.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Lead, error)
	SaveAll(ctx context.Context, leads []*Lead) error
	Add(ctx context.Context, lead NewLead) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	RecordDownload(ctx context.Context, id string) (*Lead, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int, error)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
