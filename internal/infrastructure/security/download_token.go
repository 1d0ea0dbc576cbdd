// Package security provides the download token codec.
package security

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
)

const (
	// TokenSeparator joins the four token fields. Ids must not contain it.
	TokenSeparator = "_"

	DefaultDownloadTokenTTL = 24 * time.Hour

	nonceLength = 11
	tokenParts  = 4
	clockSkew   = time.Minute
)

// DownloadClaims is what a valid token grants: files for one lead and campaign.
type DownloadClaims struct {
	LeadID     string
	CampaignID string
	IssuedAt   time.Time
	ttl        time.Duration
}

// ExpiresAt reports when the token stops validating.
func (c DownloadClaims) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.ttl)
}

// DownloadTokenCodec mints and validates "{leadId}_{campaignId}_{issuedAtMillis}_{nonce}"
// bearer strings. Tokens are not signed: anyone who can guess a lead id can
// forge one, so treat them as obfuscated capabilities only.
type DownloadTokenCodec struct {
	TTL time.Duration
	Now func() time.Time
}

// NewDownloadTokenCodec returns a codec using the wall clock.
func NewDownloadTokenCodec(ttl time.Duration) *DownloadTokenCodec {
	if ttl <= 0 {
		ttl = DefaultDownloadTokenTTL
	}
	return &DownloadTokenCodec{TTL: ttl, Now: time.Now}
}

func (c *DownloadTokenCodec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *DownloadTokenCodec) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultDownloadTokenTTL
	}
	return c.TTL
}

// Mint issues a token for the lead and campaign at the current time.
func (c *DownloadTokenCodec) Mint(leadID, campaignID string) (string, error) {
	if err := checkTokenField("leadId", leadID); err != nil {
		return "", err
	}
	if err := checkTokenField("campaignId", campaignID); err != nil {
		return "", err
	}

	nonce, err := RandomAlphanumeric(nonceLength)
	if err != nil {
		return "", err
	}

	issued := strconv.FormatInt(c.now().UnixMilli(), 10)
	return strings.Join([]string{leadID, campaignID, issued, nonce}, TokenSeparator), nil
}

// Validate parses a token and checks its age. Every failure, structural or
// temporal, is reported as leads.ErrTokenInvalid.
func (c *DownloadTokenCodec) Validate(token string) (DownloadClaims, error) {
	parts := strings.Split(token, TokenSeparator)
	if len(parts) != tokenParts {
		return DownloadClaims{}, fmt.Errorf("%w: expected %d fields, got %d", leads.ErrTokenInvalid, tokenParts, len(parts))
	}

	leadID, campaignID, issuedRaw := parts[0], parts[1], parts[2]
	if leadID == "" || campaignID == "" {
		return DownloadClaims{}, fmt.Errorf("%w: empty identity field", leads.ErrTokenInvalid)
	}

	issuedMillis, err := strconv.ParseInt(issuedRaw, 10, 64)
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("%w: bad timestamp", leads.ErrTokenInvalid)
	}

	issuedAt := time.UnixMilli(issuedMillis)
	age := c.now().Sub(issuedAt)
	if age > c.ttl() {
		return DownloadClaims{}, fmt.Errorf("%w: expired %s ago", leads.ErrTokenInvalid, (age - c.ttl()).Round(time.Second))
	}
	if age < -clockSkew {
		return DownloadClaims{}, fmt.Errorf("%w: issued in the future", leads.ErrTokenInvalid)
	}

	return DownloadClaims{
		LeadID:     leadID,
		CampaignID: campaignID,
		IssuedAt:   issuedAt,
		ttl:        c.ttl(),
	}, nil
}

// SanitizeTokenField replaces the separator so a value can travel inside a token.
func SanitizeTokenField(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), TokenSeparator, "-")
}

func checkTokenField(name, value string) error {
	if value == "" {
		return leads.NewValidationError(name, "is required")
	}
	if strings.Contains(value, TokenSeparator) {
		return leads.NewValidationError(name, "must not contain "+strconv.Quote(TokenSeparator))
	}
	return nil
}
