package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
	"github.com/go-playground/validator/v10"
)

// DownloadPath is the route prefix embedded in every download URL.
const DownloadPath = "/api/v1/download/"

// CaptureRequest is one inbound lead submission.
type CaptureRequest struct {
	Email            string `json:"email" validate:"required,max=254,emailshape"`
	OrganizationName string `json:"organizationName" validate:"max=200"`
	WebsiteURL       string `json:"websiteUrl" validate:"max=2048"`
	CampaignID       string `json:"campaignId" validate:"max=128"`
	Consent          bool   `json:"consent"`
	IPAddress        string `json:"-"`
	UserAgent        string `json:"-"`
}

// CaptureResult is returned after a capture or a resend.
type CaptureResult struct {
	LeadID        string         `json:"leadId"`
	Email         string         `json:"email"`
	DownloadToken string         `json:"downloadToken"`
	DownloadURL   string         `json:"downloadUrl"`
	ExpiresIn     string         `json:"expiresIn"`
	CampaignID    string         `json:"campaignId"`
	IsNewLead     bool           `json:"isNewLead"`
	Delivery      leads.Delivery `json:"delivery"`
	MailtoLink    string         `json:"mailtoLink,omitempty"`
	Stats         *leads.Stats   `json:"stats,omitempty"`
}

// LeadCaptureService validates submissions, deduplicates by email and
// issues the download link.
type LeadCaptureService struct {
	repo     leads.Repository
	issuer   *linkIssuer
	logger   *logging.ChanneledLogger
	validate *validator.Validate
	now      func() time.Time

	// serializes find-or-add so concurrent captures of one email create one lead
	captureMu sync.Mutex
}

// NewLeadCaptureService creates a new capture service.
func NewLeadCaptureService(repo leads.Repository, codec *security.DownloadTokenCodec, mailer Mailer, baseURL string, logger *logging.ChanneledLogger) *LeadCaptureService {
	return &LeadCaptureService{
		repo:     repo,
		issuer:   newLinkIssuer(codec, mailer, baseURL, logger),
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// WithClock replaces time.Now for default campaign ids and stats.
func (s *LeadCaptureService) WithClock(now func() time.Time) *LeadCaptureService {
	s.now = now
	return s
}

// Capture registers the lead (or reuses an existing one) and delivers a fresh link.
func (s *LeadCaptureService) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	start := time.Now()

	req.Email = leads.NormalizeEmail(req.Email)
	req.OrganizationName = strings.TrimSpace(req.OrganizationName)
	req.WebsiteURL = strings.TrimSpace(req.WebsiteURL)
	if err := s.validate.Struct(req); err != nil {
		metrics.LeadCaptures.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, toValidationError(err)
	}
	if !req.Consent {
		metrics.LeadCaptures.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, leads.NewValidationError("consent", "must be given")
	}

	campaignID := security.SanitizeTokenField(req.CampaignID)
	if campaignID == "" {
		campaignID = defaultCampaignID(s.now())
	}

	lead, isNew, err := s.findOrAdd(ctx, req, campaignID)
	if err != nil {
		metrics.LeadCaptures.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}
	if isNew {
		metrics.LeadCaptures.WithLabelValues(metrics.OutcomeNew).Inc()
	} else {
		metrics.LeadCaptures.WithLabelValues(metrics.OutcomeExisting).Inc()
	}

	result, err := s.issuer.issue(ctx, lead, campaignID)
	if err != nil {
		return nil, err
	}
	result.IsNewLead = isNew

	if all, err := s.repo.LoadAll(ctx); err == nil {
		stats := leads.ComputeStats(all, s.now())
		result.Stats = &stats
	} else {
		s.logger.Leads().Warn("Stats snapshot unavailable after capture", "error", err.Error())
	}

	s.logger.Leads().Info("Lead captured",
		"leadId", lead.ID,
		"email", logging.MaskEmail(lead.Email),
		"isNew", isNew,
		"campaignId", campaignID,
		"deliveryMethod", result.Delivery.Method,
		"duration", time.Since(start))
	return result, nil
}

func (s *LeadCaptureService) findOrAdd(ctx context.Context, req CaptureRequest, campaignID string) (*leads.Lead, bool, error) {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup lead: %w", err)
	}
	if existing != nil {
		if existing.Campaign() != "" && existing.Campaign() != campaignID {
			s.logger.Leads().Info("Existing lead submitted a different campaign id, keeping stored value",
				"leadId", existing.ID, "stored", existing.Campaign(), "supplied", campaignID)
		}
		return existing, false, nil
	}

	lead, err := s.repo.Add(ctx, leads.NewLead{
		Email:            req.Email,
		OrganizationName: req.OrganizationName,
		WebsiteURL:       req.WebsiteURL,
		CampaignID:       campaignID,
		Consent:          req.Consent,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
	})
	if err != nil {
		return nil, false, fmt.Errorf("add lead: %w", err)
	}
	if lead == nil {
		return nil, false, fmt.Errorf("add lead: %w", leads.ErrPersistence)
	}
	return lead, true, nil
}

// defaultCampaignID is timestamp-derived and free of the token separator.
func defaultCampaignID(now time.Time) string {
	return fmt.Sprintf("campaign-%d", now.UnixMilli())
}

// linkIssuer mints a token, builds the URL and hands it to the mailer.
type linkIssuer struct {
	codec   *security.DownloadTokenCodec
	mailer  Mailer
	baseURL string
	logger  *logging.ChanneledLogger
}

func newLinkIssuer(codec *security.DownloadTokenCodec, mailer Mailer, baseURL string, logger *logging.ChanneledLogger) *linkIssuer {
	return &linkIssuer{
		codec:   codec,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (li *linkIssuer) issue(ctx context.Context, lead *leads.Lead, campaignID string) (*CaptureResult, error) {
	token, err := li.codec.Mint(lead.ID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("mint download token: %w", err)
	}
	downloadURL := li.baseURL + DownloadPath + token

	delivery, err := li.mailer.SendCampaignEmail(ctx, lead, campaignID, downloadURL)
	if err != nil {
		li.logger.Email().Error("Campaign email delivery failed", "error", err.Error(), "leadId", lead.ID)
		delivery = leads.Delivery{Success: false, Recipient: lead.Email, Error: err.Error()}
	}
	metrics.EmailDeliveries.WithLabelValues(deliveryLabel(delivery)).Inc()

	return &CaptureResult{
		LeadID:        lead.ID,
		Email:         lead.Email,
		DownloadToken: token,
		DownloadURL:   downloadURL,
		ExpiresIn:     HumanizeTTL(li.codec.TTL),
		CampaignID:    campaignID,
		Delivery:      delivery,
		MailtoLink:    delivery.MailtoLink,
	}, nil
}

func deliveryLabel(d leads.Delivery) string {
	if d.Method == "" {
		return "failed"
	}
	return d.Method
}

// HumanizeTTL renders whole-hour lifetimes the way the email copy phrases them.
func HumanizeTTL(ttl time.Duration) string {
	if ttl > 0 && ttl%time.Hour == 0 {
		hours := int(ttl / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return ttl.String()
}
