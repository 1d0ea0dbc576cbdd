package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
)

// ResendService re-issues a download link to a lead who already exists.
type ResendService struct {
	repo   leads.Repository
	issuer *linkIssuer
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewResendService creates a new resend service.
func NewResendService(repo leads.Repository, codec *security.DownloadTokenCodec, mailer Mailer, baseURL string, logger *logging.ChanneledLogger) *ResendService {
	return &ResendService{
		repo:   repo,
		issuer: newLinkIssuer(codec, mailer, baseURL, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Resend mints a fresh token for the stored campaign id and delivers it again.
func (s *ResendService) Resend(ctx context.Context, email string) (*CaptureResult, error) {
	normalized := leads.NormalizeEmail(email)
	if !emailShape.MatchString(normalized) {
		return nil, leads.NewValidationError("email", "must be a valid email address")
	}

	lead, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("lookup lead: %w", err)
	}
	if lead == nil {
		s.logger.Leads().Info("Resend requested for unknown email", "email", logging.MaskEmail(normalized))
		return nil, fmt.Errorf("resend to %s: %w", logging.MaskEmail(normalized), leads.ErrLeadNotFound)
	}

	campaignID := security.SanitizeTokenField(lead.Campaign())
	if campaignID == "" {
		campaignID = defaultCampaignID(s.now())
	}

	result, err := s.issuer.issue(ctx, lead, campaignID)
	if err != nil {
		return nil, err
	}

	s.logger.Leads().Info("Download link re-issued",
		"leadId", lead.ID, "campaignId", campaignID, "deliveryMethod", result.Delivery.Method)
	return result, nil
}
