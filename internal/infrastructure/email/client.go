// Package email delivers campaign download links through Resend, falling
// back to a prefilled mailto link when sending is unavailable.
package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/resendlabs/resend-go"
)

const defaultExpiresIn = "24 hours"

// ResendMailer sends the campaign-ready email. A nil client means email
// is not configured and every delivery becomes a mailto fallback.
type ResendMailer struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	expiresIn string
	logger    *logging.ChanneledLogger
	now       func() time.Time
}

// NewResendMailer creates the mailer. An empty apiKey is allowed.
func NewResendMailer(apiKey, fromEmail, fromName string, logger *logging.ChanneledLogger) *ResendMailer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	m := &ResendMailer{
		fromEmail: fromEmail,
		fromName:  fromName,
		expiresIn: defaultExpiresIn,
		logger:    logger,
		now:       time.Now,
	}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
		logger.Email().Info("Email service initialized", "provider", "resend", "from", fromEmail)
	} else {
		logger.Email().Warn("RESEND_API_KEY not set, download links will be returned as mailto links")
	}
	return m
}

// WithExpiresIn sets the human-readable link lifetime quoted in the email.
func (m *ResendMailer) WithExpiresIn(expiresIn string) *ResendMailer {
	if expiresIn != "" {
		m.expiresIn = expiresIn
	}
	return m
}

// Configured reports whether real sending is possible.
func (m *ResendMailer) Configured() bool { return m.client != nil }

// SendCampaignEmail delivers the download link for campaignID to the lead.
// Send failures are reported through the mailto fallback, not as errors.
func (m *ResendMailer) SendCampaignEmail(ctx context.Context, lead *leads.Lead, campaignID, downloadURL string) (leads.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return leads.Delivery{}, err
	}

	props := m.props(lead, campaignID, downloadURL)
	subject := templates.CampaignEmailSubject(lead.Organization())
	text := templates.GetCampaignEmailText(props)

	if m.client == nil {
		m.logger.Email().Info("Email not configured, returning mailto link", "recipient", logging.MaskEmail(lead.Email))
		return MailtoDelivery(lead.Email, subject, text), nil
	}

	start := time.Now()
	html := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: templates.GetCampaignEmailContent(props),
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail),
		To:      []string{lead.Email},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	sent, err := m.client.Emails.Send(params)
	if err != nil {
		m.logger.Email().Error("Failed to send campaign email, falling back to mailto",
			"error", err.Error(), "recipient", logging.MaskEmail(lead.Email), "duration", time.Since(start))
		delivery := MailtoDelivery(lead.Email, subject, text)
		delivery.Error = err.Error()
		return delivery, nil
	}

	m.logger.Email().Info("Campaign email sent",
		"recipient", logging.MaskEmail(lead.Email), "messageId", sent.Id, "duration", time.Since(start))
	return leads.Delivery{
		Method:    leads.DeliverySent,
		Success:   true,
		MessageID: sent.Id,
		Recipient: lead.Email,
	}, nil
}

func (m *ResendMailer) props(lead *leads.Lead, campaignID, downloadURL string) templates.CampaignEmailProps {
	return templates.CampaignEmailProps{
		OrganizationName: lead.Organization(),
		WebsiteURL:       lead.Website(),
		CampaignID:       campaignID,
		DownloadURL:      downloadURL,
		ExpiresIn:        m.expiresIn,
		Generated:        m.now(),
	}
}

// MailtoDelivery builds a mailto: link carrying the subject and text body.
func MailtoDelivery(recipient, subject, body string) leads.Delivery {
	link := fmt.Sprintf("mailto:%s?subject=%s&body=%s", url.PathEscape(recipient), escapeComponent(subject), escapeComponent(body))
	return leads.Delivery{
		Method:     leads.DeliveryMailtoFallback,
		Success:    true,
		MailtoLink: link,
		Recipient:  recipient,
	}
}

// escapeComponent percent-encodes spaces as %20, which mail clients expect.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
