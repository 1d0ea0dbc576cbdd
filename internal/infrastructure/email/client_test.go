package email

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/email/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLead() *leads.Lead {
	return leads.NewLead{
		Email:            "jane@charity.org",
		OrganizationName: "Helping Hands",
		WebsiteURL:       "https://helpinghands.org",
		Consent:          true,
	}.Build("01hzlead", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
}

func TestSendCampaignEmail_UnconfiguredFallsBackToMailto(t *testing.T) {
	t.Parallel()

	mailer := NewResendMailer("", "campaigns@adgrant.ai", "Ad Grant AI", nil)
	require.False(t, mailer.Configured())

	downloadURL := "http://localhost:3000/api/v1/download/01hzlead_campaign-1_1773133200000_abc"
	delivery, err := mailer.SendCampaignEmail(context.Background(), testLead(), "campaign-1", downloadURL)
	require.NoError(t, err)

	assert.Equal(t, leads.DeliveryMailtoFallback, delivery.Method)
	assert.True(t, delivery.Success)
	assert.Equal(t, "jane@charity.org", delivery.Recipient)
	require.True(t, strings.HasPrefix(delivery.MailtoLink, "mailto:jane@charity.org?subject="))
	assert.NotContains(t, delivery.MailtoLink, "+")

	parsed, err := url.Parse(delivery.MailtoLink)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "Your Google Ad Grant Campaign Files - Helping Hands Ready", q.Get("subject"))
	assert.Contains(t, q.Get("body"), "DOWNLOAD LINK: "+downloadURL)
	assert.Contains(t, q.Get("body"), "Campaign ID: campaign-1")
	assert.Contains(t, q.Get("body"), "Website: https://helpinghands.org")
}

func TestMailtoDelivery_EscapesRecipient(t *testing.T) {
	t.Parallel()

	delivery := MailtoDelivery("a?b&c@x.org", "Files ready", "see link")

	parsed, err := url.Parse(delivery.MailtoLink)
	require.NoError(t, err)
	recipient, err := url.PathUnescape(parsed.Opaque)
	require.NoError(t, err)
	assert.Equal(t, "a?b&c@x.org", recipient)
	assert.Equal(t, "Files ready", parsed.Query().Get("subject"))
	assert.Equal(t, "see link", parsed.Query().Get("body"))
}

func TestSendCampaignEmail_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResendMailer("", "a@b.c", "x", nil).SendCampaignEmail(ctx, testLead(), "c", "http://x")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCampaignEmailSubject_DefaultsToCampaign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Your Google Ad Grant Campaign Files - Campaign Ready", templates.CampaignEmailSubject(""))
}

func TestCampaignEmailHTML_EscapesOrganization(t *testing.T) {
	t.Parallel()

	html := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: templates.GetCampaignEmailContent(templates.CampaignEmailProps{
			OrganizationName: "<script>alert(1)</script>",
			CampaignID:       "campaign-1",
			DownloadURL:      "https://api.adgrant.ai/api/v1/download/tok",
		}),
	})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, `href="https://api.adgrant.ai/api/v1/download/tok"`)
	assert.Contains(t, html, "Campaign ID: campaign-1")
}
