package templates

import (
	"fmt"
	"strings"
	"time"
)

// CampaignEmailProps holds everything the campaign-ready email mentions.
type CampaignEmailProps struct {
	OrganizationName string
	WebsiteURL       string
	CampaignID       string
	DownloadURL      string
	ExpiresIn        string
	Generated        time.Time
}

var campaignFeatures = []string{
	"Complete Google Ads Editor CSV files",
	"Professional campaign structure with 2 ad groups per campaign",
	"25 high-volume keywords per ad group",
	"2 responsive search ads per ad group",
	"$320 daily budget distribution",
	"CPA bidding strategy setup",
}

var campaignSteps = []string{
	"Download Google Ads Editor (free from Google)",
	"Import the CSV files in this order: Campaigns, Ad Groups, Keywords, Ads",
	"Review and launch your campaigns",
}

// CampaignEmailSubject names the organization, or "Campaign" when unknown.
func CampaignEmailSubject(organizationName string) string {
	return fmt.Sprintf("Your Google Ad Grant Campaign Files - %s Ready", orDefault(strings.TrimSpace(organizationName), "Campaign"))
}

// GetCampaignEmailContent renders the HTML body fragment for GetEmailLayout.
func GetCampaignEmailContent(props CampaignEmailProps) string {
	var b strings.Builder
	b.WriteString(GetParagraph("Hi there!"))
	b.WriteString(GetParagraph(fmt.Sprintf(
		"Thank you for using Ad Grant AI. Professional campaigns for %s have been generated and are ready for download.",
		orDefault(props.OrganizationName, "your organization"))))
	b.WriteString(GetButton(ButtonProps{Text: "Download Campaign Files", URL: props.DownloadURL}))

	b.WriteString(GetHeading("What You'll Get"))
	b.WriteString(GetList(campaignFeatures, false))

	b.WriteString(GetHeading("Next Steps"))
	b.WriteString(GetList(campaignSteps, true))

	b.WriteString(GetHeading("Campaign Details"))
	details := make([]string, 0, 3)
	if props.WebsiteURL != "" {
		details = append(details, "Website: "+props.WebsiteURL)
	}
	details = append(details, "Campaign ID: "+props.CampaignID)
	details = append(details, "Generated: "+generatedDate(props.Generated))
	b.WriteString(GetList(details, false))

	b.WriteString(GetParagraph(fmt.Sprintf(
		"Important: this download link expires in %s for security. Please download your files promptly.",
		orDefault(props.ExpiresIn, "24 hours"))))
	b.WriteString(GetParagraph("Need help with setup? Reply to this email and we'll assist you."))
	b.WriteString(GetParagraph("Best regards, The Ad Grant AI Team"))
	return b.String()
}

// GetCampaignEmailText renders the plain-text body, also used for mailto links.
func GetCampaignEmailText(props CampaignEmailProps) string {
	var b strings.Builder
	b.WriteString("Hi there!\n\n")
	b.WriteString("Thank you for using Ad Grant AI to generate your professional Google Ad Grant campaigns.\n\n")
	fmt.Fprintf(&b, "DOWNLOAD LINK: %s\n\n", props.DownloadURL)

	b.WriteString("WHAT YOU'LL GET:\n")
	for _, f := range campaignFeatures {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	b.WriteString("\nNEXT STEPS:\n")
	for i, s := range campaignSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}

	b.WriteString("\nCAMPAIGN DETAILS:\n")
	if props.WebsiteURL != "" {
		fmt.Fprintf(&b, "Website: %s\n", props.WebsiteURL)
	}
	fmt.Fprintf(&b, "Campaign ID: %s\n", props.CampaignID)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedDate(props.Generated))

	b.WriteString("Need help? Reply to this email and we'll assist you with setup.\n\n")
	b.WriteString("Best regards,\nThe Ad Grant AI Team\n\n---\n")
	fmt.Fprintf(&b, "This link expires in %s for security. Download your files promptly.", orDefault(props.ExpiresIn, "24 hours"))
	return b.String()
}

func generatedDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("January 2, 2006")
}
