// Package services provides application-level orchestration services
package services

import (
	"context"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
)

// Mailer hands a download link to the lead. A delivery with Success=false
// is a reported outcome, not an error.
type Mailer interface {
	SendCampaignEmail(ctx context.Context, lead *leads.Lead, campaignID, downloadURL string) (leads.Delivery, error)
}

// Assembler renders the downloadable bundle for a lead.
type Assembler interface {
	FileName(lead *leads.Lead) string
	Assemble(lead *leads.Lead) ([]byte, error)
}
