// Package container provides dependency injection for all singleton services
package container

import (
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
)

// HTTPSettings are the presentation-layer knobs the router needs.
type HTTPSettings struct {
	Version           string
	CORSOrigins       []string
	AdminStaticDir    string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Dependencies are the infrastructure pieces built during startup.
type Dependencies struct {
	Logger         *logging.ChanneledLogger
	LeadRepository leads.Repository
	TokenCodec     *security.DownloadTokenCodec
	Mailer         services.Mailer
	Assembler      services.Assembler
	Bundles        *stores.BundlesStore
	BaseURL        string
	Admin          services.AdminCredentials
	HTTP           HTTPSettings
}

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	LeadCaptureService *services.LeadCaptureService
	ResendService      *services.ResendService
	DownloadService    *services.DownloadService
	AdminService       *services.AdminService

	// Infrastructure Dependencies
	Logger         *logging.ChanneledLogger
	LeadRepository leads.Repository
	TokenCodec     *security.DownloadTokenCodec
	Bundles        *stores.BundlesStore
	HTTP           HTTPSettings
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies) *Container {
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscardLogger()
	}
	if deps.TokenCodec == nil {
		deps.TokenCodec = security.NewDownloadTokenCodec(security.DefaultDownloadTokenTTL)
	}

	return &Container{
		LeadCaptureService: services.NewLeadCaptureService(deps.LeadRepository, deps.TokenCodec, deps.Mailer, deps.BaseURL, deps.Logger),
		ResendService:      services.NewResendService(deps.LeadRepository, deps.TokenCodec, deps.Mailer, deps.BaseURL, deps.Logger),
		DownloadService:    services.NewDownloadService(deps.LeadRepository, deps.TokenCodec, deps.Assembler, deps.Logger),
		AdminService:       services.NewAdminService(deps.LeadRepository, deps.Admin, deps.Logger),

		Logger:         deps.Logger,
		LeadRepository: deps.LeadRepository,
		TokenCodec:     deps.TokenCodec,
		Bundles:        deps.Bundles,
		HTTP:           deps.HTTP,
	}
}
