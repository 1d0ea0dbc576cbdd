package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
)

const recentActivityLimit = 10

// ErrInvalidCredentials is returned for any failed admin login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminCredentials are the dashboard login settings.
type AdminCredentials struct {
	Username  string
	Password  string // bcrypt hash or plaintext
	JWTSecret string
	TokenTTL  time.Duration
}

// LoginResult is returned to the dashboard after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DashboardOverview holds the headline numbers.
type DashboardOverview struct {
	TotalLeads     int    `json:"totalLeads"`
	TodayLeads     int    `json:"todayLeads"`
	WeekLeads      int    `json:"weekLeads"`
	MonthLeads     int    `json:"monthLeads"`
	TotalDownloads int    `json:"totalDownloads"`
	ConversionRate string `json:"conversionRate"`
}

// Dashboard is the admin landing payload.
type Dashboard struct {
	Overview       DashboardOverview `json:"overview"`
	RecentActivity []*leads.Lead     `json:"recentActivity"`
}

// AdminService backs the admin dashboard and maintenance operations.
type AdminService struct {
	repo   leads.Repository
	creds  AdminCredentials
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewAdminService creates a new admin service.
func NewAdminService(repo leads.Repository, creds AdminCredentials, logger *logging.ChanneledLogger) *AdminService {
	return &AdminService{
		repo:   repo,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces time.Now for stats and purge cutoffs.
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

// JWTSecret is the key the admin middleware validates bearer tokens with.
func (s *AdminService) JWTSecret() string { return s.creds.JWTSecret }

// Login checks the configured credentials and signs an admin token.
func (s *AdminService) Login(username, password string) (*LoginResult, error) {
	if s.creds.Password == "" || s.creds.JWTSecret == "" {
		s.logger.LogAuthOperation("login", username, false, map[string]any{"reason": "admin login not configured"})
		return nil, ErrInvalidCredentials
	}
	if username != s.creds.Username || !security.CheckPassword(s.creds.Password, password) {
		s.logger.LogAuthOperation("login", username, false, nil)
		return nil, ErrInvalidCredentials
	}

	token, err := security.GenerateAdminToken(username, s.creds.JWTSecret, s.creds.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}

	s.logger.LogAuthOperation("login", username, true, nil)
	return &LoginResult{
		Token:     token,
		Username:  username,
		Role:      security.RoleAdmin,
		ExpiresAt: time.Now().Add(s.creds.TokenTTL).UTC(),
	}, nil
}

// Dashboard returns the overview numbers and the latest captures.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	stats := leads.ComputeStats(all, s.now())
	recent := leads.Paginate(all, 1, recentActivityLimit, "").Leads

	return &Dashboard{
		Overview: DashboardOverview{
			TotalLeads:     stats.Total,
			TodayLeads:     stats.Today,
			WeekLeads:      stats.ThisWeek,
			MonthLeads:     stats.ThisMonth,
			TotalDownloads: stats.TotalDownloads,
			ConversionRate: stats.ConversionRate,
		},
		RecentActivity: recent,
	}, nil
}

// ListLeads returns one page of leads, newest first.
func (s *AdminService) ListLeads(ctx context.Context, page, limit int, search string) (*leads.Page, error) {
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	p := leads.Paginate(all, page, limit, search)
	return &p, nil
}

// Stats returns the aggregate snapshot.
func (s *AdminService) Stats(ctx context.Context) (leads.Stats, error) {
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return leads.Stats{}, fmt.Errorf("load leads: %w", err)
	}
	return leads.ComputeStats(all, s.now()), nil
}

// Cleanup removes leads older than days and returns how many were deleted.
func (s *AdminService) Cleanup(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, leads.NewValidationError("days", "must be a positive number of days")
	}
	removed, err := s.repo.PurgeOlderThan(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return 0, fmt.Errorf("purge leads: %w", err)
	}
	s.logger.Leads().Info("Lead cleanup completed", "days", days, "removed", removed)
	return removed, nil
}
