package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/persistence/database"
)

const leadColumns = `id, email, organization_name, website_url, campaign_id, consent,
	created_at, download_count, last_download, ip_address, user_agent`

// SQLRepository is the SQL-based implementation of leads.Repository,
// backed by SQLite or a remote libSQL database.
type SQLRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
	opts   repoOptions
}

// NewSQLRepository creates a new instance of the repository.
func NewSQLRepository(db *database.DB, logger *logging.ChanneledLogger, opts ...Option) *SQLRepository {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &SQLRepository{
		db:     db,
		logger: logger,
		opts:   buildOptions(opts),
	}
}

// LoadAll returns every lead in insertion order.
func (r *SQLRepository) LoadAll(ctx context.Context) ([]*leads.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at, id`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Database().Error("Failed to load leads", "error", err.Error())
		return nil, fmt.Errorf("load leads: %w: %v", leads.ErrPersistence, err)
	}
	defer rows.Close()

	all := []*leads.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w: %v", leads.ErrPersistence, err)
		}
		all = append(all, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Leads loaded", "count", len(all), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_"+query, duration)
	return all, nil
}

// SaveAll replaces the table contents in one transaction.
func (r *SQLRepository) SaveAll(ctx context.Context, all []*leads.Lead) error {
	start := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w: %v", leads.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return fmt.Errorf("clear leads: %w: %v", leads.ErrPersistence, err)
	}
	for _, lead := range all {
		if lead == nil {
			continue
		}
		if err := insertLead(ctx, tx, lead); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Leads replaced", "count", len(all), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_SAVE_LEADS", duration)
	return nil
}

// Add saves a new Lead to the database.
func (r *SQLRepository) Add(ctx context.Context, input leads.NewLead) (*leads.Lead, error) {
	lead := input.Build(r.opts.newID(), r.opts.now())

	start := time.Now()
	r.logger.Database().Debug("Executing lead insert", "id", lead.ID, "email", logging.MaskEmail(lead.Email))

	if err := insertLead(ctx, r.db, lead); err != nil {
		r.logger.Database().Error("Failed to insert lead", "error", err.Error(), "id", lead.ID)
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Lead stored", "leadId", lead.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "INSERT INTO leads", duration)
	return lead, nil
}

// FindByEmail retrieves the oldest lead with a case-insensitively matching email.
func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*leads.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE LOWER(email) = ? ORDER BY created_at, id LIMIT 1`
	needle := leads.NormalizeEmail(email)

	start := time.Now()
	r.logger.Database().Debug("Loading lead by email", "email", logging.MaskEmail(needle))

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, needle))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Database().Debug("Lead not found by email", "email", logging.MaskEmail(needle))
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load lead by email", "error", err.Error())
		return nil, fmt.Errorf("find by email: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Lead loaded by email", "leadId", lead.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return lead, nil
}

// FindByID retrieves a Lead by its unique identifier.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*leads.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading lead by ID", "id", id)

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Database().Debug("Lead not found by ID", "id", id)
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load lead by ID", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("find by id: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Lead loaded by ID", "id", id, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return lead, nil
}

// RecordDownload increments the counter with a single UPDATE so concurrent
// downloads never under-count, then reads the row back in the same transaction.
func (r *SQLRepository) RecordDownload(ctx context.Context, id string) (*leads.Lead, error) {
	start := time.Now()
	now := r.opts.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w: %v", leads.ErrPersistence, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET download_count = download_count + 1, last_download = ? WHERE id = ?`,
		formatTime(now), id)
	if err != nil {
		r.logger.Database().Error("Failed to record download", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("record download: %w: %v", leads.ErrPersistence, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("record download %s: %w", id, leads.ErrLeadNotFound)
	}

	lead, err := scanLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record download %s: %w", id, leads.ErrLeadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reload lead: %w: %v", leads.ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Download recorded", "leadId", id, "downloadCount", lead.DownloadCount, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "UPDATE leads download_count", duration)
	return lead, nil
}

// PurgeOlderThan deletes leads created before now-age.
func (r *SQLRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := r.opts.now().Add(-age).UTC()

	start := time.Now()
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		r.logger.Database().Error("Failed to purge leads", "error", err.Error())
		return 0, fmt.Errorf("purge leads: %w: %v", leads.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge leads: %w: %v", leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Old leads purged", "removed", n, "cutoff", cutoff, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_DELETE leads", duration)
	return int(n), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLead(ctx context.Context, db execer, lead *leads.Lead) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID,
		lead.Email,
		nullString(lead.OrganizationName),
		nullString(lead.WebsiteURL),
		nullString(lead.CampaignID),
		lead.Consent,
		formatTime(lead.CreatedAt),
		lead.DownloadCount,
		nullTime(lead.LastDownload),
		nullString(lead.IPAddress),
		nullString(lead.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w: %v", lead.ID, leads.ErrPersistence, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*leads.Lead, error) {
	var (
		lead                        leads.Lead
		org, website, campaign      sql.NullString
		ip, agent, created, lastDld sql.NullString
	)
	err := row.Scan(
		&lead.ID,
		&lead.Email,
		&org,
		&website,
		&campaign,
		&lead.Consent,
		&created,
		&lead.DownloadCount,
		&lastDld,
		&ip,
		&agent,
	)
	if err != nil {
		return nil, err
	}

	lead.OrganizationName = stringPtr(org)
	lead.WebsiteURL = stringPtr(website)
	lead.CampaignID = stringPtr(campaign)
	lead.IPAddress = stringPtr(ip)
	lead.UserAgent = stringPtr(agent)

	if created.Valid {
		t, err := time.Parse(time.RFC3339Nano, created.String)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		lead.CreatedAt = t
	}
	if lastDld.Valid && lastDld.String != "" {
		t, err := time.Parse(time.RFC3339Nano, lastDld.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_download: %w", err)
		}
		lead.LastDownload = &t
	}
	return &lead, nil
}

// formatTime uses a fixed-width layout so text comparison orders correctly.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

var _ leads.Repository = (*SQLRepository)(nil)
