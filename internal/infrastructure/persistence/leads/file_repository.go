package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/persistence/database"
)

// FileRepository stores every lead in one pretty-printed JSON array.
// All load-mutate-save cycles are serialized by mu; there is no
// cross-process locking.
type FileRepository struct {
	path   string
	logger *logging.ChanneledLogger
	opts   repoOptions
	mu     sync.Mutex
}

// NewFileRepository creates a file store at path. The file and its
// directory are created lazily on the first write.
func NewFileRepository(path string, logger *logging.ChanneledLogger, opts ...Option) *FileRepository {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &FileRepository{
		path:   path,
		logger: logger,
		opts:   buildOptions(opts),
	}
}

// Path returns the backing file location.
func (r *FileRepository) Path() string { return r.path }

// LoadAll returns every stored lead, or an empty slice when the file is absent.
func (r *FileRepository) LoadAll(ctx context.Context) ([]*leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// SaveAll replaces the stored collection.
func (r *FileRepository) SaveAll(ctx context.Context, all []*leads.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, all)
}

// Add creates and persists a new lead with a fresh id.
func (r *FileRepository) Add(ctx context.Context, input leads.NewLead) (*leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	lead := input.Build(r.opts.newID(), r.opts.now())
	all = append(all, lead)
	if err := r.save(ctx, all); err != nil {
		return nil, err
	}

	r.logger.Database().Info("Lead stored", "leadId", lead.ID, "email", logging.MaskEmail(lead.Email), "total", len(all))
	return lead, nil
}

// FindByEmail returns the first lead whose normalized email matches, or nil.
func (r *FileRepository) FindByEmail(ctx context.Context, email string) (*leads.Lead, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := leads.NormalizeEmail(email)
	for _, lead := range all {
		if leads.NormalizeEmail(lead.Email) == needle {
			return lead, nil
		}
	}
	r.logger.Database().Debug("Lead not found by email", "email", logging.MaskEmail(needle))
	return nil, nil
}

// FindByID returns the lead with the given id, or nil.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*leads.Lead, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, lead := range all {
		if lead.ID == id {
			return lead, nil
		}
	}
	r.logger.Database().Debug("Lead not found by ID", "id", id)
	return nil, nil
}

// RecordDownload increments the download counter and stamps lastDownload.
func (r *FileRepository) RecordDownload(ctx context.Context, id string) (*leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, lead := range all {
		if lead.ID != id {
			continue
		}
		now := r.opts.now().UTC()
		lead.DownloadCount++
		lead.LastDownload = &now
		if err := r.save(ctx, all); err != nil {
			return nil, err
		}
		r.logger.Database().Info("Download recorded", "leadId", id, "downloadCount", lead.DownloadCount)
		return lead, nil
	}
	return nil, fmt.Errorf("record download %s: %w", id, leads.ErrLeadNotFound)
}

// PurgeOlderThan removes leads created before now-age and returns how many went.
func (r *FileRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := r.opts.now().Add(-age)
	kept := make([]*leads.Lead, 0, len(all))
	for _, lead := range all {
		if !lead.CreatedAt.Before(cutoff) {
			kept = append(kept, lead)
		}
	}

	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.save(ctx, kept); err != nil {
		return 0, err
	}
	r.logger.Database().Info("Old leads purged", "removed", removed, "remaining", len(kept), "cutoff", cutoff)
	return removed, nil
}

// Quarantine moves the backing file aside as <name>.corrupt-<unix> and
// returns the new location. It is a no-op when the file does not exist.
func (r *FileRepository) Quarantine() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	target := fmt.Sprintf("%s.corrupt-%d", r.path, r.opts.now().Unix())
	if err := os.Rename(r.path, target); err != nil {
		return "", fmt.Errorf("quarantine %s: %w: %v", r.path, leads.ErrPersistence, err)
	}
	r.logger.Database().Warn("Corrupt lead store quarantined", "path", r.path, "movedTo", target)
	return target, nil
}

func (r *FileRepository) load(ctx context.Context) ([]*leads.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*leads.Lead{}, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to read lead store", "error", err.Error(), "path", r.path)
		return nil, fmt.Errorf("read %s: %w: %v", r.path, leads.ErrPersistence, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []*leads.Lead{}, nil
	}

	var all []*leads.Lead
	if err := json.Unmarshal(data, &all); err != nil {
		r.logger.Database().Error("Lead store is not valid JSON", "error", err.Error(), "path", r.path)
		return nil, fmt.Errorf("parse %s: %w: %v", r.path, leads.ErrStorageCorrupt, err)
	}

	out := make([]*leads.Lead, 0, len(all))
	for _, lead := range all {
		if lead != nil {
			out = append(out, lead)
		}
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Lead store loaded", "count", len(out), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_LOAD_LEADS_FILE", duration)
	return out, nil
}

// save writes to a temp file in the same directory and renames it over the target.
func (r *FileRepository) save(ctx context.Context, all []*leads.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if all == nil {
		all = []*leads.Lead{}
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leads: %w: %v", leads.ErrPersistence, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		r.logger.Database().Error("Failed to create lead store directory", "error", err.Error(), "dir", dir)
		return fmt.Errorf("create %s: %w: %v", dir, leads.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w: %v", leads.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w: %v", leads.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w: %v", leads.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w: %v", leads.ErrPersistence, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		r.logger.Database().Error("Failed to replace lead store", "error", err.Error(), "path", r.path)
		return fmt.Errorf("rename into %s: %w: %v", r.path, leads.ErrPersistence, err)
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Lead store saved", "count", len(all), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_SAVE_LEADS_FILE", duration)
	return nil
}

var _ leads.Repository = (*FileRepository)(nil)
