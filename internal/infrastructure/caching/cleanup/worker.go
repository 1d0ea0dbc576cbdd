// Package cleanup provides the background maintenance worker
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
)

// Worker evicts expired bundles and, when enabled, applies lead retention
type Worker struct {
	bundles *stores.BundlesStore
	repo    leads.Repository
	config  *Config
	logger  *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration.
// bundles may be nil when archive caching is disabled.
func NewWorker(bundles *stores.BundlesStore, repo leads.Repository, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		bundles: bundles,
		repo:    repo,
		config:  config,
		logger:  logger,
	}
}

// Start runs the cleanup routine on the configured interval until ctx is done
func (w *Worker) Start(ctx context.Context) {
	interval := w.config.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.System().Info("Cleanup worker started",
		"interval", interval, "autoPurge", w.config.AutoPurge, "retentionDays", w.config.RetentionDays)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Cleanup worker stopping...")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and returns what it removed
func (w *Worker) RunOnce(ctx context.Context) (bundles, purged int) {
	start := time.Now()

	if w.bundles != nil {
		bundles = w.bundles.PurgeExpired()
	}

	if w.config.AutoPurge && w.config.RetentionDays > 0 && w.repo != nil {
		removed, err := w.repo.PurgeOlderThan(ctx, time.Duration(w.config.RetentionDays)*24*time.Hour)
		if err != nil {
			w.logger.LogError(logging.ChannelLeads, "retention_purge", err, map[string]any{"retentionDays": w.config.RetentionDays})
		} else {
			purged = removed
		}
	}

	if bundles > 0 || purged > 0 {
		w.logger.System().Info("Cleanup finished",
			"bundlesEvicted", bundles, "leadsPurged", purged, "duration", time.Since(start))
	} else {
		w.logger.System().Debug("Cleanup completed - nothing expired", "duration", time.Since(start))
	}
	return bundles, purged
}
