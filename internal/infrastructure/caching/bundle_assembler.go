// Package caching keeps assembled campaign archives in memory.
package caching

import (
	"strings"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
)

type assembler interface {
	FileName(lead *leads.Lead) string
	Assemble(lead *leads.Lead) ([]byte, error)
}

// CachingAssembler serves repeat downloads of the same organization and
// website from the bundle store instead of rebuilding the archive.
type CachingAssembler struct {
	inner  assembler
	store  *stores.BundlesStore
	logger *logging.ChanneledLogger
}

// NewCachingAssembler wraps inner with store.
func NewCachingAssembler(inner assembler, store *stores.BundlesStore, logger *logging.ChanneledLogger) *CachingAssembler {
	return &CachingAssembler{inner: inner, store: store, logger: logger}
}

// Store exposes the underlying bundle store for the cleanup worker.
func (a *CachingAssembler) Store() *stores.BundlesStore { return a.store }

// FileName delegates to the wrapped assembler.
func (a *CachingAssembler) FileName(lead *leads.Lead) string {
	return a.inner.FileName(lead)
}

// Assemble returns a cached archive when one is fresh, building it otherwise.
func (a *CachingAssembler) Assemble(lead *leads.Lead) ([]byte, error) {
	key := BundleKey(lead)
	if bundle, ok := a.store.Get(key); ok {
		a.logger.Download().Debug("Bundle cache hit", "leadId", lead.ID)
		return bundle.Data, nil
	}

	data, err := a.inner.Assemble(lead)
	if err != nil {
		return nil, err
	}
	a.store.Set(key, a.inner.FileName(lead), data)
	a.logger.Download().Debug("Bundle cache miss", "leadId", lead.ID, "bytes", len(data))
	return data, nil
}

// BundleKey identifies the inputs an archive is built from. Names keep their
// case because the archive quotes them as typed.
func BundleKey(lead *leads.Lead) string {
	return strings.TrimSpace(lead.Organization()) + "\n" + strings.TrimSpace(lead.Website())
}
