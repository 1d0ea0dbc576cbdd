// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"
)

// Bundle is an assembled campaign archive.
type Bundle struct {
	FileName    string
	Data        []byte
	LastUpdated time.Time
}

// BundlesStore caches assembled archives by lead profile with a TTL
type BundlesStore struct {
	bundles map[string]*Bundle
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// NewBundlesStore creates a new bundle cache store
func NewBundlesStore(ttl time.Duration) *BundlesStore {
	return &BundlesStore{
		bundles: make(map[string]*Bundle),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces time.Now for expiry checks.
func (bs *BundlesStore) WithClock(now func() time.Time) *BundlesStore {
	bs.now = now
	return bs
}

// Get retrieves a bundle that has not expired
func (bs *BundlesStore) Get(key string) (*Bundle, bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	bundle, exists := bs.bundles[key]
	if !exists || bs.expired(bundle) {
		return nil, false
	}
	return bundle, true
}

// Set stores a bundle, replacing any previous entry for the key
func (bs *BundlesStore) Set(key, fileName string, data []byte) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.bundles[key] = &Bundle{
		FileName:    fileName,
		Data:        data,
		LastUpdated: bs.now().UTC(),
	}
}

// PurgeExpired drops every expired bundle and reports how many went
func (bs *BundlesStore) PurgeExpired() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	var removed int
	for key, bundle := range bs.bundles {
		if bs.expired(bundle) {
			delete(bs.bundles, key)
			removed++
		}
	}
	return removed
}

// Len reports how many bundles are held, expired or not
func (bs *BundlesStore) Len() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return len(bs.bundles)
}

func (bs *BundlesStore) expired(b *Bundle) bool {
	return bs.ttl > 0 && bs.now().Sub(b.LastUpdated) > bs.ttl
}
