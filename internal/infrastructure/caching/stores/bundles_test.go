package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundlesStore_GetSetExpire(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := NewBundlesStore(time.Hour).WithClock(func() time.Time { return now })

	_, ok := store.Get("river")
	assert.False(t, ok)

	store.Set("river", "river-campaigns.zip", []byte("zip"))
	bundle, ok := store.Get("river")
	require.True(t, ok)
	assert.Equal(t, "river-campaigns.zip", bundle.FileName)
	assert.Equal(t, []byte("zip"), bundle.Data)

	now = now.Add(time.Hour)
	_, ok = store.Get("river")
	assert.True(t, ok, "ttl boundary is inclusive")

	now = now.Add(time.Second)
	_, ok = store.Get("river")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(), "expired entries linger until purged")
}

func TestBundlesStore_PurgeExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := NewBundlesStore(time.Minute).WithClock(func() time.Time { return now })

	store.Set("old", "old.zip", nil)
	now = now.Add(2 * time.Minute)
	store.Set("fresh", "fresh.zip", nil)

	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("fresh")
	assert.True(t, ok)
}

func TestBundlesStore_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := NewBundlesStore(0).WithClock(func() time.Time { return now })

	store.Set("k", "k.zip", nil)
	now = now.Add(1000 * time.Hour)
	_, ok := store.Get("k")
	assert.True(t, ok)
	assert.Zero(t, store.PurgeExpired())
}
