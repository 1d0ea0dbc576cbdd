package leads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newFileRepo(t *testing.T) (*FileRepository, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "data", "leads.json")
	return NewFileRepository(path, nil, WithClock(clock.Now)), clock
}

func TestFileRepository_LoadAllMissingFile(t *testing.T) {
	t.Parallel()

	repo, _ := newFileRepo(t)
	all, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)
}

func TestFileRepository_AddAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, clock := newFileRepo(t)
	lead, err := repo.Add(ctx, leads.NewLead{
		Email:            "  Jane@Charity.ORG ",
		OrganizationName: "Helping Hands",
		Consent:          true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "jane@charity.org", lead.Email)
	assert.Equal(t, "Helping Hands", lead.Organization())
	assert.Nil(t, lead.WebsiteURL)
	assert.Equal(t, 0, lead.DownloadCount)
	assert.Nil(t, lead.LastDownload)
	assert.True(t, clock.Now().Equal(lead.CreatedAt))

	byEmail, err := repo.FindByEmail(ctx, "JANE@charity.org")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, lead.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, lead.Email, byID.Email)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileRepository_SurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, _ := newFileRepo(t)
	lead, err := repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.NoError(t, err)

	reopened := NewFileRepository(repo.Path(), nil)
	got, err := reopened.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@b.org", got.Email)
}

func TestFileRepository_RecordDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, clock := newFileRepo(t)
	lead, err := repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	updated, err := repo.RecordDownload(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.DownloadCount)
	require.NotNil(t, updated.LastDownload)
	assert.True(t, clock.Now().Equal(*updated.LastDownload))

	_, err = repo.RecordDownload(ctx, "unknown")
	require.ErrorIs(t, err, leads.ErrLeadNotFound)
}

func TestFileRepository_ConcurrentDownloadsNeverUnderCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, _ := newFileRepo(t)
	lead, err := repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordDownload(ctx, lead.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.DownloadCount)
}

func TestFileRepository_CorruptFileFailsFast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, _ := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0755))
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0644))

	_, err := repo.LoadAll(ctx)
	require.ErrorIs(t, err, leads.ErrStorageCorrupt)

	_, err = repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.ErrorIs(t, err, leads.ErrStorageCorrupt)

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "a corrupt file must not be overwritten")
}

func TestFileRepository_Quarantine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, clock := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0755))
	require.NoError(t, os.WriteFile(repo.Path(), []byte("garbage"), 0644))

	moved, err := repo.Quarantine()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s.corrupt-%d", repo.Path(), clock.Now().Unix()), moved)
	assert.FileExists(t, moved)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.NoError(t, err)

	again, err := NewFileRepository(filepath.Join(t.TempDir(), "none.json"), nil).Quarantine()
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestFileRepository_ToleratesMissingKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, _ := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0755))
	legacy := `[{"id":"old1","email":"old@b.org","createdAt":"2025-01-01T00:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(repo.Path(), []byte(legacy), 0644))

	got, err := repo.FindByEmail(ctx, "old@b.org")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.DownloadCount)
	assert.Nil(t, got.OrganizationName)
	assert.False(t, got.Consent)
}

func TestFileRepository_PurgeOlderThan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, clock := newFileRepo(t)
	old, err := repo.Add(ctx, leads.NewLead{Email: "old@b.org", Consent: true})
	require.NoError(t, err)

	clock.Advance(400 * 24 * time.Hour)
	fresh, err := repo.Add(ctx, leads.NewLead{Email: "new@b.org", Consent: true})
	require.NoError(t, err)

	removed, err := repo.PurgeOlderThan(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fresh.ID, all[0].ID)
	assert.NotEqual(t, old.ID, all[0].ID)

	removed, err = repo.PurgeOlderThan(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFileRepository_SaveAllLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, _ := newFileRepo(t)
	_, err := repo.Add(ctx, leads.NewLead{Email: "a@b.org", Consent: true})
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, nil))

	entries, err := os.ReadDir(filepath.Dir(repo.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "leads.json", entries[0].Name())

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
