package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(start time.Time) (*DownloadTokenCodec, *fakeClock) {
	clock := &fakeClock{t: start}
	return &DownloadTokenCodec{TTL: 24 * time.Hour, Now: clock.Now}, clock
}

func TestMintAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

	token, err := codec.Mint("01hzleadid", "campaign-1714564800000")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, TokenSeparator), 4)

	claims, err := codec.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "01hzleadid", claims.LeadID)
	assert.Equal(t, "campaign-1714564800000", claims.CampaignID)
	assert.True(t, codec.Now().Add(24*time.Hour).Equal(claims.ExpiresAt()))
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	codec, clock := newTestCodec(start)

	token, err := codec.Mint("lead", "camp")
	require.NoError(t, err)

	clock.t = start.Add(24 * time.Hour)
	_, err = codec.Validate(token)
	require.NoError(t, err, "a token exactly 24h old is still valid")

	clock.t = start.Add(24*time.Hour + time.Millisecond)
	_, err = codec.Validate(token)
	require.ErrorIs(t, err, leads.ErrTokenInvalid)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(time.Now())

	for _, token := range []string{
		"garbage",
		"",
		"a_b_c",
		"a_b_c_d_e",
		"lead_camp_notanumber_nonce",
		"_camp_1714564800000_nonce",
	} {
		_, err := codec.Validate(token)
		assert.Truef(t, errors.Is(err, leads.ErrTokenInvalid), "token %q should be invalid", token)
	}
}

func TestValidate_FutureTokenRejected(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	codec, clock := newTestCodec(start.Add(time.Hour))
	token, err := codec.Mint("lead", "camp")
	require.NoError(t, err)

	clock.t = start
	_, err = codec.Validate(token)
	require.ErrorIs(t, err, leads.ErrTokenInvalid)
}

func TestMint_RejectsSeparatorInIDs(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(time.Now())

	_, err := codec.Mint("lead", "spring_drive")
	require.ErrorIs(t, err, leads.ErrValidation)

	_, err = codec.Mint("", "camp")
	require.ErrorIs(t, err, leads.ErrValidation)
}

func TestMint_NoncesDiffer(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(time.Now())
	a, err := codec.Mint("lead", "camp")
	require.NoError(t, err)
	b, err := codec.Mint("lead", "camp")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSanitizeTokenField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "spring-drive-2026", SanitizeTokenField(" spring_drive_2026 "))
}

func TestRandomAlphanumeric(t *testing.T) {
	t.Parallel()

	s, err := RandomAlphanumeric(32)
	require.NoError(t, err)
	require.Len(t, s, 32)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(alphanumeric, r))
	}
}

func TestGenerateULID_Unique(t *testing.T) {
	t.Parallel()

	a, b := GenerateULID(), GenerateULID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
	assert.NotContains(t, a, TokenSeparator)
}
