package routes

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/container"
	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/email"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/export"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	persistence "github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/persistence/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	router *gin.Engine
	repo   *persistence.FileRepository
	clock  *clock
}

func newTestEnv(t *testing.T, mutate func(*container.Dependencies)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewDiscardLogger()
	clk := &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	repo := persistence.NewFileRepository(filepath.Join(t.TempDir(), "leads.json"), logger, persistence.WithClock(clk.Now))

	codec := security.NewDownloadTokenCodec(24 * time.Hour)
	codec.Now = clk.Now

	deps := container.Dependencies{
		Logger:         logger,
		LeadRepository: repo,
		TokenCodec:     codec,
		Mailer:         email.NewResendMailer("", "campaigns@example.org", "Ad Grant AI", logger),
		Assembler:      export.NewCampaignAssembler(),
		BaseURL:        "https://leads.example.org",
		Admin: services.AdminCredentials{
			Username:  "admin",
			Password:  "s3cret",
			JWTSecret: "test-signing-key",
			TokenTTL:  time.Hour,
		},
		HTTP: container.HTTPSettings{
			Version:           "test",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
		},
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &testEnv{router: SetupRoutes(container.NewContainer(deps)), repo: repo, clock: clk}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type captureEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Data    services.CaptureResult `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func validCapture() map[string]any {
	return map[string]any{
		"email":            "Jane@Example.org",
		"organizationName": "River Trust",
		"websiteUrl":       "https://rivertrust.org",
		"consent":          true,
	}
}

func TestHealthAndRoot(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])

	rec = env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/capture-lead")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "adgrant_lead_captures_total")
}

func TestCaptureThenDownload(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	capture := decode[captureEnvelope](t, rec)

	assert.True(t, capture.Success)
	assert.True(t, capture.Data.IsNewLead)
	assert.Equal(t, "jane@example.org", capture.Data.Email)
	assert.Equal(t, "24 hours", capture.Data.ExpiresIn)
	assert.True(t, strings.HasPrefix(capture.Data.DownloadURL, "https://leads.example.org/api/v1/download/"))
	assert.NotEmpty(t, capture.Data.MailtoLink, "unconfigured mailer falls back to mailto")
	assert.True(t, strings.HasPrefix(capture.Data.MailtoLink, "mailto:jane@example.org?"))
	require.NotNil(t, capture.Data.Stats)
	assert.Equal(t, 1, capture.Data.Stats.Total)

	rec = env.do(t, http.MethodGet, "/api/v1/download/"+capture.Data.DownloadToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="river-trust-campaigns.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	assert.NotEmpty(t, zr.File)

	stored, err := env.repo.FindByEmail(t.Context(), "jane@example.org")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.DownloadCount)
	assert.NotNil(t, stored.LastDownload)
}

func TestCapture_DuplicateEmailReusesLead(t *testing.T) {
	env := newTestEnv(t, nil)

	first := decode[captureEnvelope](t, env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil))
	body := validCapture()
	body["email"] = "  JANE@example.ORG "
	second := decode[captureEnvelope](t, env.do(t, http.MethodPost, "/api/v1/capture-lead", body, nil))

	assert.False(t, second.Data.IsNewLead)
	assert.Equal(t, first.Data.LeadID, second.Data.LeadID)

	all, err := env.repo.LoadAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCapture_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := map[string]map[string]any{
		"missing email": {"organizationName": "River Trust", "consent": true},
		"bad email":     {"email": "not-an-email", "consent": true},
		"no consent":    {"email": "jane@example.org", "consent": false},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/capture-lead", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			out := decode[map[string]any](t, rec)
			assert.Equal(t, false, out["success"])
			assert.NotEmpty(t, out["error"])
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/capture-lead", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	all, err := env.repo.LoadAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDownload_ExpiredToken(t *testing.T) {
	env := newTestEnv(t, nil)
	capture := decode[captureEnvelope](t, env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil))

	env.clock.Advance(24*time.Hour + time.Second)

	rec := env.do(t, http.MethodGet, "/api/v1/download/"+capture.Data.DownloadToken, nil, nil)
	assert.Equal(t, http.StatusGone, rec.Code)

	stored, err := env.repo.FindByID(t.Context(), capture.Data.LeadID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.DownloadCount)
}

func TestDownload_MalformedToken(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, token := range []string{"garbage", "a_b_c", "a_b_notanumber_nonce"} {
		rec := env.do(t, http.MethodGet, "/api/v1/download/"+token, nil, nil)
		assert.Equal(t, http.StatusGone, rec.Code, token)
	}
}

func TestDownload_UnknownLead(t *testing.T) {
	var codec *security.DownloadTokenCodec
	env := newTestEnv(t, func(d *container.Dependencies) { codec = d.TokenCodec })

	token, err := codec.Mint("01HZZZZZZZZZZZZZZZZZZZZZZZ", "campaign-1")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/download/"+token, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResendDownload(t *testing.T) {
	env := newTestEnv(t, nil)
	first := decode[captureEnvelope](t, env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil))

	env.clock.Advance(time.Minute)
	rec := env.do(t, http.MethodPost, "/api/v1/resend-download", map[string]string{"email": "jane@example.org"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resent := decode[captureEnvelope](t, rec)
	assert.Equal(t, first.Data.LeadID, resent.Data.LeadID)
	assert.NotEqual(t, first.Data.DownloadToken, resent.Data.DownloadToken)

	rec = env.do(t, http.MethodPost, "/api/v1/resend-download", map[string]string{"email": "nobody@example.org"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/v1/admin/dashboard", "/api/v1/admin/leads", "/api/v1/admin/stats"} {
		rec := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/admin/stats", nil, map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_LoginAndDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/v1/capture-lead", validCapture(), nil)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, rec)
	require.True(t, login.Success)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "admin", login.User.Username)

	auth := map[string]string{"Authorization": "Bearer " + login.Token}

	rec = env.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"totalLeads":1`)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/leads?page=1&limit=10&search=river", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data struct {
			Leads      []map[string]any `json:"leads"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}](t, rec)
	assert.Len(t, list.Data.Leads, 1)
	assert.Equal(t, 1, list.Data.Pagination.Total)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/stats", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/cleanup", map[string]int{"days": 0}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.clock.Advance(40 * 24 * time.Hour)
	rec = env.do(t, http.MethodPost, "/api/v1/admin/cleanup", map[string]int{"days": 30}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"removed":1`)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *container.Dependencies) {
		d.HTTP.RateLimitRequests = 2
		d.HTTP.RateLimitWindow = time.Hour
	})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/api/v1/download/garbage", nil, nil)
		assert.Equal(t, http.StatusGone, rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/v1/download/garbage", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health endpoints are outside the limited group
	rec = env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/healthz", nil, map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAdminStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('admin')"), 0o644))

	env := newTestEnv(t, func(d *container.Dependencies) { d.HTTP.AdminStaticDir = dir })
	rec := env.do(t, http.MethodGet, "/admin/app.js", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")

	missing := newTestEnv(t, func(d *container.Dependencies) { d.HTTP.AdminStaticDir = filepath.Join(dir, "absent") })
	rec = missing.do(t, http.MethodGet, "/admin/app.js", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/v1/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
