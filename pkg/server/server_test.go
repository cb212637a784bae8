package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		BooksDir:          t.TempDir(),
		CacheDir:          t.TempDir(),
		ServerPort:        0,
		MaxResults:        50,
		FeedTitle:         "Test Library",
		FeedAuthor:        "DropShelf OPDS Server",
		AllowedExtensions: []string{".epub", ".pdf", ".mobi"},
		ScanTimeout:       500 * time.Millisecond,
		EnrichTimeout:     time.Second,
		EnrichSaveEvery:   50,
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	srv, err := New(cfg, catalog.NewService(cfg))
	require.NoError(t, err)
	return srv.Handler
}

func get(h http.Handler, target string, authorize func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorize != nil {
		authorize(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_LandingPage(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, newTestConfig(t))

	rec := get(h, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test Library")
	assert.Contains(t, rec.Body.String(), "/opds")
}

func TestServer_NotFound(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, newTestConfig(t))

	rec := get(h, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestServer_BasicAuth(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.AuthEnabled = true
	cfg.AuthUsername = "admin"
	cfg.AuthPassword = "opensesame"
	h := newTestHandler(t, cfg)

	rec := get(h, "/opds", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Contains(t, rec.Body.String(), "Authentication required.")

	rec = get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "opensesame")
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The health check stays open for probes.
	rec = get(h, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_BasicAuthWithoutConfiguredCredentials(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.AuthEnabled = true
	cfg.AuthUsername = "admin"
	h := newTestHandler(t, cfg)

	// With no password or hash configured, the empty password must not match.
	rec := get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "anything")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_BasicAuthWithHash(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("opensesame"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := newTestConfig(t)
	cfg.AuthEnabled = true
	cfg.AuthUsername = "admin"
	cfg.AuthPasswordHash = string(hash)
	h := newTestHandler(t, cfg)

	rec := get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, "/opds", func(req *http.Request) {
		req.SetBasicAuth("admin", "opensesame")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
