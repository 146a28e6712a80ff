package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rohitcoder12/poster-bot/internal/modules/history"
	"github.com/Rohitcoder12/poster-bot/internal/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	hist, err := history.NewStore(t.TempDir())
	require.NoError(t, err)

	return &Server{
		cfg:    &config.Config{HTTPPort: "8080"},
		hist:   hist,
		logger: slog.Default(),
	}
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleRoot(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bot is running!", rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleFeed(t *testing.T) {
	srv := newTestServer(t)

	err := srv.hist.Append(&history.Record{
		Title:       "First Post",
		PostURL:     "https://blog.example/p/1",
		Links:       []string{"https://terabox.com/s/abc"},
		Source:      "manual",
		PublishedAt: time.Now(),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.handleFeed(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>First Post</title>")
	assert.Contains(t, body, "https://blog.example/p/1")
	assert.Contains(t, body, "Published via manual with 1 link(s)")
}

func TestHandleFeedEmptyHistory(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleFeed(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Published Blog Posts")
}

func TestGetScheme(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	assert.Equal(t, "http", getScheme(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", getScheme(r))
}
