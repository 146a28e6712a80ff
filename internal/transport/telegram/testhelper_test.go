package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Rohitcoder12/poster-bot/internal/modules/allowlist"
	"github.com/Rohitcoder12/poster-bot/internal/modules/history"
	"github.com/Rohitcoder12/poster-bot/internal/modules/post"
	"github.com/Rohitcoder12/poster-bot/internal/modules/publish"
	"github.com/Rohitcoder12/poster-bot/internal/shared/config"
	"github.com/go-telegram/bot"
)

const (
	testToken   = "12345:TESTTOKEN"
	testAdminID = int64(7777)
)

// fakeAPI emulates the Telegram Bot API over httptest. It records every
// sendMessage call and serves getFile / file downloads.
type fakeAPI struct {
	mu        sync.Mutex
	sent      []map[string]interface{}
	srv       *httptest.Server
	downloads int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.srv = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	// File downloads: /file/bot<token>/<path>
	if strings.HasPrefix(r.URL.Path, "/file/") {
		a.mu.Lock()
		a.downloads++
		a.mu.Unlock()
		w.Write([]byte("jpeg-bytes"))
		return
	}

	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	var params map[string]interface{}
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			params = make(map[string]interface{}, len(r.MultipartForm.Value))
			for key, values := range r.MultipartForm.Value {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
		}
	default:
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 && strings.Contains(contentType, "json") {
			json.Unmarshal(body, &params)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage":
		a.mu.Lock()
		a.sent = append(a.sent, params)
		a.mu.Unlock()
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	case "getFile":
		w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_unique_id":"u1","file_path":"photos/test.jpg"}}`))
	default:
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}
}

func (a *fakeAPI) sentTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	texts := make([]string, 0, len(a.sent))
	for _, p := range a.sent {
		if text, ok := p["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return texts
}

func (a *fakeAPI) downloadCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.downloads
}

func newTestBot(t *testing.T, api *fakeAPI) *bot.Bot {
	t.Helper()
	b, err := bot.New(testToken,
		bot.WithServerURL(api.srv.URL),
		bot.WithSkipGetMe(),
	)
	if err != nil {
		t.Fatalf("bot.New() error: %v", err)
	}
	return b
}

// Publish collaborator fakes.

type fakeBlog struct {
	mu       sync.Mutex
	authErr  error
	created  []string
	lastBody string
}

func (f *fakeBlog) Authorize(_ context.Context) (*http.Client, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return http.DefaultClient, nil
}

func (f *fakeBlog) CreatePost(_ context.Context, _ *http.Client, _, title, htmlBody string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, title)
	f.lastBody = htmlBody
	return "https://blog.example/p/1", nil
}

func (f *fakeBlog) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

type fakeImages struct {
	mu    sync.Mutex
	err   error
	paths []string
}

func (f *fakeImages) Upload(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "https://img.example/u.png", nil
}

type testEnv struct {
	handler   *Handler
	bot       *bot.Bot
	api       *fakeAPI
	blog      *fakeBlog
	images    *fakeImages
	allowlist *allowlist.Store
	cfg       *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := newFakeAPI(t)
	b := newTestBot(t, api)

	cfg := &config.Config{
		TelegramBotToken: testToken,
		BlogID:           "blog-1",
		AdminID:          testAdminID,
		LogChannelID:     -100555,
		SourceChannelIDs: []int64{-100123},
		HTTPPort:         "8080",
	}

	store, err := allowlist.Open(filepath.Join(t.TempDir(), "domains.txt"))
	if err != nil {
		t.Fatalf("allowlist.Open() error: %v", err)
	}

	hist, err := history.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("history.NewStore() error: %v", err)
	}

	notifier := NewNotifier(cfg.LogChannelID)
	notifier.SetBot(b)

	blog := &fakeBlog{}
	images := &fakeImages{}
	publisher := publish.New(cfg.BlogID, blog, images, hist, notifier, post.FooterLinks{})

	handler := New(cfg, store, publisher, notifier)

	return &testEnv{
		handler:   handler,
		bot:       b,
		api:       api,
		blog:      blog,
		images:    images,
		allowlist: store,
		cfg:       cfg,
	}
}

var errUploadDown = errors.New("image host unreachable")
