package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rohitcoder12/poster-bot/internal/modules/history"
	"github.com/Rohitcoder12/poster-bot/internal/shared/config"
	"github.com/go-telegram/bot"
	"github.com/gorilla/feeds"
	sloghttp "github.com/samber/slog-http"
)

// Server exposes the Telegram webhook endpoint plus a few operational
// routes: liveness, an info page and an RSS feed of published posts.
type Server struct {
	cfg     *config.Config
	hist    *history.Store
	webhook http.HandlerFunc
	logger  *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, hist *history.Store, b *bot.Bot) *Server {
	return &Server{
		cfg:     cfg,
		hist:    hist,
		webhook: b.WebhookHandler(),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Webhook endpoint; the token in the path keeps it unguessable,
	// matching what setWebhook registered.
	mux.HandleFunc("POST /webhook/"+s.cfg.TelegramBotToken, s.webhook)

	// RSS feed of recently published posts
	mux.HandleFunc("GET /feed", s.handleFeed)

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	// Root endpoint, liveness indicator
	mux.HandleFunc("GET /", s.handleRoot)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	records, err := s.hist.Recent(50)
	if err != nil {
		s.logger.Error("Error reading publish history", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)
	feed := &feeds.Feed{
		Title:       "Published Blog Posts",
		Link:        &feeds.Link{Href: baseURL + "/feed"},
		Description: "Posts published through the poster bot",
		Created:     time.Now(),
	}

	for _, rec := range records {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:   rec.Title,
			Link:    &feeds.Link{Href: rec.PostURL},
			Id:      rec.PostURL,
			Created: rec.PublishedAt,
			Description: fmt.Sprintf("Published via %s with %d link(s)",
				rec.Source, len(rec.Links)),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Bot is running!"))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
