// Package publish submits a finished post to the blog: it authorizes
// against the blog API, optionally pushes local media to the image host,
// renders the HTML body and creates the post. Both the manual
// conversation and the channel automation end here.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Rohitcoder12/poster-bot/internal/modules/history"
	"github.com/Rohitcoder12/poster-bot/internal/modules/post"
	"github.com/samber/oops"
)

var (
	ErrAuthFailure    = errors.New("could not obtain authorized blog client")
	ErrUploadFailure  = errors.New("image upload failed")
	ErrPublishFailure = errors.New("blog post creation failed")
)

// BlogClient is the blog API collaborator.
type BlogClient interface {
	Authorize(ctx context.Context) (*http.Client, error)
	CreatePost(ctx context.Context, httpClient *http.Client, blogID, title, htmlBody string) (string, error)
}

// ImageHost uploads a local file and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Notifier delivers operator acknowledgments and audit-channel entries.
// Audit delivery is best-effort and must never fail a publish.
type Notifier interface {
	Reply(ctx context.Context, chatID int64, text string)
	Audit(ctx context.Context, text string)
}

// Request describes one publish attempt. ReplyChatID of zero means no
// operator is waiting (automation path).
type Request struct {
	Title       string
	Caption     string
	MediaPath   string
	Links       []string
	UserLabel   string
	Source      string
	ReplyChatID int64
}

type Publisher struct {
	blogID   string
	blog     BlogClient
	images   ImageHost
	hist     *history.Store
	notifier Notifier
	footer   post.FooterLinks
	now      func() time.Time
}

func New(blogID string, blog BlogClient, images ImageHost, hist *history.Store, notifier Notifier, footer post.FooterLinks) *Publisher {
	return &Publisher{
		blogID:   blogID,
		blog:     blog,
		images:   images,
		hist:     hist,
		notifier: notifier,
		footer:   footer,
		now:      time.Now,
	}
}

// Publish runs the attempt to completion. No retries: every failure is
// terminal, reported once to the audit channel and, when an operator is
// waiting, acknowledged with a generic message. The local media file is
// removed on every exit path.
func (p *Publisher) Publish(ctx context.Context, req Request) (err error) {
	defer p.cleanupMedia(req.MediaPath)

	defer func() {
		if r := recover(); r != nil {
			err = oops.With("panic", r).Errorf("unexpected error during publish")
			slog.Error("Panic during publish", "source", req.Source, "title", req.Title, "panic", r)
			p.reportFailure(ctx, req, err)
		}
	}()

	httpClient, err := p.blog.Authorize(ctx)
	if err != nil {
		err = errors.Join(ErrAuthFailure, err)
		slog.Error("Blog authorization failed", "source", req.Source, "error", err)
		p.notifier.Audit(ctx, "❌ FATAL ERROR! Could not build blog client. Check credentials.")
		if req.ReplyChatID != 0 {
			p.notifier.Reply(ctx, req.ReplyChatID, "Error: could not connect to the blog service. Please check server logs.")
		}
		return err
	}

	imageURL := ""
	if req.MediaPath != "" {
		if _, statErr := os.Stat(req.MediaPath); statErr == nil {
			imageURL, err = p.images.Upload(ctx, req.MediaPath)
			if err != nil || imageURL == "" {
				if err == nil {
					err = oops.Errorf("image host returned no URL")
				}
				err = errors.Join(ErrUploadFailure, err)
				slog.Error("Image upload failed", "source", req.Source, "title", req.Title, "error", err)
				// A post that was supposed to carry media must not silently
				// degrade to a text-only post.
				p.reportFailure(ctx, req, err)
				return err
			}
		}
	}

	htmlBody := post.Render(post.Draft{
		Title:    req.Title,
		ImageURL: imageURL,
		Caption:  req.Caption,
		Links:    req.Links,
	}, p.footer)

	postURL, err := p.blog.CreatePost(ctx, httpClient, p.blogID, req.Title, htmlBody)
	if err != nil {
		err = errors.Join(ErrPublishFailure, err)
		slog.Error("Post creation failed", "source", req.Source, "title", req.Title, "error", err)
		p.reportFailure(ctx, req, err)
		return err
	}

	if histErr := p.hist.Append(&history.Record{
		Title:       req.Title,
		PostURL:     postURL,
		ImageURL:    imageURL,
		Links:       req.Links,
		Source:      req.Source,
		PublishedAt: p.now(),
	}); histErr != nil {
		slog.Error("Failed to record publish history", "title", req.Title, "error", histErr)
	}

	slog.Info("Post published", "source", req.Source, "title", req.Title, "url", postURL)
	p.notifier.Audit(ctx, "✅ Success! Post '"+req.Title+"' published via "+req.Source+" by "+req.UserLabel+".")
	if req.ReplyChatID != 0 {
		p.notifier.Reply(ctx, req.ReplyChatID, "Success! Post '"+req.Title+"' published.")
	}
	return nil
}

func (p *Publisher) reportFailure(ctx context.Context, req Request, err error) {
	p.notifier.Audit(ctx, "❌ ERROR! Failed to post '"+req.Title+"' ("+req.Source+").\nError: "+err.Error())
	if req.ReplyChatID != 0 {
		p.notifier.Reply(ctx, req.ReplyChatID, "An error occurred while publishing. Please try again later.")
	}
}

func (p *Publisher) cleanupMedia(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to remove temp media", "path", path, "error", err)
	}
}
