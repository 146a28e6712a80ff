package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Rohitcoder12/poster-bot/internal/modules/links"
	"github.com/Rohitcoder12/poster-bot/internal/modules/publish"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Conversation states for the manual posting flow.
type convState int

const (
	stateAwaitingTitle convState = iota
	stateAwaitingMedia
	stateAwaitingCaption
	stateAwaitingLinks
)

// session holds the draft of one manual post. A chat has at most one
// session; starting over replaces it.
type session struct {
	state     convState
	title     string
	mediaPath string
	caption   string
	links     []string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (s *sessionStore) get(chatID int64) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

// reset installs a fresh session for the chat and returns any previous
// one so the caller can release its resources.
func (s *sessionStore) reset(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.sessions[chatID]
	s.sessions[chatID] = &session{state: stateAwaitingTitle}
	return old
}

func (s *sessionStore) clear(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.sessions[chatID]
	delete(s.sessions, chatID)
	return old
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	chatID := update.Message.Chat.ID
	if old := h.sessions.reset(chatID); old != nil {
		discardMedia(old)
	}

	h.notifier.Audit(ctx, fmt.Sprintf("ℹ️ New conversation started by %s.", senderLabel(update.Message)))
	h.reply(ctx, b, chatID, "Hi! Let's create a new blog post. What is the title?\nSend /cancel to stop.")
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	chatID := update.Message.Chat.ID
	if old := h.sessions.clear(chatID); old != nil {
		discardMedia(old)
	}

	h.notifier.Audit(ctx, fmt.Sprintf("ℹ️ Conversation cancelled by %s.", senderLabel(update.Message)))
	h.reply(ctx, b, chatID, "Operation cancelled.")
}

// handleSkip is only meaningful at the media step; elsewhere it is a
// plain command the current state does not expect.
func (h *Handler) handleSkip(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	chatID := update.Message.Chat.ID
	sess, ok := h.sessions.get(chatID)
	if !ok || sess.state != stateAwaitingMedia {
		return
	}

	sess.mediaPath = ""
	sess.state = stateAwaitingCaption
	h.reply(ctx, b, chatID, "Skipping media. Now, what's the caption?")
}

// handleConversationInput advances the active session with a non-command
// message. Without an active session the message is ignored.
func (h *Handler) handleConversationInput(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if !h.isAdmin(msg) {
		return
	}

	chatID := msg.Chat.ID
	sess, ok := h.sessions.get(chatID)
	if !ok {
		return
	}

	switch sess.state {
	case stateAwaitingTitle:
		if msg.Text == "" {
			h.reply(ctx, b, chatID, "Please send the post title as text.")
			return
		}
		sess.title = msg.Text
		sess.state = stateAwaitingMedia
		h.reply(ctx, b, chatID, fmt.Sprintf("Title: '%s'.\nNow, send the photo (or /skip for a text-only post).", sess.title))

	case stateAwaitingMedia:
		fileID, ok := representativeMedia(msg)
		if !ok {
			h.reply(ctx, b, chatID, "Please send a photo or video, or /skip to continue without media.")
			return
		}
		path, err := h.media.download(ctx, b, fileID)
		if err != nil {
			slog.Error("Failed to download media", "chat_id", chatID, "error", err)
			h.reply(ctx, b, chatID, "Could not download that file, please try again.")
			return
		}
		sess.mediaPath = path
		sess.state = stateAwaitingCaption
		h.reply(ctx, b, chatID, "Media received. Now, what's the caption?")

	case stateAwaitingCaption:
		if msg.Text == "" {
			h.reply(ctx, b, chatID, "Please send the caption as text.")
			return
		}
		sess.caption = msg.Text
		sess.state = stateAwaitingLinks
		h.reply(ctx, b, chatID, "Got it! Finally, send the video link(s).")

	case stateAwaitingLinks:
		urls := links.ExtractURLs(msg.Text)
		if len(urls) == 0 {
			h.reply(ctx, b, chatID, "I couldn't find any link in that message. Please send at least one http(s) URL.")
			return
		}
		sess.links = urls
		h.sessions.clear(chatID)

		h.reply(ctx, b, chatID, fmt.Sprintf("Publishing '%s' to your blog...", sess.title))
		h.publisher.Publish(ctx, publish.Request{
			Title:       sess.title,
			Caption:     sess.caption,
			MediaPath:   sess.mediaPath,
			Links:       sess.links,
			UserLabel:   senderLabel(msg),
			Source:      "manual",
			ReplyChatID: chatID,
		})
	}
}

// representativeMedia picks the file to publish: a video's preview frame,
// or the highest-resolution photo variant.
func representativeMedia(msg *models.Message) (string, bool) {
	if msg.Video != nil {
		if msg.Video.Thumbnail != nil {
			return msg.Video.Thumbnail.FileID, true
		}
		return "", false
	}
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	return "", false
}

func discardMedia(sess *session) {
	if sess.mediaPath == "" {
		return
	}
	if err := os.Remove(sess.mediaPath); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to remove abandoned media", "path", sess.mediaPath, "error", err)
	}
}
