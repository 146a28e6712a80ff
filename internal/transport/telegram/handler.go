package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rohitcoder12/poster-bot/internal/modules/allowlist"
	"github.com/Rohitcoder12/poster-bot/internal/modules/publish"
	"github.com/Rohitcoder12/poster-bot/internal/shared/config"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Handler routes incoming Telegram updates: direct-message commands drive
// the manual posting conversation, channel posts go through the
// automation pipeline.
type Handler struct {
	cfg       *config.Config
	allowlist *allowlist.Store
	publisher *publish.Publisher
	notifier  *Notifier
	sessions  *sessionStore
	media     *mediaDownloader
}

// New creates a new Telegram handler
func New(cfg *config.Config, store *allowlist.Store, publisher *publish.Publisher, notifier *Notifier) *Handler {
	return &Handler{
		cfg:       cfg,
		allowlist: store,
		publisher: publisher,
		notifier:  notifier,
		sessions:  newSessionStore(),
		media:     newMediaDownloader(),
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/newpost", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.handleCancel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/skip", bot.MatchTypeExact, h.handleSkip)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, h.handleAddDomain)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/remove", bot.MatchTypePrefix, h.handleRemoveDomain)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/domains", bot.MatchTypeExact, h.handleListDomains)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
}

// HandleUpdate processes updates not matched by a registered command:
// channel posts and conversation replies (including media attachments).
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.ChannelPost != nil {
		h.processChannelPost(ctx, b, update.ChannelPost)
		return
	}
	if update.Message != nil {
		if update.Message.Chat.Type == "channel" {
			h.processChannelPost(ctx, b, update.Message)
			return
		}
		h.handleConversationInput(ctx, b, update.Message)
	}
}

func (h *Handler) isAdmin(msg *models.Message) bool {
	return msg.From != nil && msg.From.ID == h.cfg.AdminID
}

// Admin commands: non-admin senders get no response at all.

func (h *Handler) handleAddDomain(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.reply(ctx, b, update.Message.Chat.ID, "Usage: /add <domain>\nExample: /add terabox.com")
		return
	}

	added, err := h.allowlist.Add(parts[1])
	if err != nil {
		h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("❌ Failed to save domain: %v", err))
		return
	}
	if !added {
		h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("Domain %s is already in the allowlist.", parts[1]))
		return
	}
	h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Domain %s added to the allowlist.", parts[1]))
}

func (h *Handler) handleRemoveDomain(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.reply(ctx, b, update.Message.Chat.ID, "Usage: /remove <domain>")
		return
	}

	removed, err := h.allowlist.Remove(parts[1])
	if err != nil {
		h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("❌ Failed to remove domain: %v", err))
		return
	}
	if !removed {
		h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("Domain %s is not in the allowlist.", parts[1]))
		return
	}
	h.reply(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Domain %s removed from the allowlist.", parts[1]))
}

func (h *Handler) handleListDomains(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	domains := h.allowlist.Domains()
	if len(domains) == 0 {
		h.reply(ctx, b, update.Message.Chat.ID, "📭 The allowlist is empty.\nUse /add <domain> to add one.")
		return
	}

	var text strings.Builder
	text.WriteString("📋 Allowed domains:\n\n")
	for i, d := range domains {
		text.WriteString(fmt.Sprintf("%d. %s\n", i+1, d))
	}
	h.reply(ctx, b, update.Message.Chat.ID, text.String())
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.isAdmin(update.Message) {
		return
	}

	text := `👋 Blog Poster Bot

Available commands:
/start - Create a new blog post step by step
/cancel - Cancel the current post
/skip - Skip the media step (text-only post)
/add <domain> - Add a domain to the link allowlist
/remove <domain> - Remove a domain from the allowlist
/domains - List allowed domains
/help - Show this help message

Channel posts from configured source channels are published automatically.`

	h.reply(ctx, b, update.Message.Chat.ID, text)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

// Helper functions
func senderLabel(msg *models.Message) string {
	if msg.From != nil {
		if msg.From.Username != "" {
			return "@" + msg.From.Username
		}
		if msg.From.FirstName != "" {
			return msg.From.FirstName
		}
	}
	return "Unknown"
}
