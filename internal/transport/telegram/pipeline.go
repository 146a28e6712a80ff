package telegram

import (
	"context"
	"log/slog"

	"github.com/Rohitcoder12/poster-bot/internal/modules/links"
	"github.com/Rohitcoder12/poster-bot/internal/modules/publish"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// processChannelPost runs the automation filter pipeline. Filters apply
// in strict order and the first rejection wins; rejections are logged,
// never reported back to the channel.
func (h *Handler) processChannelPost(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg == nil {
		return
	}

	if !h.cfg.IsSourceChannel(msg.Chat.ID) {
		slog.Debug("Channel post ignored: not a source channel", "chat_id", msg.Chat.ID)
		return
	}

	fileID, hasMedia := representativeMedia(msg)
	if !hasMedia {
		slog.Info("Channel post rejected: no photo or video", "chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	urls := links.ExtractURLs(msg.Caption)
	if len(urls) == 0 {
		slog.Info("Channel post rejected: no links in caption", "chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	allowed := links.FilterByAllowlist(urls, h.allowlist.Domains())
	if len(allowed) == 0 {
		slog.Info("Channel post rejected: no allowlisted links",
			"chat_id", msg.Chat.ID, "message_id", msg.ID, "urls", urls)
		return
	}

	cleaned := links.CleanCaption(msg.Caption)
	title := links.DeriveTitle(cleaned, "New Video Post")

	mediaPath, err := h.media.download(ctx, b, fileID)
	if err != nil {
		slog.Error("Failed to download channel media", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
		return
	}

	slog.Info("Channel post accepted", "chat_id", msg.Chat.ID, "message_id", msg.ID, "title", title)
	h.publisher.Publish(ctx, publish.Request{
		Title:     title,
		Caption:   cleaned,
		MediaPath: mediaPath,
		Links:     allowed,
		UserLabel: channelLabel(msg),
		Source:    "automation",
	})
}

func channelLabel(msg *models.Message) string {
	if msg.Chat.Title != "" {
		return msg.Chat.Title
	}
	if msg.Chat.Username != "" {
		return "@" + msg.Chat.Username
	}
	return "Unknown channel"
}
