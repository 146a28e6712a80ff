package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
)

// Notifier sends operator replies and audit-channel entries. The bot is
// attached after construction because the bot itself needs the handlers
// wired first.
type Notifier struct {
	logChannelID int64
	bot          *bot.Bot
}

func NewNotifier(logChannelID int64) *Notifier {
	return &Notifier{logChannelID: logChannelID}
}

func (n *Notifier) SetBot(b *bot.Bot) {
	n.bot = b
}

func (n *Notifier) Reply(ctx context.Context, chatID int64, text string) {
	if n.bot == nil {
		return
	}
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		slog.Error("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// Audit is best-effort: delivery failures are logged and swallowed.
func (n *Notifier) Audit(ctx context.Context, text string) {
	if n.bot == nil || n.logChannelID == 0 {
		return
	}
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.logChannelID,
		Text:   text,
	}); err != nil {
		slog.Error("Failed to send audit log message", "error", err)
	}
}
