package di

import (
	"context"
	"log/slog"

	"github.com/Rohitcoder12/poster-bot/internal/clients/blogger"
	"github.com/Rohitcoder12/poster-bot/internal/clients/imgbb"
	"github.com/Rohitcoder12/poster-bot/internal/modules/allowlist"
	"github.com/Rohitcoder12/poster-bot/internal/modules/history"
	"github.com/Rohitcoder12/poster-bot/internal/modules/post"
	"github.com/Rohitcoder12/poster-bot/internal/modules/publish"
	"github.com/Rohitcoder12/poster-bot/internal/shared/config"
	httpServer "github.com/Rohitcoder12/poster-bot/internal/transport/http"
	telegramHandler "github.com/Rohitcoder12/poster-bot/internal/transport/telegram"
	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Allowlist Store
	do.Provide(injector, func(i do.Injector) (*allowlist.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store, err := allowlist.Open(cfg.AllowlistPath)
		if err != nil {
			return nil, oops.With("allowlist_path", cfg.AllowlistPath, "context", "failed to open allowlist").Wrap(err)
		}
		return store, nil
	})

	// Register Publish History Store
	do.Provide(injector, func(i do.Injector) (*history.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store, err := history.NewStore(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize history store").Wrap(err)
		}
		return store, nil
	})

	// Register Blogger Client
	do.Provide(injector, func(i do.Injector) (*blogger.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blogger.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken), nil
	})

	// Register Image Host Client
	do.Provide(injector, func(i do.Injector) (*imgbb.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return imgbb.New(cfg.ImgbbAPIKey), nil
	})

	// Register Notifier
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Notifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return telegramHandler.NewNotifier(cfg.LogChannelID), nil
	})

	// Register Publisher
	do.Provide(injector, func(i do.Injector) (*publish.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		blog := do.MustInvoke[*blogger.Client](i)
		images := do.MustInvoke[*imgbb.Client](i)
		hist := do.MustInvoke[*history.Store](i)
		notifier := do.MustInvoke[*telegramHandler.Notifier](i)
		footer := post.FooterLinks{
			ChannelURL: cfg.ChannelURL,
			BackupURL:  cfg.BackupChannelURL,
		}
		return publish.New(cfg.BlogID, blog, images, hist, notifier, footer), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[*allowlist.Store](i)
		publisher := do.MustInvoke[*publish.Publisher](i)
		notifier := do.MustInvoke[*telegramHandler.Notifier](i)
		return telegramHandler.New(cfg, store, publisher, notifier), nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		// The notifier needs the bot to deliver messages
		notifier := do.MustInvoke[*telegramHandler.Notifier](i)
		notifier.SetBot(b)

		return b, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		hist := do.MustInvoke[*history.Store](i)
		b := do.MustInvoke[*bot.Bot](i)
		server := httpServer.New(cfg, hist, b)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	return nil
}
