package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

var (
	ErrMissingBotToken    = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrMissingBlogID      = errors.New("BLOG_ID environment variable is required")
	ErrMissingAdminID     = errors.New("ADMIN_ID environment variable is required")
	ErrMissingCredentials = errors.New("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN are required")
	ErrMissingImgbbKey    = errors.New("IMGBB_API_KEY environment variable is required")
	ErrMissingWebhookURL  = errors.New("WEBHOOK_URL environment variable is required")
)

type Config struct {
	TelegramBotToken   string  `koanf:"telegram_bot_token"`
	BlogID             string  `koanf:"blog_id"`
	AdminID            int64   `koanf:"admin_id"`
	GoogleClientID     string  `koanf:"google_client_id"`
	GoogleClientSecret string  `koanf:"google_client_secret"`
	GoogleRefreshToken string  `koanf:"google_refresh_token"`
	ImgbbAPIKey        string  `koanf:"imgbb_api_key"`
	WebhookURL         string  `koanf:"webhook_url"`
	LogChannelID       int64   `koanf:"log_channel_id"`
	SourceChannelIDs   []int64 `koanf:"source_channel_ids"`
	AllowlistPath      string  `koanf:"allowlist_path"`
	StoragePath        string  `koanf:"storage_path"`
	HTTPPort           string  `koanf:"http_port"`
	ChannelURL         string  `koanf:"channel_url"`
	BackupChannelURL   string  `koanf:"backup_channel_url"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	// (TELEGRAM_BOT_TOKEN -> telegram_bot_token)
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("storage_path") {
		k.Set("storage_path", "./data")
	}
	if !k.Exists("allowlist_path") {
		k.Set("allowlist_path", "./data/domains.txt")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// koanf returns source_channel_ids as a string from env vars
	// or as a slice from config files
	if sourceIDs := k.Get("source_channel_ids"); sourceIDs != nil {
		switch v := sourceIDs.(type) {
		case string:
			cfg.SourceChannelIDs = ParseChannelIDs(v)
		case []interface{}:
			cfg.SourceChannelIDs = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	// Validate required fields
	switch {
	case cfg.TelegramBotToken == "":
		return nil, ErrMissingBotToken
	case cfg.BlogID == "":
		return nil, ErrMissingBlogID
	case cfg.AdminID == 0:
		return nil, ErrMissingAdminID
	case cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRefreshToken == "":
		return nil, ErrMissingCredentials
	case cfg.ImgbbAPIKey == "":
		return nil, ErrMissingImgbbKey
	case cfg.WebhookURL == "":
		return nil, ErrMissingWebhookURL
	}

	cfg.WebhookURL = strings.TrimRight(cfg.WebhookURL, "/")

	return &cfg, nil
}

// ParseChannelIDs parses a comma-separated channel ID string into []int64
func ParseChannelIDs(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}

// IsSourceChannel reports whether the given chat ID is one of the
// configured automation source channels.
func (c *Config) IsSourceChannel(chatID int64) bool {
	return lo.Contains(c.SourceChannelIDs, chatID)
}
