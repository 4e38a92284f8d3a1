// Package config resolves the bot configuration from .env, the environment and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// ErrMissingToken is returned by Validate when no bot token is configured.
var ErrMissingToken = errors.New("BOT_TOKEN is not set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("database_path", "data/moderation.db")
	v.SetDefault("developer_id", "")
	v.SetDefault("log_webhook_url", "")
	v.SetDefault("ladders_file", "")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("sweep_interval", time.Minute)
	v.SetDefault("debug", false)

	v.SetDefault("moderator_role_id", "")
	v.SetDefault("jail_role_id", "")
	v.SetDefault("verified_role_id", "")
	v.SetDefault("log_channel_id", "")
	v.SetDefault("registration_channel_id", "")
	v.SetDefault("badge_request_channel_id", "")
	v.SetDefault("badge_mod_log_channel_id", "")

	v.SetDefault("profile_base_url", "")
	v.SetDefault("profile_fetcher", "http")
	v.SetDefault("profile_not_found_marker", "")
	v.SetDefault("profile_token_element", "")
	v.SetDefault("profile_timeout", 3*time.Second)
}

// Load reads .env (if present) into the environment, then resolves every key from
// the environment, falling back to configFile and finally to defaults.
func Load(configFile string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &model.Config{
		BotToken:      v.GetString("bot_token"),
		DatabasePath:  v.GetString("database_path"),
		DeveloperID:   v.GetString("developer_id"),
		LogWebhookURL: v.GetString("log_webhook_url"),
		LaddersFile:   v.GetString("ladders_file"),
		MetricsAddr:   v.GetString("metrics_addr"),
		SweepInterval: v.GetDuration("sweep_interval"),
		Debug:         v.GetBool("debug"),
		Guild: model.GuildSettings{
			ModeratorRoleID:       v.GetString("moderator_role_id"),
			JailRoleID:            v.GetString("jail_role_id"),
			VerifiedRoleID:        v.GetString("verified_role_id"),
			LogChannelID:          v.GetString("log_channel_id"),
			RegistrationChannelID: v.GetString("registration_channel_id"),
			BadgeRequestChannelID: v.GetString("badge_request_channel_id"),
			BadgeModLogChannelID:  v.GetString("badge_mod_log_channel_id"),
		},
		Profile: model.ProfileSettings{
			BaseURL:        v.GetString("profile_base_url"),
			Fetcher:        v.GetString("profile_fetcher"),
			NotFoundMarker: v.GetString("profile_not_found_marker"),
			TokenElement:   v.GetString("profile_token_element"),
			Timeout:        v.GetDuration("profile_timeout"),
		},
	}
	return cfg, nil
}

// Validate checks what the bot needs in order to connect.
func Validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return ErrMissingToken
	}
	switch cfg.Profile.Fetcher {
	case "", "http", "browser":
	default:
		return fmt.Errorf("unknown PROFILE_FETCHER %q, want http or browser", cfg.Profile.Fetcher)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return nil
}
