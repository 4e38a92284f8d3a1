package model

import "time"

// GuildSettings holds the role and channel IDs the bot acts on.
type GuildSettings struct {
	ModeratorRoleID       string
	JailRoleID            string
	VerifiedRoleID        string
	LogChannelID          string
	RegistrationChannelID string
	BadgeRequestChannelID string
	BadgeModLogChannelID  string
}

// ProfileSettings configures the external profile site used for identity checks.
type ProfileSettings struct {
	BaseURL        string
	Fetcher        string
	NotFoundMarker string
	TokenElement   string
	Timeout        time.Duration
}

// Config 存储应用程序的配置
type Config struct {
	BotToken      string
	DatabasePath  string
	DeveloperID   string
	LogWebhookURL string
	LaddersFile   string
	MetricsAddr   string
	SweepInterval time.Duration
	Debug         bool

	Guild   GuildSettings
	Profile ProfileSettings
}
