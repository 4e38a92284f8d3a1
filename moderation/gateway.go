package moderation

import (
	"context"
	"time"

	"moderation-bot/model"
)

// Gateway is the chat platform as seen by the moderation core. Implementations
// map platform "not found" failures to ErrNotFound and permission refusals to
// ErrCapabilityDenied.
type Gateway interface {
	Member(ctx context.Context, guildID, userID string) (*model.Member, error)
	BotMember(ctx context.Context, guildID string) (*model.Member, error)
	GuildRoles(ctx context.Context, guildID string) ([]model.Role, error)

	SetMemberRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	AddRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error

	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	KickMember(ctx context.Context, guildID, userID, reason string) error
	BanMember(ctx context.Context, guildID, userID, reason string) error

	SendLog(ctx context.Context, channelID string, entry model.LogEntry) error
}

// Store is the persistence the moderation core needs.
type Store interface {
	AddWarning(ctx context.Context, userID, guildID string, category model.Category, reason, moderatorID string) (int64, error)
	CountActiveWarnings(ctx context.Context, userID, guildID string, category model.Category) (int, error)
	ListActiveWarnings(ctx context.Context, userID, guildID string) ([]model.Warning, error)
	GetWarning(ctx context.Context, id int64) (*model.Warning, error)
	DeleteWarning(ctx context.Context, id int64) error

	FindActiveJail(ctx context.Context, userID, guildID string) (*model.Jail, error)
	CreateJail(ctx context.Context, jail model.Jail) (int64, error)
	ListExpiredJails(ctx context.Context, now time.Time) ([]model.Jail, error)
	DeleteJail(ctx context.Context, id int64) error
}
