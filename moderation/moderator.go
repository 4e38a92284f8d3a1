// Package moderation holds the sanction rules and the warn, jail and manual
// action workflows. It talks to the chat platform only through Gateway.
package moderation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moderation-bot/metrics"
	"moderation-bot/model"
)

// Moderator runs moderation workflows for one configured guild setup.
type Moderator struct {
	store    Store
	gateway  Gateway
	settings model.GuildSettings
	rules    RuleBook
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Moderator.
type Option func(*Moderator)

func WithRuleBook(rb RuleBook) Option {
	return func(m *Moderator) { m.rules = rb }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Moderator) { m.logger = logger }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Moderator) { m.metrics = mt }
}

func WithClock(now func() time.Time) Option {
	return func(m *Moderator) { m.now = now }
}

// New builds a Moderator with the default rule book, a no-op logger and the wall clock.
func New(store Store, gateway Gateway, settings model.GuildSettings, opts ...Option) *Moderator {
	m := &Moderator{
		store:    store,
		gateway:  gateway,
		settings: settings,
		rules:    DefaultRuleBook(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rules returns the active rule book.
func (m *Moderator) Rules() RuleBook {
	return m.rules
}

// authorize fetches the actor and checks the moderator role.
func (m *Moderator) authorize(ctx context.Context, guildID, actorID string) (*model.Member, error) {
	if m.settings.ModeratorRoleID == "" {
		return nil, ErrUnauthorized
	}
	actor, err := m.gateway.Member(ctx, guildID, actorID)
	if err != nil {
		return nil, fmt.Errorf("fetch actor: %w", err)
	}
	if !actor.HasRole(m.settings.ModeratorRoleID) {
		return nil, ErrUnauthorized
	}
	return actor, nil
}

// resolveTarget fetches the target and rejects bots, self-targeting and members
// whose top role is not strictly below the bot's.
func (m *Moderator) resolveTarget(ctx context.Context, guildID string, actor *model.Member, targetID string) (*model.Member, error) {
	if targetID == actor.UserID {
		return nil, ErrInvalidTarget
	}
	target, err := m.gateway.Member(ctx, guildID, targetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target: %w", err)
	}
	if target.Bot {
		return nil, ErrInvalidTarget
	}

	self, err := m.gateway.BotMember(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch bot member: %w", err)
	}
	roles, err := m.gateway.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild roles: %w", err)
	}
	positions := rolePositions(roles)
	if topPosition(target, positions) >= topPosition(self, positions) {
		return nil, ErrInvalidTarget
	}
	return target, nil
}

func rolePositions(roles []model.Role) map[string]int {
	positions := make(map[string]int, len(roles))
	for _, r := range roles {
		positions[r.ID] = r.Position
	}
	return positions
}

// topPosition is the highest position among the member's roles; the implicit
// everyone role sits at zero.
func topPosition(member *model.Member, positions map[string]int) int {
	top := 0
	for _, id := range member.RoleIDs {
		if p, ok := positions[id]; ok && p > top {
			top = p
		}
	}
	return top
}

// postLog delivers a moderation log entry. Failures are logged and dropped.
func (m *Moderator) postLog(ctx context.Context, entry model.LogEntry) {
	if m.settings.LogChannelID == "" {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = m.now().UTC()
	}
	if err := m.gateway.SendLog(ctx, m.settings.LogChannelID, entry); err != nil {
		m.logger.Warn("failed to post moderation log",
			zap.String("title", entry.Title),
			zap.Error(err))
	}
}
