package moderation

import (
	"context"
	"fmt"
	"time"

	"moderation-bot/model"
)

// MuteDuration is the length of a manual mute.
const MuteDuration = 15 * time.Minute

// ActionRequest targets a member with a manual action.
type ActionRequest struct {
	GuildID  string
	ActorID  string
	TargetID string
	Reason   string
}

// RemoveWarningRequest asks for one of the target's active warnings to be deleted.
type RemoveWarningRequest struct {
	GuildID   string
	ActorID   string
	TargetID  string
	WarningID int64
}

// UserSummary is the moderation picture of a member.
type UserSummary struct {
	Member         *model.Member
	ActiveWarnings []model.Warning
	Jail           *model.Jail
}

// Kick removes the target from the guild.
func (m *Moderator) Kick(ctx context.Context, req ActionRequest) (*model.Member, error) {
	return m.enforce(ctx, req, ActionKick, 0, func(target *model.Member, reason string) error {
		return m.gateway.KickMember(ctx, req.GuildID, target.UserID, reason)
	})
}

// Ban bans the target from the guild.
func (m *Moderator) Ban(ctx context.Context, req ActionRequest) (*model.Member, error) {
	return m.enforce(ctx, req, ActionBan, 0, func(target *model.Member, reason string) error {
		return m.gateway.BanMember(ctx, req.GuildID, target.UserID, reason)
	})
}

// Mute times the target out for MuteDuration.
func (m *Moderator) Mute(ctx context.Context, req ActionRequest) (*model.Member, error) {
	return m.enforce(ctx, req, ActionTimeout, MuteDuration, func(target *model.Member, reason string) error {
		return m.gateway.TimeoutMember(ctx, req.GuildID, target.UserID, m.now().Add(MuteDuration), reason)
	})
}

func (m *Moderator) enforce(ctx context.Context, req ActionRequest, action Action, length time.Duration, apply func(*model.Member, string) error) (*model.Member, error) {
	actor, err := m.authorize(ctx, req.GuildID, req.ActorID)
	if err != nil {
		return nil, err
	}
	target, err := m.resolveTarget(ctx, req.GuildID, actor, req.TargetID)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = "No reason given"
	}
	if err := apply(target, reason); err != nil {
		return nil, fmt.Errorf("%s member: %w", action, err)
	}

	m.postLog(ctx, actionLogEntry(action, target, actor.UserID, reason, length))
	m.metrics.ModerationAction(string(action), "")
	return target, nil
}

// RemoveWarning deletes one of the target's active warnings.
func (m *Moderator) RemoveWarning(ctx context.Context, req RemoveWarningRequest) (*model.Warning, error) {
	actor, err := m.authorize(ctx, req.GuildID, req.ActorID)
	if err != nil {
		return nil, err
	}

	w, err := m.store.GetWarning(ctx, req.WarningID)
	if err != nil {
		return nil, fmt.Errorf("get warning: %w", err)
	}
	if w == nil || w.UserID != req.TargetID || w.GuildID != req.GuildID || !w.Active(m.now()) {
		return nil, ErrWarningNotFound
	}
	if err := m.store.DeleteWarning(ctx, w.ID); err != nil {
		return nil, fmt.Errorf("delete warning: %w", err)
	}

	m.postLog(ctx, unwarnLogEntry(*w, actor.UserID))
	m.metrics.ModerationAction(string(ActionUnwarn), string(w.Category))
	return w, nil
}

// ActiveWarnings lists the target's active warnings, newest first.
func (m *Moderator) ActiveWarnings(ctx context.Context, guildID, actorID, targetID string) ([]model.Warning, error) {
	if _, err := m.authorize(ctx, guildID, actorID); err != nil {
		return nil, err
	}
	warnings, err := m.store.ListActiveWarnings(ctx, targetID, guildID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	return warnings, nil
}

// UserSummary gathers the target's member record, active warnings and active jail.
func (m *Moderator) UserSummary(ctx context.Context, guildID, actorID, targetID string) (*UserSummary, error) {
	if _, err := m.authorize(ctx, guildID, actorID); err != nil {
		return nil, err
	}
	member, err := m.gateway.Member(ctx, guildID, targetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target: %w", err)
	}
	warnings, err := m.store.ListActiveWarnings(ctx, targetID, guildID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	jail, err := m.store.FindActiveJail(ctx, targetID, guildID)
	if err != nil {
		return nil, fmt.Errorf("find active jail: %w", err)
	}
	return &UserSummary{Member: member, ActiveWarnings: warnings, Jail: jail}, nil
}
