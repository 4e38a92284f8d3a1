package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moderation-bot/model"
)

// JailRequest asks for a member to be jailed for Duration.
type JailRequest struct {
	GuildID  string
	ActorID  string
	TargetID string
	Duration time.Duration
}

// ReleaseRequest asks for a member's active jail to be lifted early.
type ReleaseRequest struct {
	GuildID  string
	ActorID  string
	TargetID string
}

// SweepReport counts what a sweep pass did with each expired jail.
type SweepReport struct {
	Released int
	Skipped  int
	Failed   int
}

// Jail replaces the target's roles with the jail role and records the snapshot
// needed to restore them later.
func (m *Moderator) Jail(ctx context.Context, req JailRequest) (*model.Jail, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	actor, err := m.authorize(ctx, req.GuildID, req.ActorID)
	if err != nil {
		return nil, err
	}
	target, err := m.resolveTarget(ctx, req.GuildID, actor, req.TargetID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	existing, err := m.store.FindActiveJail(ctx, target.UserID, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("find active jail: %w", err)
	}
	if existing != nil {
		return nil, &AlreadyJailedError{Remaining: existing.Remaining(now)}
	}

	roles, err := m.gateway.GuildRoles(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild roles: %w", err)
	}
	if m.settings.JailRoleID == "" || !roleExists(roles, m.settings.JailRoleID) {
		return nil, ErrJailRoleMissing
	}

	snapshot := snapshotRoles(target.RoleIDs, req.GuildID, m.settings.JailRoleID)
	if err := m.gateway.SetMemberRoles(ctx, req.GuildID, target.UserID, []string{m.settings.JailRoleID}, "jailed"); err != nil {
		return nil, fmt.Errorf("replace roles: %w", err)
	}

	jail := model.Jail{
		UserID:        target.UserID,
		GuildID:       req.GuildID,
		ModeratorID:   actor.UserID,
		StartTime:     now,
		EndTime:       now.Add(req.Duration),
		OriginalRoles: snapshot,
	}
	id, err := m.store.CreateJail(ctx, jail)
	if errors.Is(err, model.ErrActiveJailExists) {
		// Another moderator jailed the member first. Their jail stands and the
		// member already holds only the jail role, so nothing is restored.
		return nil, m.alreadyJailed(ctx, target.UserID, req.GuildID, req.Duration)
	}
	if err != nil {
		// Put the roles back so the member is not left jailed without a record.
		if restoreErr := m.gateway.SetMemberRoles(ctx, req.GuildID, target.UserID, snapshot, "jail could not be recorded"); restoreErr != nil {
			m.logger.Error("failed to restore roles after jail insert failure",
				zap.String("guild_id", req.GuildID),
				zap.String("user_id", target.UserID),
				zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("record jail: %w", err)
	}
	jail.ID = id

	m.postLog(ctx, jailLogEntry(target, jail))
	m.metrics.ModerationAction(string(ActionJail), "")
	return &jail, nil
}

// alreadyJailed reports the jail that won a concurrent insert. fallback is used
// when that jail can no longer be read.
func (m *Moderator) alreadyJailed(ctx context.Context, userID, guildID string, fallback time.Duration) error {
	existing, err := m.store.FindActiveJail(ctx, userID, guildID)
	if err != nil || existing == nil {
		return &AlreadyJailedError{Remaining: fallback}
	}
	return &AlreadyJailedError{Remaining: existing.Remaining(m.now())}
}

// Release lifts the target's active jail before it ends.
func (m *Moderator) Release(ctx context.Context, req ReleaseRequest) (*model.Jail, error) {
	actor, err := m.authorize(ctx, req.GuildID, req.ActorID)
	if err != nil {
		return nil, err
	}

	jail, err := m.store.FindActiveJail(ctx, req.TargetID, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("find active jail: %w", err)
	}
	if jail == nil {
		return nil, ErrNotJailed
	}

	member, err := m.gateway.Member(ctx, req.GuildID, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target: %w", err)
	}
	if err := m.restoreRoles(ctx, *jail, member, "jail lifted"); err != nil {
		return nil, err
	}
	if err := m.store.DeleteJail(ctx, jail.ID); err != nil {
		return nil, fmt.Errorf("delete jail: %w", err)
	}

	m.postLog(ctx, releaseLogEntry(*jail, actor.UserID, false))
	m.metrics.ModerationAction(string(ActionRelease), "")
	return jail, nil
}

// Sweep releases every jail that has ended by now. Jails whose member or guild
// cannot be reached are skipped and kept for a later pass.
func (m *Moderator) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport

	jails, err := m.store.ListExpiredJails(ctx, now)
	if err != nil {
		return report, fmt.Errorf("list expired jails: %w", err)
	}

	for _, jail := range jails {
		if ctx.Err() != nil {
			break
		}
		err := m.expire(ctx, jail)
		switch {
		case err == nil:
			report.Released++
		case errors.Is(err, ErrNotFound):
			report.Skipped++
			m.logger.Debug("skipping jail of unreachable member",
				zap.Int64("jail_id", jail.ID),
				zap.String("guild_id", jail.GuildID),
				zap.String("user_id", jail.UserID))
		default:
			report.Failed++
			m.logger.Warn("failed to release expired jail",
				zap.Int64("jail_id", jail.ID),
				zap.String("guild_id", jail.GuildID),
				zap.String("user_id", jail.UserID),
				zap.Error(err))
		}
	}

	m.metrics.JailSweep("released", report.Released)
	m.metrics.JailSweep("skipped", report.Skipped)
	m.metrics.JailSweep("failed", report.Failed)
	return report, nil
}

func (m *Moderator) expire(ctx context.Context, jail model.Jail) error {
	member, err := m.gateway.Member(ctx, jail.GuildID, jail.UserID)
	if err != nil {
		return err
	}
	if err := m.restoreRoles(ctx, jail, member, "jail expired"); err != nil {
		return err
	}
	if err := m.store.DeleteJail(ctx, jail.ID); err != nil {
		return fmt.Errorf("delete jail: %w", err)
	}
	m.postLog(ctx, releaseLogEntry(jail, "", true))
	return nil
}

// ReapplyJail puts the jail role back on a member who rejoined during an active jail.
// It reports whether a jail was found.
func (m *Moderator) ReapplyJail(ctx context.Context, guildID, userID string) (bool, error) {
	jail, err := m.store.FindActiveJail(ctx, userID, guildID)
	if err != nil {
		return false, fmt.Errorf("find active jail: %w", err)
	}
	if jail == nil {
		return false, nil
	}
	if m.settings.JailRoleID == "" {
		return true, ErrJailRoleMissing
	}
	if err := m.gateway.AddRoles(ctx, guildID, userID, []string{m.settings.JailRoleID}, "rejoined while jailed"); err != nil {
		return true, fmt.Errorf("add jail role: %w", err)
	}
	m.postLog(ctx, rejoinLogEntry(*jail))
	return true, nil
}

// restoreRoles removes the jail role and re-adds snapshot roles that still exist
// in the guild and that the member does not already hold.
func (m *Moderator) restoreRoles(ctx context.Context, jail model.Jail, member *model.Member, reason string) error {
	roles, err := m.gateway.GuildRoles(ctx, jail.GuildID)
	if err != nil {
		return fmt.Errorf("fetch guild roles: %w", err)
	}

	if member.HasRole(m.settings.JailRoleID) {
		if err := m.gateway.RemoveRoles(ctx, jail.GuildID, jail.UserID, []string{m.settings.JailRoleID}, reason); err != nil {
			return fmt.Errorf("remove jail role: %w", err)
		}
	}

	var restore []string
	for _, id := range jail.OriginalRoles {
		if id == m.settings.JailRoleID || id == jail.GuildID || member.HasRole(id) {
			continue
		}
		if roleExists(roles, id) {
			restore = append(restore, id)
		}
	}
	if len(restore) == 0 {
		return nil
	}
	if err := m.gateway.AddRoles(ctx, jail.GuildID, jail.UserID, restore, reason); err != nil {
		return fmt.Errorf("restore roles: %w", err)
	}
	return nil
}

// snapshotRoles drops the implicit everyone role (whose ID equals the guild ID)
// and the jail role itself.
func snapshotRoles(roleIDs []string, guildID, jailRoleID string) []string {
	snapshot := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == guildID || id == jailRoleID {
			continue
		}
		snapshot = append(snapshot, id)
	}
	return snapshot
}

func roleExists(roles []model.Role, id string) bool {
	for _, r := range roles {
		if r.ID == id {
			return true
		}
	}
	return false
}
