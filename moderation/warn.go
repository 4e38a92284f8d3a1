package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moderation-bot/model"
)

const (
	// EscalationThreshold is the number of active warnings, across categories, that triggers an automatic timeout.
	EscalationThreshold = 3
	// EscalationTimeout is the length of that automatic timeout.
	EscalationTimeout = 15 * time.Minute
)

// WarnRequest asks for a warning to be issued.
type WarnRequest struct {
	GuildID  string
	ActorID  string
	TargetID string
	Category model.Category
	Reason   string
}

// WarnResult describes what a warning ended up doing.
type WarnResult struct {
	WarningID  int64
	Target     *model.Member
	Occurrence int
	Decision   Decision
	// Action is Decision.Action, or ActionError when the timeout could not be applied.
	Action      Action
	ApplyErr    error
	TotalActive int
	Escalated   bool
}

// DefaultReason is the reason recorded when the moderator gives none.
func DefaultReason(category model.Category) string {
	return category.Label() + " violation"
}

// Warn records a warning, applies the ladder decision for the category, logs it
// and runs the escalation check. Once the warning is stored the call succeeds:
// a refused timeout is reported through WarnResult.Action, not as an error.
func (m *Moderator) Warn(ctx context.Context, req WarnRequest) (*WarnResult, error) {
	if _, ok := model.ParseCategory(string(req.Category)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
	}

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
		reason = DefaultReason(req.Category)
	}

	id, err := m.store.AddWarning(ctx, target.UserID, req.GuildID, req.Category, reason, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("record warning: %w", err)
	}
	count, err := m.store.CountActiveWarnings(ctx, target.UserID, req.GuildID, req.Category)
	if err != nil {
		return nil, fmt.Errorf("count warnings: %w", err)
	}

	decision := m.rules.Decide(req.Category, count)
	result := &WarnResult{
		WarningID:  id,
		Target:     target,
		Occurrence: count,
		Decision:   decision,
		Action:     decision.Action,
	}

	if decision.Action == ActionTimeout {
		until := m.now().Add(decision.Duration)
		if err := m.gateway.TimeoutMember(ctx, req.GuildID, target.UserID, until, reason); err != nil {
			result.Action = ActionError
			result.ApplyErr = err
			if !errors.Is(err, ErrCapabilityDenied) {
				m.logger.Error("failed to apply warning timeout",
					zap.String("guild_id", req.GuildID),
					zap.String("user_id", target.UserID),
					zap.Error(err))
			}
		}
	}

	m.postLog(ctx, warnLogEntry(target, actor.UserID, req.Category, reason, result))
	m.metrics.ModerationAction(string(result.Action), string(req.Category))

	m.checkEscalation(ctx, req.GuildID, target, actor.UserID, result)
	return result, nil
}

// checkEscalation applies the automatic timeout once the subject reaches the
// threshold. Every failure here is logged and swallowed.
func (m *Moderator) checkEscalation(ctx context.Context, guildID string, target *model.Member, actorID string, result *WarnResult) {
	total, err := m.store.CountActiveWarnings(ctx, target.UserID, guildID, "")
	if err != nil {
		m.logger.Warn("failed to count warnings for escalation",
			zap.String("user_id", target.UserID),
			zap.Error(err))
		return
	}
	result.TotalActive = total
	if total < EscalationThreshold {
		return
	}

	reason := fmt.Sprintf("%d active warnings", total)
	until := m.now().Add(EscalationTimeout)
	if err := m.gateway.TimeoutMember(ctx, guildID, target.UserID, until, reason); err != nil {
		m.logger.Debug("escalation timeout not applied",
			zap.String("user_id", target.UserID),
			zap.Error(err))
		return
	}
	result.Escalated = true
	m.postLog(ctx, escalationLogEntry(target, actorID, total))
	m.metrics.ModerationAction(string(ActionTimeout), string(model.CategoryAutoTimeout))
}
