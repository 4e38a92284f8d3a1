package moderation

import (
	"errors"
	"fmt"
	"time"

	"moderation-bot/utils"
)

var (
	// ErrUnauthorized means the actor does not hold the moderator role.
	ErrUnauthorized = errors.New("actor is not a moderator")
	// ErrInvalidTarget means the target is a bot, the actor, or ranks at or above the bot.
	ErrInvalidTarget = errors.New("target cannot be moderated")
	// ErrCapabilityDenied means the platform refused the action for lack of permissions.
	ErrCapabilityDenied = errors.New("bot lacks permission for this action")
	// ErrNotFound means the member or guild could not be reached.
	ErrNotFound = errors.New("member not found")
	// ErrJailRoleMissing means the configured jail role does not exist in the guild.
	ErrJailRoleMissing = errors.New("jail role is not configured or missing")
	// ErrNotJailed means the target has no active jail.
	ErrNotJailed = errors.New("member is not jailed")
	// ErrWarningNotFound means the warning does not exist, expired, or belongs to someone else.
	ErrWarningNotFound = errors.New("warning not found")
	// ErrUnknownCategory means the violation category is not one of the selectable ones.
	ErrUnknownCategory = errors.New("unknown violation category")
	// ErrInvalidDuration means a jail was requested with a non-positive length.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// AlreadyJailedError is returned when jailing a member that is already jailed.
type AlreadyJailedError struct {
	Remaining time.Duration
}

func (e *AlreadyJailedError) Error() string {
	return fmt.Sprintf("member is already jailed, %s remaining", utils.FormatClock(e.Remaining))
}
