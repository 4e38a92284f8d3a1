package model

import (
	"errors"
	"time"
)

// ErrActiveJailExists is returned by stores when a subject already has an active jail.
var ErrActiveJailExists = errors.New("active jail already exists")

// Jail is a time-boxed role quarantine. OriginalRoles is the snapshot restored on release.
type Jail struct {
	ID            int64
	UserID        string
	GuildID       string
	ModeratorID   string
	StartTime     time.Time
	EndTime       time.Time
	OriginalRoles []string
}

// Remaining returns the time left at now, never negative.
func (j Jail) Remaining(now time.Time) time.Duration {
	if d := j.EndTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the jail has run out at now.
func (j Jail) Expired(now time.Time) bool {
	return !j.EndTime.After(now)
}
