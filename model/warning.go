package model

import "time"

// Warning is a single recorded warning. It counts toward escalation until ExpiresAt.
type Warning struct {
	ID          int64
	UserID      string
	GuildID     string
	Category    Category
	Reason      string
	ModeratorID string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Active reports whether the warning still counts at now.
func (w Warning) Active(now time.Time) bool {
	return w.ExpiresAt.After(now)
}
