package model

import "time"

// BadgeStatus is the review state of a badge request.
type BadgeStatus string

const (
	BadgePending  BadgeStatus = "pending"
	BadgeApproved BadgeStatus = "approved"
	BadgeRejected BadgeStatus = "rejected"
)

// BadgeRequest is a member-submitted image awaiting moderator review.
type BadgeRequest struct {
	ID          int64
	UserID      string
	GuildID     string
	BadgeURL    string
	Status      BadgeStatus
	ModeratorID string
	Reason      string
	MessageID   string
	SubmittedAt time.Time
	ReviewedAt  *time.Time
}
