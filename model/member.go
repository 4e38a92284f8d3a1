package model

import "time"

// Member is the gateway-independent view of a guild member.
type Member struct {
	UserID      string
	GuildID     string
	Username    string
	DisplayName string
	AvatarURL   string
	Bot         bool
	RoleIDs     []string
	JoinedAt    time.Time
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Role is a guild role with its hierarchy position.
type Role struct {
	ID       string
	Name     string
	Position int
	Managed  bool
}
