package utils

import "github.com/bwmarrin/discordgo"

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// HasRole reports whether roleIDs includes roleID. An unset roleID never matches.
func HasRole(roleIDs []string, roleID string) bool {
	return roleID != "" && contains(roleIDs, roleID)
}

// IsDeveloper reports whether the interaction was issued by the configured developer.
func IsDeveloper(i *discordgo.InteractionCreate, developerID string) bool {
	return developerID != "" && InteractionUserID(i) == developerID
}

// IsGuildOwner reports whether the interaction author owns the guild.
func IsGuildOwner(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.GuildID == "" {
		return false
	}
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return false
		}
	}
	return guild.OwnerID == InteractionUserID(i)
}

// InteractionUserID returns the author of an interaction in guilds and DMs alike.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
