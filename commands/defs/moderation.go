package defs

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

func categoryChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(model.Categories))
	for _, c := range model.Categories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  c.Label,
			Value: string(c.Key),
		})
	}
	return choices
}

func memberOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
		Required:    true,
	}
}

var guildOnly = false

// Warn opens the category selector unless a category is passed directly.
var Warn = &discordgo.ApplicationCommand{
	Name:         "warn",
	Description:  "Warn a member for a rule violation",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		memberOption("The member to warn"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "Violation category",
			Required:    false,
			Choices:     categoryChoices(),
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason shown in the moderation log",
			Required:    false,
			MaxLength:   500,
		},
	},
}

var User = &discordgo.ApplicationCommand{
	Name:         "user",
	Description:  "Show a member's moderation summary and actions",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		memberOption("The member to inspect"),
	},
}

var WarnList = &discordgo.ApplicationCommand{
	Name:         "warnlist",
	Description:  "List a member's active warnings",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		memberOption("The member whose warnings to list"),
	},
}

var Unwarn = &discordgo.ApplicationCommand{
	Name:         "unwarn",
	Description:  "Remove one of a member's active warnings",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		memberOption("The member whose warning to remove"),
	},
}

var Unjail = &discordgo.ApplicationCommand{
	Name:         "unjail",
	Description:  "Release a member from jail early",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		memberOption("The member to release"),
	},
}
