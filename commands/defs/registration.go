package defs

import "github.com/bwmarrin/discordgo"

var Register = &discordgo.ApplicationCommand{
	Name:        "kayit",
	Description: "Verify that you own a community profile",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Turkish: "kayıt",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.Turkish: "Topluluk profilinin sana ait olduğunu doğrula",
	},
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "username",
			Description: "Your profile username",
			Required:    true,
			MaxLength:   64,
		},
	},
}

var TicketSystem = &discordgo.ApplicationCommand{
	Name:         "ticketsistem",
	Description:  "Post or remove the badge request panel",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "What to do with the panel",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Post", Value: "post"},
				{Name: "Remove", Value: "remove"},
			},
		},
	},
}
