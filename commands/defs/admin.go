package defs

import "github.com/bwmarrin/discordgo"

var Restart = &discordgo.ApplicationCommand{
	Name:        "restart",
	Description: "Restart the bot process (developer only)",
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "sysinfo",
	Description: "Show host and process statistics (developer only)",
}
