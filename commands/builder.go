package commands

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands/defs"
)

// GenerateCommands returns every global application command the bot serves.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.User,
		defs.WarnList,
		defs.Unwarn,
		defs.Unjail,
		defs.Register,
		defs.TicketSystem,
		defs.Restart,
		defs.SystemInfo,
	}
}
