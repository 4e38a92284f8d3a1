package admin

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
	"moderation-bot/utils"
)

func HandleRestart(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !utils.IsDeveloper(i, b.Config.DeveloperID) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}
	if b.Restart == nil {
		utils.SendErrorResponse(s, i, "Restart is not available in this mode.")
		return
	}

	utils.SendSimpleResponse(s, i, "🔄 Restarting...")
	b.Logger.Info("restart requested", zap.String("user_id", utils.InteractionUserID(i)))
	b.Ops.Warn("System", "Restart", "Restart requested by <@"+utils.InteractionUserID(i)+">")
	go func() {
		if err := b.Restart(); err != nil {
			b.ReportFailure("System", "Restart", err)
		}
	}()
}
