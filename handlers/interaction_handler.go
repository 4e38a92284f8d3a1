package handlers

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/handlers/punish"
	"moderation-bot/handlers/registration"
	"moderation-bot/handlers/ticket"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if sessionID, action, ok := workflow.ParseCustomID(customID); ok {
			handleWorkflowComponent(s, i, b, sessionID, action)
		} else if ticket.IsTicketComponent(customID) {
			ticket.HandleComponent(s, i, b, customID)
		}
	case discordgo.InteractionModalSubmit:
		if strings.HasPrefix(i.ModalSubmitData().CustomID, ticket.RejectModalPrefix) {
			ticket.HandleRejectModal(s, i, b)
		}
	}
}

func handleWorkflowComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, sessionID, action string) {
	session, err := b.Flows.Get(sessionID, utils.InteractionUserID(i))
	switch {
	case errors.Is(err, workflow.ErrNotOwner):
		utils.SendErrorResponse(s, i, "Only the member who started this can use it.")
		return
	case err != nil:
		utils.SendErrorResponse(s, i, "This interaction has expired. Run the command again.")
		return
	}

	switch session.Kind {
	case workflow.KindWarn:
		punish.HandleWarnComponent(s, i, b, session, action)
	case workflow.KindJail:
		punish.HandleJailComponent(s, i, b, session, action)
	case workflow.KindUnwarn:
		punish.HandleUnwarnComponent(s, i, b, session, action)
	case workflow.KindWarnList:
		punish.HandleWarnListComponent(s, i, b, session, action)
	case workflow.KindUserPanel:
		punish.HandleUserPanelComponent(s, i, b, session, action)
	case workflow.KindVerify:
		registration.HandleVerifyComponent(s, i, b, session, action)
	}
}
