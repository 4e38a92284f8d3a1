package punish

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/moderation"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type unwarnPayload struct {
	TargetID string
}

// HandleUnwarnCommand offers the member's active warnings for removal.
func HandleUnwarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	actorID := utils.InteractionUserID(i)
	target := targetID(i)
	warnings, err := b.Moderator.ActiveWarnings(ctx, i.GuildID, actorID, target)
	if err != nil {
		replyFailure(s, i, b, "Unwarn", err)
		return
	}
	if len(warnings) == 0 {
		utils.SendFollowUp(s, i.Interaction, "<@"+target+"> has no active warnings.")
		return
	}

	session := b.Flows.Begin(workflow.KindUnwarn, actorID, i.GuildID, unwarnPayload{TargetID: target})
	content := fmt.Sprintf("Select the warning of <@%s> to remove.", target)
	components := buildUnwarnSelect(session.CustomID("select"), warnings)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content, Components: &components}); err != nil {
		b.Flows.Delete(session.ID)
	}
}

// HandleUnwarnComponent removes the selected warning.
func HandleUnwarnComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	payload, ok := session.Payload.(unwarnPayload)
	if !ok || action != "select" {
		return
	}
	id, err := strconv.ParseInt(selectedValue(i), 10, 64)
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid warning selection.")
		return
	}
	release, ok := lockTarget(s, i, b, payload.TargetID)
	if !ok {
		return
	}
	defer release()
	b.Flows.Delete(session.ID)
	if err := utils.DeferUpdate(s, i); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	w, err := b.Moderator.RemoveWarning(ctx, moderation.RemoveWarningRequest{
		GuildID:   i.GuildID,
		ActorID:   utils.InteractionUserID(i),
		TargetID:  payload.TargetID,
		WarningID: id,
	})
	if err != nil {
		replyFailure(s, i, b, "Unwarn", err)
		return
	}
	msg := fmt.Sprintf("✅ Warning #%d (%s) of <@%s> was removed.", w.ID, w.Category.Label(), w.UserID)
	components := []discordgo.MessageComponent{}
	editResponse(s, i, b, "Unwarn", &discordgo.WebhookEdit{Content: &msg, Components: &components})
}
