package punish

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type userPanelPayload struct {
	TargetID string
}

// HandleUserCommand shows a member's moderation summary with action buttons.
func HandleUserCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	actorID := utils.InteractionUserID(i)
	summary, err := b.Moderator.UserSummary(ctx, i.GuildID, actorID, targetID(i))
	if err != nil {
		replyFailure(s, i, b, "UserSummary", err)
		return
	}

	session := b.Flows.Begin(workflow.KindUserPanel, actorID, i.GuildID, userPanelPayload{TargetID: summary.Member.UserID})
	utils.SendFollowUpEmbeds(s, i.Interaction,
		[]*discordgo.MessageEmbed{buildUserSummaryEmbed(summary, time.Now())},
		buildUserPanelComponents(session.CustomID))
}

// HandleUserPanelComponent runs the button pressed on a user panel.
func HandleUserPanelComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	payload, ok := session.Payload.(userPanelPayload)
	if !ok {
		return
	}
	if action == "jail" {
		openJailSelect(s, i, b, payload.TargetID)
		b.Flows.Touch(session.ID, nil)
		return
	}

	var apply func(context.Context, moderation.ActionRequest) (*model.Member, error)
	var done string
	switch action {
	case "kick":
		apply, done = b.Moderator.Kick, "kicked"
	case "ban":
		apply, done = b.Moderator.Ban, "banned"
	case "mute":
		apply, done = b.Moderator.Mute, fmt.Sprintf("muted for %s", utils.FormatDuration(moderation.MuteDuration))
	default:
		return
	}

	release, ok := lockTarget(s, i, b, payload.TargetID)
	if !ok {
		return
	}
	defer release()
	if err := utils.DeferUpdate(s, i); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	target, err := apply(ctx, moderation.ActionRequest{
		GuildID:  i.GuildID,
		ActorID:  utils.InteractionUserID(i),
		TargetID: payload.TargetID,
		Reason:   fmt.Sprintf("%s by moderator panel", action),
	})
	if err != nil {
		followUpFailure(s, i, b, "UserPanel", err)
		b.Flows.Touch(session.ID, nil)
		return
	}

	if action == "mute" {
		b.Flows.Touch(session.ID, nil)
	} else {
		// The member is gone; the panel has nothing left to act on.
		b.Flows.Delete(session.ID)
		components := []discordgo.MessageComponent{}
		editResponse(s, i, b, "UserPanel", &discordgo.WebhookEdit{Components: &components})
	}
	utils.SendEphemeralFollowUp(s, i.Interaction, fmt.Sprintf("✅ %s was %s.", memberName(target), done))
}
