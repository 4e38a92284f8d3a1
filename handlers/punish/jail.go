package punish

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/moderation"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type jailPayload struct {
	TargetID string
}

func openJailSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, targetID string) {
	session := b.Flows.Begin(workflow.KindJail, utils.InteractionUserID(i), i.GuildID, jailPayload{TargetID: targetID})
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("How long should <@%s> be jailed?", targetID),
			Components: buildJailSelect(session.CustomID("duration")),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Flows.Delete(session.ID)
	}
}

// HandleJailComponent receives the jail duration selection.
func HandleJailComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	payload, ok := session.Payload.(jailPayload)
	if !ok || action != "duration" {
		return
	}
	duration, err := utils.ParseDuration(selectedValue(i))
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid jail duration.")
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

	jail, err := b.Moderator.Jail(ctx, moderation.JailRequest{
		GuildID:  i.GuildID,
		ActorID:  utils.InteractionUserID(i),
		TargetID: payload.TargetID,
		Duration: duration,
	})
	if err != nil {
		replyFailure(s, i, b, "Jail", err)
		return
	}
	msg := fmt.Sprintf("✅ <@%s> is jailed for %s, until %s.", jail.UserID, utils.FormatDuration(duration), utils.DiscordTime(jail.EndTime))
	components := []discordgo.MessageComponent{}
	editResponse(s, i, b, "Jail", &discordgo.WebhookEdit{Content: &msg, Components: &components})
}

// HandleUnjailCommand lifts a member's active jail and restores their roles.
func HandleUnjailCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	target := targetID(i)
	release, ok := lockTarget(s, i, b, target)
	if !ok {
		return
	}
	defer release()
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	jail, err := b.Moderator.Release(ctx, moderation.ReleaseRequest{
		GuildID:  i.GuildID,
		ActorID:  utils.InteractionUserID(i),
		TargetID: target,
	})
	if err != nil {
		replyFailure(s, i, b, "Unjail", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ <@%s> was released and %d role(s) restored.", jail.UserID, len(jail.OriginalRoles)))
}
