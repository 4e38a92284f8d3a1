package punish

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type warnPayload struct {
	TargetID string
	Reason   string
}

// HandleWarnCommand warns directly when a category is given, otherwise opens the category selector.
func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	options := optionMap(i)
	payload := warnPayload{TargetID: targetID(i)}
	if opt, ok := options["reason"]; ok {
		payload.Reason = opt.StringValue()
	}

	if opt, ok := options["category"]; ok {
		category, valid := model.ParseCategory(opt.StringValue())
		if !valid {
			utils.SendErrorResponse(s, i, "Unknown violation category.")
			return
		}
		release, ok := lockTarget(s, i, b, payload.TargetID)
		if !ok {
			return
		}
		defer release()
		if err := utils.DeferResponse(s, i, true); err != nil {
			return
		}
		issueWarning(s, i, b, payload, category)
		return
	}

	session := b.Flows.Begin(workflow.KindWarn, utils.InteractionUserID(i), i.GuildID, payload)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Select the violation for <@" + payload.TargetID + ">.",
			Components: buildCategorySelect(session.CustomID("category")),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.Flows.Delete(session.ID)
	}
}

// HandleWarnComponent receives the category selection.
func HandleWarnComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	payload, ok := session.Payload.(warnPayload)
	if !ok || action != "category" {
		return
	}
	category, valid := model.ParseCategory(selectedValue(i))
	if !valid {
		utils.SendErrorResponse(s, i, "Unknown violation category.")
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
	issueWarning(s, i, b, payload, category)
}

func issueWarning(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, payload warnPayload, category model.Category) {
	ctx, cancel := b.RequestContext()
	defer cancel()

	result, err := b.Moderator.Warn(ctx, moderation.WarnRequest{
		GuildID:  i.GuildID,
		ActorID:  utils.InteractionUserID(i),
		TargetID: payload.TargetID,
		Category: category,
		Reason:   payload.Reason,
	})
	if err != nil {
		replyFailure(s, i, b, "Warn", err)
		return
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{buildWarnResultEmbed(result, category)}, []discordgo.MessageComponent{})
}
