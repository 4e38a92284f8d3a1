package punish

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type warnListPayload struct {
	TargetID string
	Page     int
	Warnings []model.Warning
}

// HandleWarnListCommand lists a member's active warnings five per page.
func HandleWarnListCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
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
		replyFailure(s, i, b, "WarnList", err)
		return
	}
	if len(warnings) == 0 {
		utils.SendFollowUp(s, i.Interaction, "<@"+target+"> has no active warnings.")
		return
	}

	payload := warnListPayload{TargetID: target, Page: 1, Warnings: warnings}
	embed, _ := buildWarnListEmbed(target, warnings, payload.Page)
	var components []discordgo.MessageComponent
	if utils.PageCount(len(warnings), warningsPerPage) > 1 {
		session := b.Flows.Begin(workflow.KindWarnList, actorID, i.GuildID, payload)
		components = utils.CreatePaginationComponents(1, utils.PageCount(len(warnings), warningsPerPage), session.CustomID)
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, components)
}

// HandleWarnListComponent turns the page.
func HandleWarnListComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	payload, ok := session.Payload.(warnListPayload)
	if !ok {
		return
	}
	switch action {
	case "prev":
		payload.Page--
	case "next":
		payload.Page++
	default:
		return
	}

	embed, page := buildWarnListEmbed(payload.TargetID, payload.Warnings, payload.Page)
	payload.Page = page
	b.Flows.Touch(session.ID, payload)

	components := utils.CreatePaginationComponents(page, utils.PageCount(len(payload.Warnings), warningsPerPage), session.CustomID)
	if err := utils.UpdateComponentMessage(s, i, "", []*discordgo.MessageEmbed{embed}, components); err != nil {
		b.Logger.Warn("failed to update warning list")
	}
}
