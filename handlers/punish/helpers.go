package punish

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
	"moderation-bot/moderation"
	"moderation-bot/utils"
)

// describeError turns a moderation error into the text shown to the moderator.
// known is false for unexpected failures, which the caller reports.
func describeError(err error) (msg string, known bool) {
	var jailed *moderation.AlreadyJailedError
	switch {
	case errors.As(err, &jailed):
		return fmt.Sprintf("This member is already jailed. Time remaining: %s", utils.FormatClock(jailed.Remaining)), true
	case errors.Is(err, moderation.ErrUnauthorized):
		return "You need the moderator role to do this.", true
	case errors.Is(err, moderation.ErrInvalidTarget):
		return "That member cannot be moderated. Bots, yourself and members ranked at or above me are excluded.", true
	case errors.Is(err, moderation.ErrCapabilityDenied):
		return "I do not have the permissions needed for that action.", true
	case errors.Is(err, moderation.ErrNotFound):
		return "That member is not in this server.", true
	case errors.Is(err, moderation.ErrJailRoleMissing):
		return "The jail role is not configured or no longer exists.", true
	case errors.Is(err, moderation.ErrNotJailed):
		return "That member is not jailed.", true
	case errors.Is(err, moderation.ErrWarningNotFound):
		return "That warning no longer exists or has expired.", true
	case errors.Is(err, moderation.ErrUnknownCategory):
		return "Unknown violation category.", true
	case errors.Is(err, moderation.ErrInvalidDuration):
		return "Invalid jail duration.", true
	}
	return "Something went wrong. The error has been reported.", false
}

// replyFailure replaces the deferred response with the error text and drops any components.
func replyFailure(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, operation string, err error) {
	msg, known := describeError(err)
	if !known {
		b.ReportFailure("Punish", operation, err)
	}
	content := "❌ " + msg
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{}
	editResponse(s, i, b, operation, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
		Embeds:     &embeds,
	})
}

// editResponse replaces the deferred response. A failed edit is logged, the
// action it reports has already happened.
func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, operation string, edit *discordgo.WebhookEdit) {
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		b.Logger.Warn("failed to update interaction response", zap.String("operation", operation), zap.Error(err))
	}
}

// followUpFailure posts the error as a separate ephemeral message, leaving the panel intact.
func followUpFailure(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, operation string, err error) {
	msg, known := describeError(err)
	if !known {
		b.ReportFailure("Punish", operation, err)
	}
	utils.SendEphemeralFollowUp(s, i.Interaction, "❌ "+msg)
}

// requireModerator answers the interaction and returns false when the actor lacks the moderator role.
func requireModerator(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.Member == nil || !utils.HasRole(i.Member.Roles, b.Config.Guild.ModeratorRoleID) {
		utils.SendErrorResponse(s, i, "You need the moderator role to do this.")
		return false
	}
	return true
}

// lockTarget answers the interaction and returns false when another action on the member is running.
func lockTarget(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, targetID string) (release func(), ok bool) {
	release, ok = b.Guard.TryAcquire(i.GuildID + ":" + targetID)
	if !ok {
		utils.SendErrorResponse(s, i, "Another moderation action on this member is in progress.")
	}
	return release, ok
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// targetID returns the user chosen in the "member" option.
func targetID(i *discordgo.InteractionCreate) string {
	opt, ok := optionMap(i)["member"]
	if !ok {
		return ""
	}
	if u := opt.UserValue(nil); u != nil {
		return u.ID
	}
	return ""
}

func selectedValue(i *discordgo.InteractionCreate) string {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
