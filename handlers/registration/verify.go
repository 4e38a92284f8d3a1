package registration

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
	"moderation-bot/identity"
	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/workflow"
)

type verifyPayload struct {
	Username string
}

// HandleRegisterCommand starts profile verification for the calling member.
func HandleRegisterCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	guild := b.Config.Guild
	if guild.RegistrationChannelID != "" && i.ChannelID != guild.RegistrationChannelID {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Registration is only available in <#%s>.", guild.RegistrationChannelID))
		return
	}
	if i.Member != nil && utils.HasRole(i.Member.Roles, guild.VerifiedRoleID) {
		utils.SendSimpleResponse(s, i, "You are already verified.")
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		utils.SendErrorResponse(s, i, "Please provide your profile username.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	userID := utils.InteractionUserID(i)
	pending, err := b.Verifier.Start(ctx, userID, data.Options[0].StringValue())
	if err != nil {
		if errors.Is(err, identity.ErrUnknownUsername) {
			utils.SendFollowUpError(s, i.Interaction, "No profile exists with that username.")
			return
		}
		b.ReportFailure("Registration", "Start", err)
		utils.SendFollowUpError(s, i.Interaction, "Something went wrong. The error has been reported.")
		return
	}

	session := b.Flows.Begin(workflow.KindVerify, userID, i.GuildID, verifyPayload{Username: pending.Username})
	utils.SendFollowUpEmbeds(s, i.Interaction,
		[]*discordgo.MessageEmbed{buildInstructionsEmbed(pending, b.Profiles.ProfileURL(pending.Username))},
		buildCheckComponents(session.CustomID("check")))
}

// HandleVerifyComponent checks the profile bio for the issued code.
func HandleVerifyComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, session *workflow.Session, action string) {
	if action != "check" {
		return
	}
	if err := utils.DeferUpdate(s, i); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	actorID := utils.InteractionUserID(i)
	pending, err := b.Verifier.Check(ctx, session.OwnerID, actorID)
	switch {
	case errors.Is(err, identity.ErrCodeMismatch):
		b.Flows.Touch(session.ID, nil)
		utils.SendEphemeralFollowUp(s, i.Interaction,
			fmt.Sprintf("❌ The code `%s` was not found on your profile yet. Save your bio and press Check again.", pending.Code))
		return
	case errors.Is(err, identity.ErrCodeExpired), errors.Is(err, identity.ErrNoPending):
		b.Flows.Delete(session.ID)
		finish(s, i, "❌ Your code has expired. Run /kayit again to get a new one.")
		return
	case errors.Is(err, identity.ErrNotOwner):
		utils.SendEphemeralFollowUp(s, i.Interaction, "❌ This registration belongs to someone else.")
		return
	case err != nil:
		b.ReportFailure("Registration", "Check", err)
		utils.SendEphemeralFollowUp(s, i.Interaction, "❌ Something went wrong. The error has been reported.")
		return
	}

	b.Flows.Delete(session.ID)
	roleID := b.Config.Guild.VerifiedRoleID
	if roleID != "" {
		if err := b.Gateway.AddRoles(ctx, session.GuildID, actorID, []string{roleID}, "profile verified"); err != nil {
			b.ReportFailure("Registration", "GrantRole", err)
			finish(s, i, "⚠️ Your profile was verified but the role could not be granted. A moderator has been notified.")
			return
		}
	}
	b.Logger.Info("member verified",
		zap.String("user_id", actorID),
		zap.String("username", pending.Username))
	finish(s, i, fmt.Sprintf("✅ Verified as **%s**. Welcome!", pending.Username))
}

func finish(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{}
	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
}

func buildInstructionsEmbed(p identity.Pending, profileURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Profile verification",
		Description: fmt.Sprintf("Add the code below to the bio of [%s](%s), save it, then press **Check**.",
			p.Username, profileURL),
		Color: model.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Code", Value: fmt.Sprintf("`%s`", p.Code), Inline: true},
			{Name: "Expires", Value: utils.DiscordTime(p.ExpiresAt), Inline: true},
		},
	}
}

func buildCheckComponents(customID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Check", Style: discordgo.SuccessButton, CustomID: customID},
			},
		},
	}
}
