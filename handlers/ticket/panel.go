package ticket

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

// Component IDs. Review buttons carry the request ID after the colon.
const (
	CreateID          = "badge_create"
	StatusID          = "badge_status"
	CancelID          = "badge_cancel"
	ApprovePrefix     = "badge_approve:"
	RejectPrefix      = "badge_reject:"
	RejectModalPrefix = "badge_reject_modal:"
)

// IsTicketComponent reports whether customID belongs to the badge workflow.
func IsTicketComponent(customID string) bool {
	return strings.HasPrefix(customID, "badge_")
}

// HandleTicketCommand posts or removes the badge request panel. Owner only.
func HandleTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !utils.IsGuildOwner(s, i) {
		utils.SendErrorResponse(s, i, "Only the server owner can manage the ticket panel.")
		return
	}
	channelID := b.Config.Guild.BadgeRequestChannelID
	if channelID == "" {
		channelID = i.ChannelID
	}
	action := "post"
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		action = opts[0].StringValue()
	}

	switch action {
	case "remove":
		removed, err := removePanels(s, channelID)
		if err != nil {
			b.ReportFailure("Ticket", "RemovePanel", err)
			utils.SendErrorResponse(s, i, "Could not remove the panel.")
			return
		}
		if removed == 0 {
			utils.SendSimpleResponse(s, i, "No panel found in <#"+channelID+">.")
			return
		}
		utils.SendSimpleResponse(s, i, "✅ Panel removed.")
	default:
		_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{buildPanelEmbed()},
			Components: buildPanelComponents(),
		})
		if err != nil {
			b.ReportFailure("Ticket", "PostPanel", err)
			utils.SendErrorResponse(s, i, "Could not post the panel.")
			return
		}
		utils.SendSimpleResponse(s, i, "✅ Panel posted in <#"+channelID+">.")
	}
}

// removePanels deletes recent bot messages that carry the panel buttons.
func removePanels(s *discordgo.Session, channelID string) (int, error) {
	messages, err := s.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range messages {
		if m.Author == nil || m.Author.ID != s.State.User.ID || !hasPanelButton(m.Components) {
			continue
		}
		if err := s.ChannelMessageDelete(channelID, m.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func hasPanelButton(components []discordgo.MessageComponent) bool {
	for _, c := range components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if btn, ok := inner.(*discordgo.Button); ok && btn.CustomID == CreateID {
				return true
			}
		}
	}
	return false
}

func buildPanelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Badge requests",
		Description: "Press **Request badge**, then upload your badge image (PNG or JPEG) in this channel within 5 minutes.",
		Color:       model.ColorInfo,
	}
}

func buildPanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Request badge", Style: discordgo.PrimaryButton, CustomID: CreateID},
				discordgo.Button{Label: "My requests", Style: discordgo.SecondaryButton, CustomID: StatusID},
				discordgo.Button{Label: "Cancel pending", Style: discordgo.DangerButton, CustomID: CancelID},
			},
		},
	}
}
