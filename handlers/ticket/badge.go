package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/badge"
	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

const statusListLimit = 10

// HandleComponent routes badge panel and review buttons.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, customID string) {
	switch {
	case customID == CreateID:
		handleCreate(s, i, b)
	case customID == StatusID:
		handleStatus(s, i, b)
	case customID == CancelID:
		handleCancel(s, i, b)
	case strings.HasPrefix(customID, ApprovePrefix):
		handleApprove(s, i, b, strings.TrimPrefix(customID, ApprovePrefix))
	case strings.HasPrefix(customID, RejectPrefix):
		openRejectModal(s, i, b, strings.TrimPrefix(customID, RejectPrefix))
	}
}

func handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	until := b.Badges.OpenWindow(utils.InteractionUserID(i))
	utils.SendSimpleResponse(s, i, fmt.Sprintf("📎 Upload your badge image in this channel. The window closes %s.", utils.DiscordTime(until)))
}

func handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := b.RequestContext()
	defer cancel()

	requests, err := b.Badges.Status(ctx, utils.InteractionUserID(i), i.GuildID)
	if err != nil {
		b.ReportFailure("Ticket", "Status", err)
		utils.SendErrorResponse(s, i, "Could not load your requests.")
		return
	}
	if len(requests) == 0 {
		utils.SendSimpleResponse(s, i, "You have no badge requests.")
		return
	}
	if err := utils.SendEmbedResponse(s, i, true, []*discordgo.MessageEmbed{buildStatusEmbed(requests)}, nil); err != nil {
		b.Logger.Warn("failed to send badge status", zap.Error(err))
	}
}

func handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := b.RequestContext()
	defer cancel()

	userID := utils.InteractionUserID(i)
	requests, err := b.Badges.Status(ctx, userID, i.GuildID)
	if err != nil {
		b.ReportFailure("Ticket", "Cancel", err)
		utils.SendErrorResponse(s, i, "Could not load your requests.")
		return
	}
	var target *model.BadgeRequest
	for n := range requests {
		if requests[n].Status == model.BadgePending {
			target = &requests[n]
			break
		}
	}
	if target == nil {
		utils.SendSimpleResponse(s, i, "You have no pending badge request.")
		return
	}

	req, err := b.Badges.Cancel(ctx, userID, target.ID)
	switch {
	case errors.Is(err, badge.ErrAlreadyReviewed):
		utils.SendErrorResponse(s, i, "That request was already reviewed.")
		return
	case err != nil:
		b.ReportFailure("Ticket", "Cancel", err)
		utils.SendErrorResponse(s, i, "Could not cancel the request.")
		return
	}
	if req.MessageID != "" && b.Config.Guild.BadgeModLogChannelID != "" {
		if err := s.ChannelMessageDelete(b.Config.Guild.BadgeModLogChannelID, req.MessageID); err != nil {
			b.Logger.Debug("review message not deleted", zap.Int64("request_id", req.ID), zap.Error(err))
		}
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Request #%d cancelled.", req.ID))
}

// HandleMessage turns an image posted during an open window into a badge request.
func HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if ch := b.Config.Guild.BadgeRequestChannelID; ch != "" && m.ChannelID != ch {
		return
	}
	if !b.Badges.HasWindow(m.Author.ID) {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	sub := badge.Submission{UserID: m.Author.ID, GuildID: m.GuildID}
	for _, a := range m.Attachments {
		sub.Attachments = append(sub.Attachments, badge.Attachment{URL: a.URL, Filename: a.Filename, ContentType: a.ContentType})
	}

	req, err := b.Badges.Submit(ctx, sub)
	switch {
	case errors.Is(err, badge.ErrInvalidAttachment):
		notify(s, b, m.Author.ID, "❌ Please upload the badge as a PNG or JPEG image.")
		return
	case errors.Is(err, badge.ErrRateLimited):
		notify(s, b, m.Author.ID, fmt.Sprintf("❌ You can submit at most %d badge requests per hour.", badge.MaxPerHour))
		return
	case errors.Is(err, badge.ErrNoWindow):
		return
	case err != nil:
		b.ReportFailure("Ticket", "Submit", err)
		return
	}

	postReview(s, b, req)
	notify(s, b, m.Author.ID, fmt.Sprintf("✅ Badge request #%d received. You will be notified after review.", req.ID))
}

func postReview(s *discordgo.Session, b *bot.Bot, req *model.BadgeRequest) {
	channelID := b.Config.Guild.BadgeModLogChannelID
	if channelID == "" {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildReviewEmbed(req)},
		Components: buildReviewComponents(req.ID),
	})
	if err != nil {
		b.ReportFailure("Ticket", "PostReview", err)
		return
	}
	if err := b.Badges.AttachReviewMessage(ctx, req.ID, msg.ID); err != nil {
		b.ReportFailure("Ticket", "AttachReviewMessage", err)
	}
}

func handleApprove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, rawID string) {
	id, ok := parseRequestID(s, i, b, rawID)
	if !ok {
		return
	}
	if err := utils.DeferUpdate(s, i); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	req, err := b.Badges.Approve(ctx, id, utils.InteractionUserID(i))
	if !reviewSucceeded(s, i, b, req, err) {
		return
	}
	notify(s, b, req.UserID, fmt.Sprintf("✅ Your badge request #%d was approved.", req.ID))
}

func openRejectModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, rawID string) {
	id, ok := parseRequestID(s, i, b, rawID)
	if !ok {
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: RejectModalPrefix + strconv.FormatInt(id, 10),
			Title:    fmt.Sprintf("Reject request #%d", id),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "reason",
							Label:     "Reason",
							Style:     discordgo.TextInputParagraph,
							Required:  true,
							MaxLength: 500,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.Logger.Warn("failed to open reject modal", zap.Error(err))
	}
}

// HandleRejectModal rejects the request with the reason typed by the moderator.
func HandleRejectModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ModalSubmitData()
	id, ok := parseRequestID(s, i, b, strings.TrimPrefix(data.CustomID, RejectModalPrefix))
	if !ok {
		return
	}
	reason := modalValue(data, "reason")
	if err := utils.DeferUpdate(s, i); err != nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	req, err := b.Badges.Reject(ctx, id, utils.InteractionUserID(i), reason)
	if !reviewSucceeded(s, i, b, req, err) {
		return
	}
	notify(s, b, req.UserID, fmt.Sprintf("❌ Your badge request #%d was rejected: %s", req.ID, req.Reason))
}

// parseRequestID checks the moderator role and decodes the request ID.
func parseRequestID(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, raw string) (int64, bool) {
	if i.Member == nil || !utils.HasRole(i.Member.Roles, b.Config.Guild.ModeratorRoleID) {
		utils.SendErrorResponse(s, i, "You need the moderator role to review badge requests.")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid badge request.")
		return 0, false
	}
	return id, true
}

func reviewSucceeded(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, req *model.BadgeRequest, err error) bool {
	switch {
	case errors.Is(err, badge.ErrAlreadyReviewed):
		utils.SendEphemeralFollowUp(s, i.Interaction, fmt.Sprintf("❌ This request was already %s.", req.Status))
		updateReviewMessage(s, i, req)
		return false
	case errors.Is(err, badge.ErrRequestNotFound):
		utils.SendEphemeralFollowUp(s, i.Interaction, "❌ This request no longer exists.")
		return false
	case errors.Is(err, badge.ErrReasonRequired):
		utils.SendEphemeralFollowUp(s, i.Interaction, "❌ A rejection reason is required.")
		return false
	case err != nil:
		b.ReportFailure("Ticket", "Review", err)
		utils.SendEphemeralFollowUp(s, i.Interaction, "❌ Something went wrong. The error has been reported.")
		return false
	}
	updateReviewMessage(s, i, req)
	return true
}

func updateReviewMessage(s *discordgo.Session, i *discordgo.InteractionCreate, req *model.BadgeRequest) {
	embeds := []*discordgo.MessageEmbed{buildReviewEmbed(req)}
	components := []discordgo.MessageComponent{}
	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds, Components: &components})
}

func notify(s *discordgo.Session, b *bot.Bot, userID, message string) {
	if err := utils.SendPrivateMessage(s, userID, message); err != nil {
		b.Logger.Debug("direct message not delivered", zap.String("user_id", userID), zap.Error(err))
	}
}

func modalValue(data discordgo.ModalSubmitInteractionData, id string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == id {
				return input.Value
			}
		}
	}
	return ""
}

func buildReviewEmbed(req *model.BadgeRequest) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Badge request #%d", req.ID),
		Description: fmt.Sprintf("Submitted by <@%s> %s", req.UserID, utils.DiscordTime(req.SubmittedAt)),
		Image:       &discordgo.MessageEmbedImage{URL: req.BadgeURL},
		Timestamp:   req.SubmittedAt.Format(time.RFC3339),
	}
	switch req.Status {
	case model.BadgeApproved:
		embed.Color = model.ColorRelease
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Approved by", Value: "<@" + req.ModeratorID + ">"})
	case model.BadgeRejected:
		embed.Color = model.ColorRemoval
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Rejected by", Value: "<@" + req.ModeratorID + ">"},
			&discordgo.MessageEmbedField{Name: "Reason", Value: req.Reason})
	default:
		embed.Color = model.ColorInfo
	}
	return embed
}

func buildReviewComponents(id int64) []discordgo.MessageComponent {
	suffix := strconv.FormatInt(id, 10)
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: ApprovePrefix + suffix},
				discordgo.Button{Label: "Reject", Style: discordgo.DangerButton, CustomID: RejectPrefix + suffix},
			},
		},
	}
}

func buildStatusEmbed(requests []model.BadgeRequest) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "Your badge requests", Color: model.ColorInfo}
	if len(requests) > statusListLimit {
		requests = requests[:statusListLimit]
	}
	for _, r := range requests {
		value := fmt.Sprintf("%s · submitted %s", r.Status, utils.DiscordTime(r.SubmittedAt))
		if r.Status == model.BadgeRejected && r.Reason != "" {
			value += "\nReason: " + r.Reason
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d", r.ID),
			Value: value,
		})
	}
	return embed
}
