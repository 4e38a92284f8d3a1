package punish

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils"
)

const warningsPerPage = 5

// jailDurations are the choices offered by the jail selector.
var jailDurations = []struct {
	Label string
	Value string
}{
	{Label: "1 hour", Value: "1h"},
	{Label: "6 hours", Value: "6h"},
	{Label: "1 day", Value: "1d"},
}

func memberName(m *model.Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

func buildWarnResultEmbed(result *moderation.WarnResult, category model.Category) *discordgo.MessageEmbed {
	action := "Warning"
	color := model.ColorWarn
	switch result.Action {
	case moderation.ActionTimeout:
		action = result.Decision.Description
		color = model.ColorTimeout
	case moderation.ActionError:
		action = result.Decision.Description + " could not be applied"
		color = model.ColorError
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Warning issued",
		Description: fmt.Sprintf("<@%s> was warned.", result.Target.UserID),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Category", Value: category.Label(), Inline: true},
			{Name: "Occurrence", Value: strconv.Itoa(result.Occurrence), Inline: true},
			{Name: "Action", Value: action, Inline: true},
			{Name: "Active warnings", Value: strconv.Itoa(result.TotalActive), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Warning ID: %d", result.WarningID),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if result.Escalated {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Escalation",
			Value: fmt.Sprintf("Automatic %s timeout applied.", utils.FormatDuration(moderation.EscalationTimeout)),
		})
	}
	return embed
}

func buildCategorySelect(customID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(model.Categories))
	for _, c := range model.Categories {
		options = append(options, discordgo.SelectMenuOption{
			Label: c.Label,
			Value: string(c.Key),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: "Select the violation",
					Options:     options,
				},
			},
		},
	}
}

func buildJailSelect(customID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(jailDurations))
	for _, d := range jailDurations {
		options = append(options, discordgo.SelectMenuOption{Label: d.Label, Value: d.Value})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: "Select the jail duration",
					Options:     options,
				},
			},
		},
	}
}

func buildUserSummaryEmbed(summary *moderation.UserSummary, now time.Time) *discordgo.MessageEmbed {
	m := summary.Member
	embed := &discordgo.MessageEmbed{
		Title: memberName(m),
		Color: model.ColorInfo,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.AvatarURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("<@%s> (`%s`)", m.UserID, m.UserID)},
			{Name: "Active warnings", Value: strconv.Itoa(len(summary.ActiveWarnings)), Inline: true},
		},
	}
	if !m.JoinedAt.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Joined", Value: utils.DiscordTime(m.JoinedAt), Inline: true,
		})
	}
	jail := "Not jailed"
	if summary.Jail != nil {
		jail = fmt.Sprintf("Jailed, %s remaining", utils.FormatClock(summary.Jail.Remaining(now)))
		embed.Color = model.ColorJail
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Jail", Value: jail, Inline: true})
	return embed
}

func buildUserPanelComponents(customID func(action string) string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Mute", Style: discordgo.SecondaryButton, CustomID: customID("mute")},
				discordgo.Button{Label: "Jail", Style: discordgo.SecondaryButton, CustomID: customID("jail")},
				discordgo.Button{Label: "Kick", Style: discordgo.DangerButton, CustomID: customID("kick")},
				discordgo.Button{Label: "Ban", Style: discordgo.DangerButton, CustomID: customID("ban")},
			},
		},
	}
}

func buildWarnListEmbed(targetID string, warnings []model.Warning, page int) (*discordgo.MessageEmbed, int) {
	page, start, end := utils.PageBounds(page, len(warnings), warningsPerPage)
	pages := utils.PageCount(len(warnings), warningsPerPage)

	embed := &discordgo.MessageEmbed{
		Title:       "Active warnings",
		Description: fmt.Sprintf("<@%s> has %d active warning(s).", targetID, len(warnings)),
		Color:       model.ColorWarn,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", page, pages),
		},
	}
	for _, w := range warnings[start:end] {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%d · %s", w.ID, w.Category.Label()),
			Value: fmt.Sprintf("%s\nBy <@%s> · issued %s · expires %s",
				truncate(w.Reason, 200), w.ModeratorID, utils.DiscordTime(w.IssuedAt), utils.DiscordTime(w.ExpiresAt)),
		})
	}
	return embed, page
}

func buildUnwarnSelect(customID string, warnings []model.Warning) []discordgo.MessageComponent {
	if len(warnings) > 25 {
		warnings = warnings[:25]
	}
	options := make([]discordgo.SelectMenuOption, 0, len(warnings))
	for _, w := range warnings {
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("#%d · %s", w.ID, w.Category.Label()),
			Description: truncate(w.Reason, 100),
			Value:       strconv.FormatInt(w.ID, 10),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: "Select the warning to remove",
					Options:     options,
				},
			},
		},
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
