package moderation

import (
	"fmt"
	"strconv"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils"
)

func mention(userID string) string {
	return "<@" + userID + ">"
}

func subjectField(target *model.Member) model.LogField {
	name := target.Username
	if name == "" {
		name = target.UserID
	}
	return model.LogField{Name: "Member", Value: fmt.Sprintf("%s (%s)", mention(target.UserID), name), Inline: true}
}

func moderatorField(actorID string) model.LogField {
	return model.LogField{Name: "Moderator", Value: mention(actorID), Inline: true}
}

func warnLogEntry(target *model.Member, actorID string, category model.Category, reason string, result *WarnResult) model.LogEntry {
	entry := model.LogEntry{
		Title: "Warning issued",
		Color: model.ColorWarn,
		Fields: []model.LogField{
			subjectField(target),
			moderatorField(actorID),
			{Name: "Category", Value: category.Label(), Inline: true},
			{Name: "Occurrence", Value: strconv.Itoa(result.Occurrence), Inline: true},
			{Name: "Reason", Value: reason},
		},
	}
	switch result.Action {
	case ActionTimeout:
		entry.Color = model.ColorTimeout
		entry.Fields = append(entry.Fields, model.LogField{Name: "Action", Value: result.Decision.Description})
	case ActionError:
		entry.Color = model.ColorError
		entry.Fields = append(entry.Fields, model.LogField{
			Name:  "Action",
			Value: result.Decision.Description + " could not be applied",
		})
	default:
		entry.Fields = append(entry.Fields, model.LogField{Name: "Action", Value: "Warning"})
	}
	return entry
}

func escalationLogEntry(target *model.Member, actorID string, total int) model.LogEntry {
	return model.LogEntry{
		Title:       "Automatic timeout",
		Description: fmt.Sprintf("%s reached %d active warnings.", mention(target.UserID), total),
		Color:       model.ColorTimeout,
		Fields: []model.LogField{
			subjectField(target),
			moderatorField(actorID),
			{Name: "Category", Value: model.CategoryAutoTimeout.Label(), Inline: true},
			{Name: "Action", Value: utils.FormatDuration(EscalationTimeout) + " timeout"},
		},
	}
}

func jailLogEntry(target *model.Member, jail model.Jail) model.LogEntry {
	return model.LogEntry{
		Title: "Member jailed",
		Color: model.ColorJail,
		Fields: []model.LogField{
			subjectField(target),
			moderatorField(jail.ModeratorID),
			{Name: "Duration", Value: utils.FormatDuration(jail.EndTime.Sub(jail.StartTime)), Inline: true},
			{Name: "Ends", Value: fmt.Sprintf("<t:%d:R>", jail.EndTime.Unix()), Inline: true},
		},
	}
}

func releaseLogEntry(jail model.Jail, actorID string, expired bool) model.LogEntry {
	entry := model.LogEntry{
		Title: "Jail lifted",
		Color: model.ColorRelease,
		Fields: []model.LogField{
			{Name: "Member", Value: mention(jail.UserID), Inline: true},
		},
	}
	if expired {
		entry.Title = "Jail expired"
	} else {
		entry.Fields = append(entry.Fields, moderatorField(actorID))
	}
	entry.Fields = append(entry.Fields, model.LogField{
		Name:  "Restored roles",
		Value: strconv.Itoa(len(jail.OriginalRoles)),
	})
	return entry
}

func actionLogEntry(action Action, target *model.Member, actorID, reason string, length time.Duration) model.LogEntry {
	entry := model.LogEntry{
		Color: model.ColorRemoval,
		Fields: []model.LogField{
			subjectField(target),
			moderatorField(actorID),
			{Name: "Reason", Value: reason},
		},
	}
	switch action {
	case ActionKick:
		entry.Title = "Member kicked"
	case ActionBan:
		entry.Title = "Member banned"
	case ActionTimeout:
		entry.Title = "Member muted"
		entry.Color = model.ColorTimeout
		entry.Fields = append(entry.Fields, model.LogField{Name: "Duration", Value: utils.FormatDuration(length)})
	}
	return entry
}

func unwarnLogEntry(w model.Warning, actorID string) model.LogEntry {
	return model.LogEntry{
		Title: "Warning removed",
		Color: model.ColorRelease,
		Fields: []model.LogField{
			{Name: "Member", Value: mention(w.UserID), Inline: true},
			moderatorField(actorID),
			{Name: "Warning", Value: fmt.Sprintf("#%d %s", w.ID, w.Category.Label())},
			{Name: "Reason", Value: w.Reason},
		},
	}
}

func rejoinLogEntry(jail model.Jail) model.LogEntry {
	return model.LogEntry{
		Title:       "Jail reapplied",
		Description: fmt.Sprintf("%s rejoined while jailed.", mention(jail.UserID)),
		Color:       model.ColorJail,
		Fields: []model.LogField{
			{Name: "Ends", Value: fmt.Sprintf("<t:%d:R>", jail.EndTime.Unix())},
		},
	}
}
