package handlers

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
	"moderation-bot/gateway"
	"moderation-bot/model"
)

func handleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	if m.Member == nil || m.User == nil {
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	if _, err := b.Moderator.ReapplyJail(ctx, m.GuildID, m.User.ID); err != nil {
		b.Logger.Warn("failed to reapply jail on join",
			zap.String("guild_id", m.GuildID),
			zap.String("user_id", m.User.ID),
			zap.Error(err))
	}
	postMembershipLog(b, memberJoinEntry(m.User, time.Now()))
}

func handleMemberLeave(s *discordgo.Session, m *discordgo.GuildMemberRemove, b *bot.Bot) {
	if m.Member == nil || m.User == nil {
		return
	}
	postMembershipLog(b, memberLeaveEntry(m.User, time.Now()))
}

func postMembershipLog(b *bot.Bot, entry model.LogEntry) {
	channelID := b.Config.Guild.LogChannelID
	if channelID == "" {
		return
	}
	if _, err := b.Session.ChannelMessageSendEmbed(channelID, gateway.ToEmbed(entry)); err != nil {
		b.Logger.Debug("membership log not posted", zap.Error(err))
	}
}

func memberJoinEntry(u *discordgo.User, now time.Time) model.LogEntry {
	created, _ := discordgo.SnowflakeTimestamp(u.ID)
	fields := []model.LogField{
		{Name: "Member", Value: fmt.Sprintf("<@%s> (`%s`)", u.ID, u.ID)},
	}
	if !created.IsZero() {
		fields = append(fields, model.LogField{Name: "Account created", Value: fmt.Sprintf("<t:%d:R>", created.Unix()), Inline: true})
	}
	return model.LogEntry{
		Title:     "Member joined",
		Color:     model.ColorRelease,
		Fields:    fields,
		Timestamp: now,
	}
}

func memberLeaveEntry(u *discordgo.User, now time.Time) model.LogEntry {
	return model.LogEntry{
		Title:     "Member left",
		Color:     model.ColorRemoval,
		Fields:    []model.LogField{{Name: "Member", Value: fmt.Sprintf("<@%s> (`%s`)", u.ID, u.ID)}},
		Timestamp: now,
	}
}
