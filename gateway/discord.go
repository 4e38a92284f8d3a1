// Package gateway adapts a discordgo session to the moderation core.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
	"moderation-bot/moderation"
)

// Discord implements moderation.Gateway over the Discord REST API.
type Discord struct {
	session *discordgo.Session
}

var _ moderation.Gateway = (*Discord)(nil)

func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{session: s}
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*model.Member, error) {
	m, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, lookupError(err)
	}
	return ToMember(guildID, m), nil
}

func (d *Discord) BotMember(ctx context.Context, guildID string) (*model.Member, error) {
	if d.session.State == nil || d.session.State.User == nil {
		return nil, errors.New("session is not ready")
	}
	return d.Member(ctx, guildID, d.session.State.User.ID)
}

func (d *Discord) GuildRoles(ctx context.Context, guildID string) ([]model.Role, error) {
	roles, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, lookupError(err)
	}
	out := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, model.Role{ID: r.ID, Name: r.Name, Position: r.Position, Managed: r.Managed})
	}
	return out, nil
}

func (d *Discord) SetMemberRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	roles := append([]string{}, roleIDs...)
	_, err := d.session.GuildMemberEdit(guildID, userID, &discordgo.GuildMemberParams{Roles: &roles},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return actionError(err)
}

func (d *Discord) AddRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	for _, id := range roleIDs {
		err := d.session.GuildMemberRoleAdd(guildID, userID, id, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return fmt.Errorf("add role %s: %w", id, actionError(err))
		}
	}
	return nil
}

func (d *Discord) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	for _, id := range roleIDs {
		err := d.session.GuildMemberRoleRemove(guildID, userID, id, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return fmt.Errorf("remove role %s: %w", id, actionError(err))
		}
	}
	return nil
}

func (d *Discord) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	until = until.UTC()
	err := d.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return actionError(err)
}

func (d *Discord) KickMember(ctx context.Context, guildID, userID, reason string) error {
	err := d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	return actionError(err)
}

func (d *Discord) BanMember(ctx context.Context, guildID, userID, reason string) error {
	err := d.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
	return actionError(err)
}

func (d *Discord) SendLog(ctx context.Context, channelID string, entry model.LogEntry) error {
	_, err := d.session.ChannelMessageSendEmbed(channelID, ToEmbed(entry), discordgo.WithContext(ctx))
	return actionError(err)
}

// ToMember converts a discordgo member. The guild ID is passed in because
// REST responses leave Member.GuildID empty.
func ToMember(guildID string, m *discordgo.Member) *model.Member {
	member := &model.Member{
		GuildID:  guildID,
		RoleIDs:  append([]string(nil), m.Roles...),
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Username = m.User.Username
		member.Bot = m.User.Bot
		member.DisplayName = m.DisplayName()
		member.AvatarURL = m.AvatarURL("256")
	}
	return member
}

// ToEmbed renders a log entry as a Discord embed.
func ToEmbed(entry model.LogEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       entry.Title,
		Description: entry.Description,
		Color:       entry.Color,
	}
	if !entry.Timestamp.IsZero() {
		embed.Timestamp = entry.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range entry.Fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: value, Inline: f.Inline})
	}
	return embed
}

// lookupError treats an unreachable guild the same as a missing member.
func lookupError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %v", moderation.ErrNotFound, err)
		}
	}
	return statusError(restErr, err)
}

func actionError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %v", moderation.ErrCapabilityDenied, err)
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser, discordgo.ErrCodeUnknownGuild:
			return fmt.Errorf("%w: %v", moderation.ErrNotFound, err)
		}
	}
	return statusError(restErr, err)
}

func statusError(restErr *discordgo.RESTError, err error) error {
	if restErr.Response == nil {
		return err
	}
	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", moderation.ErrCapabilityDenied, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", moderation.ErrNotFound, err)
	}
	return err
}
