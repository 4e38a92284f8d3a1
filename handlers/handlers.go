package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/bot"
	"moderation-bot/handlers/admin"
	"moderation-bot/handlers/punish"
	"moderation-bot/handlers/registration"
	"moderation-bot/handlers/ticket"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			punish.HandleWarnCommand(s, i, b)
		},
		"user": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			punish.HandleUserCommand(s, i, b)
		},
		"warnlist": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			punish.HandleWarnListCommand(s, i, b)
		},
		"unwarn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			punish.HandleUnwarnCommand(s, i, b)
		},
		"unjail": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			punish.HandleUnjailCommand(s, i, b)
		},
		"kayit": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			registration.HandleRegisterCommand(s, i, b)
		},
		"ticketsistem": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			ticket.HandleTicketCommand(s, i, b)
		},
		"restart": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleRestart(s, i, b)
		},
		"sysinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleSystemInfo(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Logger.Info("logged in",
			zap.String("user", s.State.User.Username),
			zap.Int("guilds", len(r.Guilds)))
		ctx, cancel := b.RequestContext()
		defer cancel()
		ticket.RestoreReviews(ctx, s, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		ticket.HandleMessage(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		handleMemberJoin(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		handleMemberLeave(s, m, b)
	})
}
