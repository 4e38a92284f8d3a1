package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"moderation-bot/badge"
	"moderation-bot/gateway"
	"moderation-bot/identity"
	"moderation-bot/metrics"
	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils"
	"moderation-bot/utils/database/sanctions"
	"moderation-bot/workflow"
)

// requestTimeout bounds the work done for one interaction or gateway event.
const requestTimeout = 15 * time.Second

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Logger             *zap.Logger
	Ops                *utils.OpsLog
	Metrics            *metrics.Metrics
	Store              *sanctions.Store
	Gateway            *gateway.Discord
	Moderator          *moderation.Moderator
	Profiles           *identity.ProfileChecker
	Verifier           *identity.Verifier
	Badges             *badge.Service
	Flows              *workflow.Registry
	Guard              *utils.ActionGuard
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand

	// Restart replaces the running process; set by the serve command.
	Restart func() error

	scheduler *Scheduler
	browser   *identity.BrowserFetcher

	mu      sync.RWMutex
	baseCtx context.Context
}

// New wires every component around a fresh Discord session. The session is not opened.
func New(cfg *model.Config, store *sanctions.Store, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	rules := moderation.DefaultRuleBook()
	if cfg.LaddersFile != "" {
		rules, err = moderation.LoadRuleBook(cfg.LaddersFile)
		if err != nil {
			return nil, err
		}
	}

	ops := utils.NewOpsLog(cfg.LogWebhookURL, nil, logger.Named("ops"))
	gw := gateway.NewDiscord(dg)

	b := &Bot{
		Session:   dg,
		Config:    cfg,
		Logger:    logger,
		Ops:       ops,
		Metrics:   m,
		Store:     store,
		Gateway:   gw,
		Flows:     workflow.NewRegistry(),
		Guard:     utils.NewActionGuard(),
		Badges:    badge.NewService(store, badge.WithMetrics(m)),
		baseCtx:   context.Background(),
		Moderator: moderation.New(store, gw, cfg.Guild,
			moderation.WithRuleBook(rules),
			moderation.WithLogger(logger.Named("moderation")),
			moderation.WithMetrics(m)),
	}

	var fetcher identity.Fetcher
	switch cfg.Profile.Fetcher {
	case "browser":
		b.browser = &identity.BrowserFetcher{}
		fetcher = b.browser
	default:
		fetcher = &identity.HTTPFetcher{Client: utils.NewHTTPClient(cfg.Profile.Timeout), UserAgent: "moderation-bot"}
	}
	b.Profiles = identity.NewProfileChecker(fetcher, cfg.Profile.BaseURL, cfg.Profile.NotFoundMarker,
		identity.WithTimeout(cfg.Profile.Timeout),
		identity.WithTokenElement(cfg.Profile.TokenElement),
		identity.WithCheckerLogger(logger.Named("identity")),
		identity.WithOpsReporter(ops),
		identity.WithCheckerMetrics(m))

	b.Verifier, err = identity.NewVerifier(b.Profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to create verifier: %w", err)
	}

	b.scheduler = NewScheduler(b)
	return b, nil
}

// RequestContext returns a context for handling one event. It ends with the bot.
func (b *Bot) RequestContext() (context.Context, context.CancelFunc) {
	b.mu.RLock()
	base := b.baseCtx
	b.mu.RUnlock()
	return context.WithTimeout(base, requestTimeout)
}

// ReportFailure records an unexpected error in the log and the ops channel.
func (b *Bot) ReportFailure(module, operation string, err error) {
	b.Logger.Error("operation failed",
		zap.String("module", module),
		zap.String("operation", operation),
		zap.Error(err))
	b.Ops.Error(module, operation, err.Error())
}

// Close stops background work and releases external resources.
func (b *Bot) Close() {
	b.Logger.Info("gracefully shutting down")
	b.scheduler.Stop()
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			b.Logger.Warn("failed to close browser", zap.Error(err))
		}
	}
	if err := b.Session.Close(); err != nil {
		b.Logger.Warn("failed to close session", zap.Error(err))
	}
}
