package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"moderation-bot/scanner"
)

// pruneInterval is how often in-memory workflow state is cleaned up.
const pruneInterval = 30 * time.Second

// Scheduler manages all background tasks.
type Scheduler struct {
	bot    *Bot
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{bot: bot}
}

// Start begins all scheduled tasks. They stop when ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	logger := s.bot.Logger.Named("scheduler")

	sweeperDone := scanner.StartJailSweeper(ctx, s.bot.Moderator, s.bot.Config.SweepInterval, logger)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		<-sweeperDone
	}()
	go func() {
		defer s.wg.Done()
		s.bot.Flows.Run(ctx, pruneInterval)
	}()
	go s.pruneState(ctx, logger)
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.bot.Logger.Info("stopping scheduler")
		s.cancel()
		s.wg.Wait()
		s.bot.Logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) pruneState(ctx context.Context, logger *zap.Logger) {
	defer s.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			codes := s.bot.Verifier.Prune()
			windows := s.bot.Badges.Prune()
			if codes+windows > 0 {
				logger.Debug("pruned expired state",
					zap.Int("registration_codes", codes),
					zap.Int("badge_windows", windows))
			}
		}
	}
}
