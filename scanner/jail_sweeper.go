package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"moderation-bot/moderation"
)

// DefaultSweepInterval is how often expired jails are reconciled.
const DefaultSweepInterval = time.Minute

// JailSweeper releases jails that have run out.
type JailSweeper interface {
	Sweep(ctx context.Context, now time.Time) (moderation.SweepReport, error)
}

// StartJailSweeper sweeps once immediately, so jails that expired while the bot
// was down are released on startup, then again on every tick until ctx is done.
// The returned channel is closed when the goroutine exits.
func StartJailSweeper(ctx context.Context, sweeper JailSweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		RunJailSweep(ctx, sweeper, time.Now(), logger)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				RunJailSweep(ctx, sweeper, now, logger)
			}
		}
	}()
	return done
}

// RunJailSweep performs a single pass and logs its outcome. Errors never stop the loop.
func RunJailSweep(ctx context.Context, sweeper JailSweeper, now time.Time, logger *zap.Logger) moderation.SweepReport {
	report, err := sweeper.Sweep(ctx, now)
	if err != nil {
		logger.Error("jail sweep failed", zap.Error(err))
		return report
	}
	if report.Released+report.Skipped+report.Failed > 0 {
		logger.Info("jail sweep finished",
			zap.Int("released", report.Released),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}
	return report
}
