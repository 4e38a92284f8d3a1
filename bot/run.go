package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"moderation-bot/commands"
)

// Run opens the session, registers the application commands and blocks until
// ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.baseCtx = ctx
	b.mu.Unlock()

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	defer b.Close()

	cmds := commands.GenerateCommands()
	b.Logger.Info("registering commands", zap.Int("count", len(cmds)))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, "", cmds)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	b.RegisteredCommands = registered

	b.scheduler.Start(ctx)

	b.Logger.Info("bot is now running", zap.String("user", b.Session.State.User.Username))
	b.Ops.Info("System", "Startup", "Bot has started successfully.")
	<-ctx.Done()
	return nil
}
