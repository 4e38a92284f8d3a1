package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"moderation-bot/bot"
	"moderation-bot/metrics"
	"moderation-bot/model"
	"moderation-bot/scanner"
	"moderation-bot/utils"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			color.Green("database %s is up to date", cfg.DatabasePath)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Release every expired jail once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			b, err := bot.New(cfg, store, logger, metrics.New())
			if err != nil {
				return err
			}
			report := scanner.RunJailSweep(cmd.Context(), b.Moderator, time.Now(), logger)
			fmt.Printf("released %s, skipped %s, failed %s\n",
				color.GreenString("%d", report.Released),
				color.YellowString("%d", report.Skipped),
				color.RedString("%d", report.Failed))
			return nil
		},
	}
}

func jailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jails",
		Short: "List active and expired jails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			now := time.Now()
			active, err := store.ListActiveJails(cmd.Context())
			if err != nil {
				return err
			}
			expired, err := store.ListExpiredJails(cmd.Context(), now)
			if err != nil {
				return err
			}

			color.New(color.Bold).Printf("Active jails (%d)\n", len(active))
			for _, j := range active {
				printJail(j, color.GreenString("%s left", utils.FormatClock(j.Remaining(now))))
			}
			color.New(color.Bold).Printf("Expired, awaiting sweep (%d)\n", len(expired))
			for _, j := range expired {
				printJail(j, color.RedString("expired %s ago", utils.FormatClock(now.Sub(j.EndTime))))
			}
			return nil
		},
	}
}

func printJail(j model.Jail, state string) {
	fmt.Printf("  #%-5d guild=%s user=%s roles=%d  %s\n", j.ID, j.GuildID, j.UserID, len(j.OriginalRoles), state)
}
