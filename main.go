package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moderation-bot/config"
	"moderation-bot/model"
	"moderation-bot/utils/database/sanctions"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "moderation-bot",
		Short:         "Community moderation bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	root.AddCommand(serveCmd(), migrateCmd(), sweepCmd(), jailsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves and validates the configuration. needToken is false for
// commands that never talk to Discord.
func loadConfig(needToken bool) (*model.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil && (needToken || !errors.Is(err, config.ErrMissingToken)) {
		return nil, err
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func openStore(cfg *model.Config) (*sanctions.Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return sanctions.Open(cfg.DatabasePath)
}
