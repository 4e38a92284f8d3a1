package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

// Load reads .env from the working directory, so each test runs in a temp dir.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BOT_TOKEN", "token-1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "token-1", cfg.BotToken)
	assert.Equal(t, "data/moderation.db", cfg.DatabasePath)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 3*time.Second, cfg.Profile.Timeout)
	assert.Equal(t, "http", cfg.Profile.Fetcher)
	assert.False(t, cfg.Debug)
	require.NoError(t, Validate(cfg))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("moderator_role_id: from-file\njail_role_id: jail-file\nsweep_interval: 30s\n"), 0o600))
	t.Setenv("BOT_TOKEN", "token-1")
	t.Setenv("MODERATOR_ROLE_ID", "from-env")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Guild.ModeratorRoleID)
	assert.Equal(t, "jail-file", cfg.Guild.JailRoleID)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.True(t, cfg.Debug)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_CHANNEL_ID=chan-9\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_CHANNEL_ID") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "chan-9", cfg.Guild.LogChannelID)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(&model.Config{SweepInterval: time.Minute}), ErrMissingToken)

	bad := &model.Config{BotToken: "x", SweepInterval: time.Minute, Profile: model.ProfileSettings{Fetcher: "curl"}}
	assert.Error(t, Validate(bad))

	zero := &model.Config{BotToken: "x"}
	assert.Error(t, Validate(zero))
}
