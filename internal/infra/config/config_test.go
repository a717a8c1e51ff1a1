package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TELEGRAM_TOKEN", "DATABASE_URL", "REDIS_URL", "PENDING_PROMPT_TTL", "LOG_LEVEL",
		"ENVIRONMENT", "CRON_SPEC_NOTICES", "NOTICE_WINDOW", "BOT_ABOUT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "./data/telegramschoolbot.db", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.PendingPromptTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0 * * * *", cfg.CronSpecNotices)
	assert.Equal(t, time.Hour, cfg.NoticeWindow)
	assert.Equal(t, defaultAbout, cfg.About)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/school")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PENDING_PROMPT_TTL", "90s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("CRON_SPEC_NOTICES", "*/30 * * * *")
	t.Setenv("NOTICE_WINDOW", "30m")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("BOT_ABOUT", "Bot del liceo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/school", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 90*time.Second, cfg.PendingPromptTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "*/30 * * * *", cfg.CronSpecNotices)
	assert.Equal(t, 30*time.Minute, cfg.NoticeWindow)
	assert.Empty(t, cfg.MetricsAddr, "an explicitly empty METRICS_ADDR disables the listener")
	assert.Equal(t, "Bot del liceo", cfg.About)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN")

	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("PENDING_PROMPT_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "PENDING_PROMPT_TTL")

	t.Setenv("PENDING_PROMPT_TTL", "")
	t.Setenv("NOTICE_WINDOW", "-1h")
	_, err = Load()
	assert.ErrorContains(t, err, "NOTICE_WINDOW")
}

func TestLoadForImportSkipsToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "/tmp/school.db")

	cfg, err := LoadForImport()
	require.NoError(t, err)
	assert.Empty(t, cfg.TelegramToken)
	assert.Equal(t, "/tmp/school.db", cfg.DatabaseURL)
}
