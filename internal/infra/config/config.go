package config

import (
	"fmt"
	"os"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const defaultAbout = "Ciao! Sono il bot degli orari della scuola: chiedimi l'orario di una classe, di un prof o di un'aula."

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string
	DatabaseURL      string
	RedisURL         string        // Empty keeps pending prompts in memory
	PendingPromptTTL time.Duration // How long a category prompt waits for its answer
	LogLevel         string
	Environment      string
	CronSpecNotices  string
	NoticeWindow     time.Duration
	MetricsAddr      string // Empty disables the metrics listener
	About            string // First line of the /start message
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	return load(true)
}

// LoadForImport reads the same configuration without requiring a bot token.
func LoadForImport() (*AppConfig, error) {
	return load(false)
}

func load(requireToken bool) (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" && requireToken {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "./data/telegramschoolbot.db"
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.PendingPromptTTL, err = durationEnv("PENDING_PROMPT_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecNotices = os.Getenv("CRON_SPEC_NOTICES")
	if cfg.CronSpecNotices == "" {
		cfg.CronSpecNotices = "0 * * * *" // Default: top of every hour
	}

	cfg.NoticeWindow, err = durationEnv("NOTICE_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}

	metricsAddr, ok := os.LookupEnv("METRICS_ADDR")
	if !ok {
		metricsAddr = ":9090"
	}
	cfg.MetricsAddr = metricsAddr

	cfg.About = os.Getenv("BOT_ABOUT")
	if cfg.About == "" {
		cfg.About = defaultAbout
	}

	return cfg, nil
}

// IsProduction reports whether logs should be machine readable.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}
