package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	Token            string
	TutorID          int64
	Timezone         string
	DatabaseURL      string
	SSLMode          string
	ReminderInterval time.Duration

	Location *time.Location
}

// Load reads configuration from the environment, falling back to a local
// .env file if one exists.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("TIMEZONE", "Europe/Moscow")
	v.SetDefault("DATABASE_SSLMODE", "require")
	v.SetDefault("REMINDER_INTERVAL", "5m")

	cfg := &Config{
		Token:            v.GetString("TELEGRAM_BOT_TOKEN"),
		TutorID:          v.GetInt64("TUTOR_ID"),
		Timezone:         v.GetString("TIMEZONE"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		SSLMode:          v.GetString("DATABASE_SSLMODE"),
		ReminderInterval: v.GetDuration("REMINDER_INTERVAL"),
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.ReminderInterval <= 0 {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// DSN returns the database URL with the configured sslmode appended unless
// the URL already carries one.
func (c *Config) DSN() string {
	if strings.Contains(c.DatabaseURL, "sslmode=") || c.SSLMode == "" {
		return c.DatabaseURL
	}
	sep := "?"
	if strings.Contains(c.DatabaseURL, "?") {
		sep = "&"
	}
	return c.DatabaseURL + sep + "sslmode=" + c.SSLMode
}
