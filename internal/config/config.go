package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config captures all runtime configuration derived from environment variables.
// The gateway daemon needs everything; the reminder batch job only needs the
// bot token and the database URL (see LoadBatch).
type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	Token             string `envconfig:"TOKEN"`
	WebhookBaseURL    string `envconfig:"URL"`
	DBURL             string `envconfig:"DB_URL"`
	TelegramAPIURL    string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramTimeoutS  int    `envconfig:"TELEGRAM_TIMEOUT_SECS" default:"10"`
	ReadTimeoutSecs   int    `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs  int    `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"`
	IdleTimeoutSecs   int    `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`
	QueueSize         int    `envconfig:"QUEUE_SIZE" default:"256"`
	DBMaxConns        int    `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns        int    `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxIdleSecs     int    `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int    `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int    `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
}

// Load reads configuration for the webhook gateway, applying defaults and
// validating everything the daemon requires before it may serve traffic.
func Load() (Config, error) {
	cfg, err := parse()
	if err != nil {
		return Config{}, err
	}

	if cfg.WebhookBaseURL == "" {
		return Config{}, fmt.Errorf("URL is required")
	}
	if !strings.HasPrefix(cfg.WebhookBaseURL, "http") {
		return Config{}, fmt.Errorf("URL must be an absolute http(s) URL")
	}
	if cfg.QueueSize <= 0 {
		return Config{}, fmt.Errorf("QUEUE_SIZE must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}

	return cfg, nil
}

// LoadBatch reads configuration for the reminder batch job, which talks to the
// database and the platform API but never serves HTTP.
func LoadBatch() (Config, error) {
	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Token == "" {
		return Config{}, fmt.Errorf("TOKEN is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.TelegramAPIURL == "" {
		return Config{}, fmt.Errorf("TELEGRAM_API_URL cannot be empty")
	}
	if cfg.TelegramTimeoutS <= 0 {
		return Config{}, fmt.Errorf("TELEGRAM_TIMEOUT_SECS must be positive")
	}

	return cfg, nil
}
