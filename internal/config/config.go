package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	GameTTL  time.Duration `env:"GAME_TTL" envDefault:"24h"`
	SeedDir  string        `env:"SEED_DIR" envDefault:"data/worlds"`

	// JournalPath is the SQLite command journal. Empty disables it.
	JournalPath string `env:"JOURNAL_PATH" envDefault:"data/journal.db"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMMock    bool   `env:"LLM_MOCK" envDefault:"false"`

	KeyframeInterval int           `env:"KEYFRAME_INTERVAL" envDefault:"10"`
	HistoryMax       int           `env:"HISTORY_MAX" envDefault:"50"`
	HistoryCompact   bool          `env:"HISTORY_COMPACT" envDefault:"false"`
	TickCandidates   int           `env:"TICK_CANDIDATES" envDefault:"25"`
	TickInterval     time.Duration `env:"TICK_INTERVAL" envDefault:"0"`

	// LockTTL must outlive one planner call; the lock is refreshed every
	// third of it while a request runs.
	LockTTL  time.Duration `env:"LOCK_TTL" envDefault:"2m"`
	LockWait time.Duration `env:"LOCK_WAIT" envDefault:"5s"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel slog.Level
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.KeyframeInterval < 1 {
		errs = append(errs, fmt.Errorf("KEYFRAME_INTERVAL must be at least 1, got %d", c.KeyframeInterval))
	}
	if c.HistoryMax < 1 {
		errs = append(errs, fmt.Errorf("HISTORY_MAX must be at least 1, got %d", c.HistoryMax))
	}
	if c.TickCandidates < 1 {
		errs = append(errs, fmt.Errorf("TICK_CANDIDATES must be at least 1, got %d", c.TickCandidates))
	}
	if c.TickInterval < 0 {
		errs = append(errs, errors.New("TICK_INTERVAL cannot be negative"))
	}
	if c.LockTTL < time.Second {
		errs = append(errs, fmt.Errorf("LOCK_TTL must be at least 1s, got %v", c.LockTTL))
	}
	if c.LockWait < 0 {
		errs = append(errs, errors.New("LOCK_WAIT cannot be negative"))
	}
	if c.GameTTL < 0 {
		errs = append(errs, errors.New("GAME_TTL cannot be negative"))
	}
	if !c.LLMMock && c.LLMAPIKey == "" && c.LLMBaseURL == "" {
		errs = append(errs, errors.New("LLM_API_KEY or LLM_BASE_URL is required unless LLM_MOCK is set"))
	}
	return errors.Join(errs...)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
