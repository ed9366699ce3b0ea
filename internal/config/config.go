// Package config loads settings from BANDIT_* environment variables.
package config

import (
	"fmt"
	"net"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prefix is the environment variable prefix.
const Prefix = "BANDIT"

// Config holds every runtime setting.
type Config struct {
	// --- Storage ---
	DBPath string `envconfig:"DB_PATH" default:"pocketbandit.db"`

	// --- Game ---
	// Rule file to select before playing. Empty keeps the persisted choice.
	Rule              string  `envconfig:"RULE"`
	RuleDir           string  `envconfig:"RULE_DIR"`
	Rounds            int     `envconfig:"ROUNDS" default:"100"`
	FPS               int     `envconfig:"FPS" default:"60"`
	Fast              bool    `envconfig:"FAST" default:"false"`
	TransitionSeconds float64 `envconfig:"TRANSITION_SECONDS" default:"0.5"`
	SymbolHeight      int     `envconfig:"SYMBOL_HEIGHT" default:"64"`
	Script            string  `envconfig:"SCRIPT"`
	ServerSeed        string  `envconfig:"SERVER_SEED"`
	ClientSeed        string  `envconfig:"CLIENT_SEED" default:"pocketbandit"`

	// --- Services ---
	// HTTP status API address; empty disables it.
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:"127.0.0.1:8077"`
	FlushSchedule string `envconfig:"FLUSH_SCHEDULE" default:"@every 10s"`

	// --- Logging ---
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	DevLog   bool   `envconfig:"DEV_LOG" default:"false"`
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.Rounds < 0 {
		return fmt.Errorf("ROUNDS must be >= 0")
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("FPS must be in 1..1000")
	}
	if c.TransitionSeconds < 0 {
		return fmt.Errorf("TRANSITION_SECONDS must be >= 0")
	}
	// Reel velocities are 2, 4 and 8 pixels per tick.
	if c.SymbolHeight <= 0 || c.SymbolHeight%8 != 0 {
		return fmt.Errorf("SYMBOL_HEIGHT must be a positive multiple of 8")
	}
	if c.HTTPAddr != "" {
		if _, _, err := net.SplitHostPort(c.HTTPAddr); err != nil {
			return fmt.Errorf("HTTP_ADDR: %w", err)
		}
	}
	if _, err := cron.ParseStandard(c.FlushSchedule); err != nil {
		return fmt.Errorf("FLUSH_SCHEDULE: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Logger builds the zap logger the config asks for.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.DevLog {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
