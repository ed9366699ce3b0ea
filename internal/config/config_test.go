package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rounds != 100 || cfg.FPS != 60 || cfg.SymbolHeight != 64 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.FlushSchedule != "@every 10s" {
		t.Errorf("Unexpected flush schedule %q", cfg.FlushSchedule)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BANDIT_ROUNDS", "7")
	t.Setenv("BANDIT_RULE", "fruit_frenzy.yaml")
	t.Setenv("BANDIT_HTTP_ADDR", "")
	t.Setenv("BANDIT_DEV_LOG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rounds != 7 || cfg.Rule != "fruit_frenzy.yaml" || cfg.HTTPAddr != "" || !cfg.DevLog {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if _, err := cfg.Logger(); err != nil {
		t.Errorf("Logger failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DBPath:        ":memory:",
			FPS:           60,
			SymbolHeight:  64,
			FlushSchedule: "@every 1m",
			LogLevel:      "debug",
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative rounds", func(c *Config) { c.Rounds = -1 }, "ROUNDS"},
		{"zero fps", func(c *Config) { c.FPS = 0 }, "FPS"},
		{"odd height", func(c *Config) { c.SymbolHeight = 60 }, "SYMBOL_HEIGHT"},
		{"bad addr", func(c *Config) { c.HTTPAddr = "nope" }, "HTTP_ADDR"},
		{"bad schedule", func(c *Config) { c.FlushSchedule = "whenever" }, "FLUSH_SCHEDULE"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"negative fade", func(c *Config) { c.TransitionSeconds = -1 }, "TRANSITION_SECONDS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
