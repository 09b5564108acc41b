package client

import (
	"errors"
	"testing"
	"time"

	"github.com/void-terminal/voidterm/internal/model"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{BaseURL: "ws://localhost:8080", TerminalID: "t1"}.withDefaults()

	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", DefaultMaxRetries, cfg.MaxRetries)
	}
	if cfg.ReconnectInterval != DefaultReconnectInterval {
		t.Errorf("expected reconnect interval %s, got %s", DefaultReconnectInterval, cfg.ReconnectInterval)
	}
	if cfg.ConnectTimeout != DefaultConnectTimeout {
		t.Errorf("expected connect timeout %s, got %s", DefaultConnectTimeout, cfg.ConnectTimeout)
	}
	if cfg.MaxHistory != DefaultMaxHistory {
		t.Errorf("expected max history %d, got %d", DefaultMaxHistory, cfg.MaxHistory)
	}
	if cfg.Sender != "t1" {
		t.Errorf("expected sender to default to terminal ID, got %q", cfg.Sender)
	}
	if !cfg.autoReconnect() {
		t.Error("expected auto-reconnect enabled by default")
	}
}

func TestConfig_PartialOverride(t *testing.T) {
	cfg := Config{
		BaseURL:    "ws://localhost:8080",
		TerminalID: "t1",
		MaxRetries: 7,
		Sender:     "observer",
	}.withDefaults()

	if cfg.MaxRetries != 7 {
		t.Errorf("expected explicit max retries 7, got %d", cfg.MaxRetries)
	}
	if cfg.Sender != "observer" {
		t.Errorf("expected explicit sender, got %q", cfg.Sender)
	}
	// Unspecified fields still take their defaults.
	if cfg.ReconnectInterval != DefaultReconnectInterval {
		t.Errorf("expected default reconnect interval, got %s", cfg.ReconnectInterval)
	}
}

func TestConfig_NegativeMaxRetriesDisablesRetries(t *testing.T) {
	cfg := Config{BaseURL: "ws://localhost:8080", TerminalID: "t1", MaxRetries: -1}.withDefaults()

	if cfg.MaxRetries != 0 {
		t.Errorf("expected max retries 0, got %d", cfg.MaxRetries)
	}
	if !cfg.autoReconnect() {
		t.Error("expected auto-reconnect to stay enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{BaseURL: "ws://localhost:8080", TerminalID: "t1"}.withDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing terminal ID", func(c *Config) { c.TerminalID = "" }},
		{"missing base URL", func(c *Config) { c.BaseURL = "" }},
		{"negative reconnect interval", func(c *Config) { c.ReconnectInterval = -time.Second }},
		{"negative connect timeout", func(c *Config) { c.ConnectTimeout = -time.Second }},
		{"negative max history", func(c *Config) { c.MaxHistory = -1 }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, model.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}

func TestConfig_EndpointURL(t *testing.T) {
	cfg := Config{BaseURL: "ws://localhost:8080/", TerminalID: "panel-3"}
	if got := cfg.endpointURL(); got != "ws://localhost:8080/ws/panel-3" {
		t.Errorf("unexpected endpoint URL: %s", got)
	}
}
