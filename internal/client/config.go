package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/void-terminal/voidterm/internal/model"
)

// Defaults applied by Config.withDefaults for fields left at their zero value.
const (
	DefaultMaxRetries        = 3
	DefaultReconnectInterval = 5 * time.Second
	DefaultConnectTimeout    = 5 * time.Second
	DefaultMaxHistory        = 1000
)

// Config holds construction-time settings for a Terminal. It is immutable
// for the lifetime of the instance. Fields left at their zero value take the
// documented default; explicitly set fields override individually.
type Config struct {
	// BaseURL is the server root, e.g. "ws://localhost:8080". The endpoint
	// for a terminal is {BaseURL}/ws/{TerminalID}.
	BaseURL string

	// TerminalID identifies the logical panel this terminal is bound to.
	TerminalID string

	// Sender is the identity stamped on outbound messages.
	// Defaults to TerminalID.
	Sender string

	// DisableAutoReconnect turns off automatic reconnection after transport
	// failures. Reconnection is enabled by default.
	DisableAutoReconnect bool

	// MaxRetries caps consecutive automatic reconnection attempts before the
	// connection is marked failed. Zero means the default (3); a negative
	// value disables automatic retries without turning off auto-reconnect.
	MaxRetries int

	// ReconnectInterval is the fixed delay between automatic reconnection
	// attempts. Zero means the default (5s).
	ReconnectInterval time.Duration

	// ConnectTimeout bounds a single connection attempt. Zero means the
	// default (5s).
	ConnectTimeout time.Duration

	// MaxHistory caps the number of retained messages; the oldest entry is
	// evicted first once the cap is exceeded. Zero means the default (1000).
	MaxHistory int
}

// withDefaults returns a copy of the config with zero-value fields replaced
// by their documented defaults.
func (c Config) withDefaults() Config {
	if c.Sender == "" {
		c.Sender = c.TerminalID
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.ReconnectInterval == 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = DefaultMaxHistory
	}
	return c
}

// Validate checks the config after defaults have been applied.
func (c Config) Validate() error {
	if c.TerminalID == "" {
		return fmt.Errorf("%w: terminal ID is required", model.ErrInvalidConfig)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", model.ErrInvalidConfig)
	}
	if c.ReconnectInterval < 0 {
		return fmt.Errorf("%w: reconnect interval must be >= 0", model.ErrInvalidConfig)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("%w: connect timeout must be >= 0", model.ErrInvalidConfig)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("%w: max history must be >= 0", model.ErrInvalidConfig)
	}
	return nil
}

// endpointURL builds the WebSocket endpoint for this terminal.
func (c Config) endpointURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/ws/" + c.TerminalID
}

// autoReconnect reports whether automatic reconnection is enabled.
func (c Config) autoReconnect() bool {
	return !c.DisableAutoReconnect
}
