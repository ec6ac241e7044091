// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the tunable constants of every watchdog.
//
// The zero value is not valid, use [DefaultConfig] or [LoadConfig].
type Config struct {
	// FrameFloor is the inter-frame delta below which a frame request is
	// counted as suspiciously fast.
	FrameFloor time.Duration `envconfig:"FRAME_FLOOR" default:"1ms"`
	// FrameRecursionThreshold is the number of consecutive fast frame
	// requests that, once exceeded, are treated as runaway recursion.
	FrameRecursionThreshold int `envconfig:"FRAME_RECURSION_THRESHOLD" default:"100"`
	// FrameDelay is the artificial delay injected to break recursion, and
	// the amount the delivered timestamp is advanced by.
	FrameDelay time.Duration `envconfig:"FRAME_DELAY" default:"16ms"`

	SessionPollInterval time.Duration `envconfig:"SESSION_POLL_INTERVAL" default:"1s"`
	SessionTimeout      time.Duration `envconfig:"SESSION_TIMEOUT" default:"30s"`
	// SessionTarget and SessionMethod name the command sent to the runtime
	// handle, once located.
	SessionTarget string `envconfig:"SESSION_TARGET" default:"GameManager"`
	SessionMethod string `envconfig:"SESSION_METHOD" default:"Initialize"`

	ConnectionPollInterval time.Duration `envconfig:"CONNECTION_POLL_INTERVAL" default:"5s"`
	MaxReconnectAttempts   int           `envconfig:"MAX_RECONNECT_ATTEMPTS" default:"5"`
	ReconnectDelay         time.Duration `envconfig:"RECONNECT_DELAY" default:"2s"`
	// ReconnectWindow bounds how long connection recovery polls for.
	// If zero, MaxReconnectAttempts * ReconnectDelay is used.
	ReconnectWindow time.Duration `envconfig:"RECONNECT_WINDOW"`
	ServerHost      string        `envconfig:"SERVER_HOST" default:"gameserver.dlgame.online"`
	ServerPort      int           `envconfig:"SERVER_PORT" default:"8443"`

	LowFPSThreshold int           `envconfig:"LOW_FPS_THRESHOLD" default:"30"`
	FPSSampleWindow time.Duration `envconfig:"FPS_SAMPLE_WINDOW" default:"1s"`

	LoadingTickInterval time.Duration `envconfig:"LOADING_TICK_INTERVAL" default:"200ms"`
	LoadingFadeDelay    time.Duration `envconfig:"LOADING_FADE_DELAY" default:"1s"`
	LoadingHideDelay    time.Duration `envconfig:"LOADING_HIDE_DELAY" default:"500ms"`

	ReloadPromptDelay time.Duration `envconfig:"RELOAD_PROMPT_DELAY" default:"1s"`

	RecursionPattern       string `envconfig:"RECURSION_PATTERN" default:"PlayerLoop internal function has been called recursively"`
	ManagerNotFoundPattern string `envconfig:"MANAGER_NOT_FOUND_PATTERN" default:"object GameManager not found"`
	ConnectionLostPattern  string `envconfig:"CONNECTION_LOST_PATTERN" default:"SmartFoxServer lost"`
}

// ErrInvalidConfig is wrapped by every error returned by [Config.Validate].
var ErrInvalidConfig = errors.New(`gameshim: invalid config`)

// DefaultConfig returns the stock constants.
func DefaultConfig() Config {
	return Config{
		FrameFloor:              time.Millisecond,
		FrameRecursionThreshold: 100,
		FrameDelay:              16 * time.Millisecond,
		SessionPollInterval:     time.Second,
		SessionTimeout:          30 * time.Second,
		SessionTarget:           `GameManager`,
		SessionMethod:           `Initialize`,
		ConnectionPollInterval:  5 * time.Second,
		MaxReconnectAttempts:    5,
		ReconnectDelay:          2 * time.Second,
		ServerHost:              `gameserver.dlgame.online`,
		ServerPort:              8443,
		LowFPSThreshold:         30,
		FPSSampleWindow:         time.Second,
		LoadingTickInterval:     200 * time.Millisecond,
		LoadingFadeDelay:        time.Second,
		LoadingHideDelay:        500 * time.Millisecond,
		ReloadPromptDelay:       time.Second,
		RecursionPattern:        `PlayerLoop internal function has been called recursively`,
		ManagerNotFoundPattern:  `object GameManager not found`,
		ConnectionLostPattern:   `SmartFoxServer lost`,
	}
}

// LoadConfig populates a Config from environment variables, e.g. with prefix
// "GAMESHIM", GAMESHIM_SERVER_PORT. Unset variables take their defaults.
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("gameshim: failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MaxReconnectWindow returns the effective retry budget of connection
// recovery.
func (c Config) MaxReconnectWindow() time.Duration {
	if c.ReconnectWindow > 0 {
		return c.ReconnectWindow
	}
	return time.Duration(c.MaxReconnectAttempts) * c.ReconnectDelay
}

// Validate rejects non-positive durations and counts, and empty patterns.
func (c Config) Validate() error {
	for _, d := range [...]struct {
		name  string
		value time.Duration
	}{
		{`FrameFloor`, c.FrameFloor},
		{`FrameDelay`, c.FrameDelay},
		{`SessionPollInterval`, c.SessionPollInterval},
		{`SessionTimeout`, c.SessionTimeout},
		{`ConnectionPollInterval`, c.ConnectionPollInterval},
		{`ReconnectDelay`, c.ReconnectDelay},
		{`FPSSampleWindow`, c.FPSSampleWindow},
		{`LoadingTickInterval`, c.LoadingTickInterval},
		{`LoadingFadeDelay`, c.LoadingFadeDelay},
		{`LoadingHideDelay`, c.LoadingHideDelay},
		{`ReloadPromptDelay`, c.ReloadPromptDelay},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}
	if c.ReconnectWindow < 0 {
		return fmt.Errorf("%w: ReconnectWindow must not be negative", ErrInvalidConfig)
	}
	for _, n := range [...]struct {
		name  string
		value int
	}{
		{`FrameRecursionThreshold`, c.FrameRecursionThreshold},
		{`MaxReconnectAttempts`, c.MaxReconnectAttempts},
		{`ServerPort`, c.ServerPort},
		{`LowFPSThreshold`, c.LowFPSThreshold},
	} {
		if n.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, n.name)
		}
	}
	if c.ServerHost == `` || c.SessionTarget == `` || c.SessionMethod == `` {
		return fmt.Errorf("%w: endpoint and session command must be set", ErrInvalidConfig)
	}
	if c.RecursionPattern == `` || c.ManagerNotFoundPattern == `` || c.ConnectionLostPattern == `` {
		return fmt.Errorf("%w: diagnostic patterns must be set", ErrInvalidConfig)
	}
	return nil
}
