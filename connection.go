// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"
)

// ErrorPage renders the terminal connection failure, e.g. [Document].
type ErrorPage interface {
	ShowConnectionError()
}

// ConnectionRecovery polls the session client, reconnecting a bounded
// number of times before giving up and rendering a blocking overlay.
type ConnectionRecovery struct {
	state   *State
	scope   *Scope
	logger  *Logger
	metrics *Metrics
	host    ClientHost
	page    ErrorPage
	poll    *Task
	window  *Task
	cfg     Config
	shown   bool
}

// NewConnectionRecovery constructs a [ConnectionRecovery].
func NewConnectionRecovery(host ClientHost, page ErrorPage, timers Timers, opts ...Option) (*ConnectionRecovery, error) {
	if host == nil || page == nil {
		return nil, errors.New(`gameshim: connection recovery requires a host and page`)
	}
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newConnectionRecovery(host, page, timers, o), nil
}

func newConnectionRecovery(host ClientHost, page ErrorPage, timers Timers, o *options) *ConnectionRecovery {
	logger := componentLogger(o.logger, `connection_recovery`)
	return &ConnectionRecovery{
		state:   o.state,
		scope:   NewScope(timers, logger),
		logger:  logger,
		metrics: o.metrics,
		host:    host,
		page:    page,
		cfg:     o.config,
	}
}

// Start begins a poll cycle, bounded by [Config.MaxReconnectWindow].
// It returns false, doing nothing, while a cycle is already underway.
func (x *ConnectionRecovery) Start() bool {
	if x.poll.Active() {
		return false
	}
	x.logger.Info().
		Dur(`window`, x.cfg.MaxReconnectWindow()).
		Log(`monitoring session connection`)
	poll, err := x.scope.Every(x.cfg.ConnectionPollInterval, x.tick)
	if err != nil {
		x.logger.Err().Err(err).Log(`failed to start polling`)
		return false
	}
	x.poll = poll
	if x.window, err = x.scope.After(x.cfg.MaxReconnectWindow(), x.expire); err != nil {
		x.logger.Err().Err(err).Log(`failed to schedule reconnect window`)
	}
	return true
}

// Polling reports whether a poll cycle is underway.
func (x *ConnectionRecovery) Polling() bool {
	return x.poll.Active()
}

// Close stops polling.
func (x *ConnectionRecovery) Close() {
	x.scope.Close()
}

func (x *ConnectionRecovery) tick() {
	client := x.host.SessionClient()
	if client == nil {
		return
	}

	connected, err := isConnected(client)
	if err != nil {
		x.logger.Warning().Err(err).Log(`failed to query connection state`)
		return
	}
	if connected {
		if previous := x.state.resetReconnectAttempts(); previous > 0 {
			x.logger.Info().
				Int(`attempts`, previous).
				Log(`connection restored`)
		}
		return
	}

	if x.state.ReconnectAttempts() >= x.cfg.MaxReconnectAttempts {
		x.stop()
		x.showError()
		return
	}

	// counted before the call, so a failing connect is never counted twice
	attempt := x.state.incrementReconnectAttempts()
	x.metrics.reconnectAttempted()
	x.logger.Info().
		Int(`attempt`, attempt).
		Int(`max`, x.cfg.MaxReconnectAttempts).
		Log(`reconnecting`)

	if err := connect(client, x.cfg.ServerHost, x.cfg.ServerPort); err != nil {
		x.metrics.reconnectFailed()
		x.logger.Err().
			Err(err).
			Int(`attempt`, attempt).
			Log(`reconnect failed`)
	}
}

func (x *ConnectionRecovery) expire() {
	x.poll.Cancel()
	if x.state.ReconnectAttempts() >= x.cfg.MaxReconnectAttempts {
		x.showError()
	}
}

func (x *ConnectionRecovery) stop() {
	x.poll.Cancel()
	x.window.Cancel()
}

func (x *ConnectionRecovery) showError() {
	if x.shown {
		return
	}
	x.shown = true
	x.logger.Err().
		Int(`max`, x.cfg.MaxReconnectAttempts).
		Log(`max reconnection attempts reached`)
	x.metrics.connectionErrorShown()
	x.page.ShowConnectionError()
}

func isConnected(client SessionClient) (connected bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRuntimePanic, r)
		}
	}()
	return client.IsConnected(), nil
}

func connect(client SessionClient, host string, port int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRuntimePanic, r)
		}
	}()
	return client.Connect(host, port)
}
