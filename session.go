// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrRuntimePanic wraps panics raised by a [RuntimeHandle] or
// [SessionClient].
var ErrRuntimePanic = errors.New(`gameshim: collaborator panicked`)

// ManagerPage is the subset of [Document] the session initializer uses.
type ManagerPage interface {
	EventDispatcher
	Query() url.Values
}

// SessionInitializer locates the runtime handle, and issues the manager
// initialization command. If the command fails, or the handle is not found
// in time, a fallback [GameManager] is synthesized instead.
type SessionInitializer struct {
	state    *State
	scope    *Scope
	logger   *Logger
	metrics  *Metrics
	host     SessionHost
	page     ManagerPage
	poll     *Task
	timeout  *Task
	fallback *GameManager
	cfg      Config
}

// NewSessionInitializer constructs a [SessionInitializer].
func NewSessionInitializer(host SessionHost, page ManagerPage, timers Timers, opts ...Option) (*SessionInitializer, error) {
	if host == nil || page == nil {
		return nil, errors.New(`gameshim: session initializer requires a host and page`)
	}
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newSessionInitializer(host, page, timers, o), nil
}

func newSessionInitializer(host SessionHost, page ManagerPage, timers Timers, o *options) *SessionInitializer {
	logger := componentLogger(o.logger, `session_initializer`)
	return &SessionInitializer{
		state:   o.state,
		scope:   NewScope(timers, logger),
		logger:  logger,
		metrics: o.metrics,
		host:    host,
		page:    page,
		cfg:     o.config,
	}
}

// Start begins polling for the runtime handle. It is a no-op, returning
// false, if the handle was already found (or substituted), or if polling is
// already underway.
func (x *SessionInitializer) Start() bool {
	if x.state.SessionHandleFound() || x.poll.Active() {
		return false
	}
	x.logger.Info().Log(`waiting for runtime handle`)
	poll, err := x.scope.Every(x.cfg.SessionPollInterval, x.tick)
	if err != nil {
		x.logger.Err().Err(err).Log(`failed to start polling`)
		return false
	}
	x.poll = poll
	if x.timeout, err = x.scope.After(x.cfg.SessionTimeout, x.expire); err != nil {
		x.logger.Err().Err(err).Log(`failed to schedule timeout`)
	}
	return true
}

// Fallback returns the synthesized manager, or nil.
func (x *SessionInitializer) Fallback() *GameManager {
	return x.fallback
}

// Close cancels polling, without creating a fallback.
func (x *SessionInitializer) Close() {
	x.scope.Close()
}

func (x *SessionInitializer) tick() {
	handle := x.host.RuntimeHandle()
	if handle == nil {
		return
	}
	if err := sendMessage(handle, x.cfg.SessionTarget, x.cfg.SessionMethod); err != nil {
		x.logger.Warning().
			Err(err).
			Str(`target`, x.cfg.SessionTarget).
			Log(`manager not found in runtime, creating fallback`)
		x.stop()
		x.createFallback()
		return
	}
	x.stop()
	if x.state.markSessionHandleFound() {
		x.logger.Info().
			Str(`target`, x.cfg.SessionTarget).
			Log(`manager found and initialized`)
	}
}

func (x *SessionInitializer) expire() {
	if x.state.SessionHandleFound() {
		return
	}
	x.poll.Cancel()
	x.logger.Err().
		Dur(`timeout`, x.cfg.SessionTimeout).
		Log(`manager initialization timeout`)
	x.createFallback()
}

func (x *SessionInitializer) stop() {
	x.poll.Cancel()
	x.timeout.Cancel()
}

// createFallback runs at most once per [State], as it claims the found
// flag.
func (x *SessionInitializer) createFallback() {
	if !x.state.markSessionHandleFound() {
		return
	}
	x.logger.Info().Log(`creating fallback game manager`)
	x.metrics.sessionFallback()
	gm := NewGameManager(ParsePlayerData(x.page.Query()), x.page, x.logger)
	x.fallback = gm
	x.host.SetGameManager(gm)
	gm.Initialize()
}

func sendMessage(handle RuntimeHandle, target, method string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRuntimePanic, r)
		}
	}()
	return handle.SendMessage(target, method)
}
