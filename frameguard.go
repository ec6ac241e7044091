// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"time"
)

// FrameGuard rate-limits the animation-frame primitive, when it's being
// invoked fast enough to suggest unbounded recursion.
//
// This is a heuristic. Legitimate high-frequency scheduling is
// indistinguishable from recursion, it only bounds the damage.
type FrameGuard struct {
	state   *State
	scope   *Scope
	logger  *Logger
	metrics *Metrics
	clock   Clock
	cfg     Config
	count   int
	last    float64
}

// NewFrameGuard constructs a [FrameGuard] scheduling deferred frames via
// timers.
func NewFrameGuard(timers Timers, opts ...Option) (*FrameGuard, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newFrameGuard(timers, o), nil
}

func newFrameGuard(timers Timers, o *options) *FrameGuard {
	logger := componentLogger(o.logger, `frame_guard`)
	return &FrameGuard{
		state:   o.state,
		scope:   NewScope(timers, logger),
		logger:  logger,
		metrics: o.metrics,
		clock:   o.clock,
		cfg:     o.config,
	}
}

// Install replaces the host's primitive with the guarded wrapper, returning
// false if a guard was already installed for the shared [State].
func (g *FrameGuard) Install(host FrameHost) bool {
	if !g.state.markFrameGuardActive() {
		return false
	}
	g.logger.Info().Log(`installing frame timing guard`)
	original := host.RequestAnimationFrame()
	if original == nil {
		g.logger.Warning().Log(`no animation frame primitive, falling back to timeouts`)
		original = g.timeoutFrames
	}
	host.SetRequestAnimationFrame(g.Wrap(original))
	return true
}

// Wrap returns the guarded version of original. Install should normally be
// used instead, as Wrap does not consult [State.FrameGuardActive].
func (g *FrameGuard) Wrap(original RequestFrameFunc) RequestFrameFunc {
	g.last = g.clock()
	floor := durationMillis(g.cfg.FrameFloor)
	return func(callback FrameCallback) uint64 {
		now := g.clock()
		if now-g.last < floor {
			g.count++
			if g.count > g.cfg.FrameRecursionThreshold {
				g.deferFrame(callback, now)
				return 0
			}
		} else {
			g.count = 0
		}
		g.last = now
		return original(callback)
	}
}

func (g *FrameGuard) deferFrame(callback FrameCallback, now float64) {
	g.logger.Warning().
		Int(`consecutive`, g.count).
		Log(`frame recursion detected, deferring frame`)
	g.state.setRecursionSuspected()
	g.metrics.recursionDetected()
	g.count = 0
	timestamp := now + durationMillis(g.cfg.FrameDelay)
	if _, err := g.scope.After(g.cfg.FrameDelay, func() {
		g.last = g.clock()
		callback(timestamp)
	}); err != nil {
		g.logger.Err().Err(err).Log(`failed to defer frame`)
	}
}

// timeoutFrames approximates the primitive when the host lacks one.
func (g *FrameGuard) timeoutFrames(callback FrameCallback) uint64 {
	task, err := g.scope.After(g.cfg.FrameDelay, func() {
		callback(g.clock())
	})
	if err != nil {
		g.logger.Err().Err(err).Log(`failed to schedule frame`)
		return 0
	}
	return task.id
}

// Close cancels any deferred frames.
func (g *FrameGuard) Close() {
	g.scope.Close()
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
