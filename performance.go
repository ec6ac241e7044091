// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"math"
)

// StylePage is the subset of [Document] used to shed decorative load.
type StylePage interface {
	SetBodyStyleProperty(property, value string)
	PauseAnimations(selector string) int
}

// PerformanceMonitor samples the frame rate, via the host's (guarded)
// animation-frame primitive, degrading decorative animations when it drops
// below [Config.LowFPSThreshold].
type PerformanceMonitor struct {
	state   *State
	logger  *Logger
	metrics *Metrics
	clock   Clock
	host    FrameHost
	page    StylePage
	cfg     Config
	frames  int
	sample  float64
	fps     int
	running bool
	// generation identifies the current frame chain, so a chain left pending
	// by Stop ends once Start begins another
	generation uint64
}

// NewPerformanceMonitor constructs a [PerformanceMonitor].
func NewPerformanceMonitor(host FrameHost, page StylePage, opts ...Option) (*PerformanceMonitor, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newPerformanceMonitor(host, page, o), nil
}

func newPerformanceMonitor(host FrameHost, page StylePage, o *options) *PerformanceMonitor {
	return &PerformanceMonitor{
		state:   o.state,
		logger:  componentLogger(o.logger, `performance_monitor`),
		metrics: o.metrics,
		clock:   o.clock,
		host:    host,
		page:    page,
		cfg:     o.config,
	}
}

// Start begins sampling, returning false if already running.
func (x *PerformanceMonitor) Start() bool {
	if x.running {
		return false
	}
	x.logger.Info().Log(`setting up performance monitoring`)
	x.running = true
	x.generation++
	x.frames = 0
	x.sample = x.clock()
	x.request(x.generation)
	return x.running
}

// Stop ends sampling, after the next frame.
func (x *PerformanceMonitor) Stop() {
	x.running = false
}

// FPS returns the most recently sampled frame rate, or 0.
func (x *PerformanceMonitor) FPS() int {
	return x.fps
}

func (x *PerformanceMonitor) request(generation uint64) {
	raf := x.host.RequestAnimationFrame()
	if raf == nil {
		x.logger.Warning().Log(`no animation frame primitive, monitoring disabled`)
		x.running = false
		return
	}
	raf(func(float64) { x.frame(generation) })
}

func (x *PerformanceMonitor) frame(generation uint64) {
	if !x.running || generation != x.generation {
		return
	}
	x.frames++
	now := x.clock()
	if elapsed := now - x.sample; elapsed >= durationMillis(x.cfg.FPSSampleWindow) {
		x.fps = int(math.Round(float64(x.frames) * 1000 / elapsed))
		x.frames = 0
		x.sample = now
		if x.fps < x.cfg.LowFPSThreshold {
			x.logger.Warning().Int(`fps`, x.fps).Log(`low fps detected`)
			x.metrics.lowFrameRate()
			x.Degrade()
		}
	}
	x.request(generation)
}

// Degrade sheds decorative load. Animation durations are shortened only if
// frame recursion has been suspected.
func (x *PerformanceMonitor) Degrade() {
	x.logger.Info().Log(`applying performance optimizations`)
	if x.state.RecursionSuspected() {
		x.page.SetBodyStyleProperty(`--animation-duration`, `0.5s`)
		x.page.SetBodyStyleProperty(`--transition-duration`, `0.3s`)
	}
	x.page.PauseAnimations(SelectorHeavyAnimations)
}
