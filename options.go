// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"math/rand/v2"
	"time"
)

// Clock returns the current time, in milliseconds since some fixed origin,
// following the semantics of performance.now().
type Clock func() float64

// NewClock returns a [Clock] anchored at the time of the call.
func NewClock() Clock {
	origin := time.Now()
	return func() float64 {
		return float64(time.Since(origin)) / float64(time.Millisecond)
	}
}

// options holds configuration shared by every component.
type options struct {
	logger  *Logger
	state   *State
	metrics *Metrics
	clock   Clock
	random  func() float64
	config  Config
}

// Option configures a [Shim], or any of the individual components.
type Option interface {
	apply(*options) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*options) error
}

func (o *optionImpl) apply(opts *options) error {
	return o.applyFunc(opts)
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *Logger) Option {
	return &optionImpl{func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithConfig replaces the default constants. The config is validated when
// the options are resolved.
func WithConfig(cfg Config) Option {
	return &optionImpl{func(opts *options) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		opts.config = cfg
		return nil
	}}
}

// WithState shares an existing [State], e.g. between individually
// constructed components.
func WithState(state *State) Option {
	return &optionImpl{func(opts *options) error {
		if state == nil {
			return errors.New(`gameshim: state cannot be nil`)
		}
		opts.state = state
		return nil
	}}
}

// WithMetrics enables metrics collection.
func WithMetrics(metrics *Metrics) Option {
	return &optionImpl{func(opts *options) error {
		opts.metrics = metrics
		return nil
	}}
}

// WithClock overrides the clock used for frame timing. Defaults to
// [NewClock].
func WithClock(clock Clock) Option {
	return &optionImpl{func(opts *options) error {
		if clock == nil {
			return errors.New(`gameshim: clock cannot be nil`)
		}
		opts.clock = clock
		return nil
	}}
}

// WithRandom overrides the source of loading progress increments, which
// must return values in [0, 1).
func WithRandom(random func() float64) Option {
	return &optionImpl{func(opts *options) error {
		if random == nil {
			return errors.New(`gameshim: random cannot be nil`)
		}
		opts.random = random
		return nil
	}}
}

// resolveOptions applies Option instances to the defaults.
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.state == nil {
		cfg.state = NewState()
	}
	if cfg.clock == nil {
		cfg.clock = NewClock()
	}
	if cfg.random == nil {
		cfg.random = rand.Float64
	}
	return cfg, nil
}
