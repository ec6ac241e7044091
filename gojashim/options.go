package gojashim

import (
	"errors"

	"github.com/joeycumines/go-gameshim"
)

type hostOptions struct {
	logger *gameshim.Logger
	clock  gameshim.Clock
}

// Option configures [Bind].
type Option interface {
	applyOption(*hostOptions) error
}

type optionFunc struct {
	fn func(*hostOptions) error
}

func (o *optionFunc) applyOption(opts *hostOptions) error {
	return o.fn(opts)
}

// WithLogger sets the logger backing the console polyfill, and used to
// report exceptions thrown by callbacks.
func WithLogger(logger *gameshim.Logger) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithClock sets the clock backing performance.now, and the timestamps of
// polyfilled animation frames.
func WithClock(clock gameshim.Clock) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		if clock == nil {
			return errors.New(`gojashim: clock cannot be nil`)
		}
		opts.clock = clock
		return nil
	}}
}

func resolveOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = gameshim.NewClock()
	}
	return cfg, nil
}
