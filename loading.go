// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

// LoadingPage is the subset of [Document] driven by the [LoadingScreen].
type LoadingPage interface {
	HasLoadingScreen() bool
	SetProgress(percent float64)
	SetLoadingText(text string)
	FadeOutLoadingScreen()
	HideLoadingScreen()
}

// LoadingScreen animates simulated progress over the page's loading screen,
// then fades it out.
type LoadingScreen struct {
	scope    *Scope
	logger   *Logger
	random   func() float64
	page     LoadingPage
	tick     *Task
	cfg      Config
	progress float64
	started  bool
}

// NewLoadingScreen constructs a [LoadingScreen].
func NewLoadingScreen(page LoadingPage, timers Timers, opts ...Option) (*LoadingScreen, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newLoadingScreen(page, timers, o), nil
}

func newLoadingScreen(page LoadingPage, timers Timers, o *options) *LoadingScreen {
	logger := componentLogger(o.logger, `loading_screen`)
	return &LoadingScreen{
		scope:  NewScope(timers, logger),
		logger: logger,
		random: o.random,
		page:   page,
		cfg:    o.config,
	}
}

// Start begins animating. It returns false if already started, or if the
// page has no loading screen.
func (x *LoadingScreen) Start() bool {
	if x.started || !x.page.HasLoadingScreen() {
		return false
	}
	tick, err := x.scope.Every(x.cfg.LoadingTickInterval, x.step)
	if err != nil {
		x.logger.Err().Err(err).Log(`failed to start loading progress`)
		return false
	}
	x.started = true
	x.tick = tick
	return true
}

// Progress returns the current percentage, in [0, 100].
func (x *LoadingScreen) Progress() float64 {
	return x.progress
}

// Close cancels any pending updates.
func (x *LoadingScreen) Close() {
	x.scope.Close()
}

func (x *LoadingScreen) step() {
	x.progress += x.random() * 10
	if x.progress > 100 {
		x.progress = 100
	}
	x.page.SetProgress(x.progress)
	x.page.SetLoadingText(LoadingText(x.progress))
	if x.progress < 100 {
		return
	}
	x.tick.Cancel()
	if _, err := x.scope.After(x.cfg.LoadingFadeDelay, x.fade); err != nil {
		x.logger.Err().Err(err).Log(`failed to schedule fade out`)
	}
}

func (x *LoadingScreen) fade() {
	x.page.FadeOutLoadingScreen()
	if _, err := x.scope.After(x.cfg.LoadingHideDelay, x.page.HideLoadingScreen); err != nil {
		x.logger.Err().Err(err).Log(`failed to schedule hide`)
	}
}

// LoadingText returns the status message for a progress percentage.
func LoadingText(progress float64) string {
	switch {
	case progress < 30:
		return `Initializing Unity runtime...`
	case progress < 60:
		return `Loading game assets...`
	case progress < 90:
		return `Connecting to game server...`
	default:
		return `Almost ready...`
	}
}
