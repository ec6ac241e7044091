// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"strings"
)

// ReloadPromptMessage is the question posed by the [ReloadPrompter].
const ReloadPromptMessage = `Unity WebGL encountered an error. Would you like to reload the page?`

// ReloadPage is the subset of [Document] used to offer a reload.
type ReloadPage interface {
	Confirm(message string) bool
	Reload()
}

// ReloadPrompter offers to reload the page after unrecoverable WebAssembly
// faults.
type ReloadPrompter struct {
	scope   *Scope
	logger  *Logger
	page    ReloadPage
	pending *Task
	cfg     Config
}

// NewReloadPrompter constructs a [ReloadPrompter].
func NewReloadPrompter(page ReloadPage, timers Timers, opts ...Option) (*ReloadPrompter, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newReloadPrompter(page, timers, o), nil
}

func newReloadPrompter(page ReloadPage, timers Timers, o *options) *ReloadPrompter {
	logger := componentLogger(o.logger, `reload_prompter`)
	return &ReloadPrompter{
		scope:  NewScope(timers, logger),
		logger: logger,
		page:   page,
		cfg:    o.config,
	}
}

// IsWASMFault reports whether message describes a WebAssembly fault the
// page cannot recover from without reloading.
func IsWASMFault(message string) bool {
	return strings.Contains(message, `wasm`) &&
		(strings.Contains(message, `null function`) || strings.Contains(message, `function signature mismatch`))
}

// HandleError inspects an uncaught error, scheduling a reload prompt if it
// is a WebAssembly fault. It returns true if a prompt is (now) pending.
func (x *ReloadPrompter) HandleError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	if !strings.Contains(message, `wasm`) {
		return false
	}
	x.logger.Err().Err(err).Log(`webassembly error detected`)
	if !IsWASMFault(message) {
		return false
	}
	if x.pending.Active() {
		return true
	}
	x.logger.Info().Log(`attempting to recover from webassembly error`)
	pending, serr := x.scope.After(x.cfg.ReloadPromptDelay, x.prompt)
	if serr != nil {
		x.logger.Err().Err(serr).Log(`failed to schedule reload prompt`)
		return false
	}
	x.pending = pending
	return true
}

// Close cancels any pending prompt.
func (x *ReloadPrompter) Close() {
	x.scope.Close()
}

func (x *ReloadPrompter) prompt() {
	if x.page.Confirm(ReloadPromptMessage) {
		x.page.Reload()
	}
}
