// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joeycumines/go-eventloop"
)

// ErrScopeClosed is returned when scheduling on a closed [Scope].
var ErrScopeClosed = errors.New(`gameshim: scope is closed`)

// Timers models the JavaScript timer API, with [time.Duration] delays.
//
// Callbacks must be invoked on a single goroutine, the same goroutine that
// drives every other callback of the shim.
type Timers interface {
	SetTimeout(fn func(), delay time.Duration) (uint64, error)
	ClearTimeout(id uint64) error
	SetInterval(fn func(), delay time.Duration) (uint64, error)
	ClearInterval(id uint64) error
}

// LoopTimers implements [Timers] using an eventloop.JS adapter.
type LoopTimers struct {
	js *eventloop.JS
}

var _ Timers = (*LoopTimers)(nil)

// NewLoopTimers wraps js. Delays are truncated to whole milliseconds.
func NewLoopTimers(js *eventloop.JS) *LoopTimers {
	if js == nil {
		panic(`gameshim: js cannot be nil`)
	}
	return &LoopTimers{js: js}
}

func (x *LoopTimers) SetTimeout(fn func(), delay time.Duration) (uint64, error) {
	return x.js.SetTimeout(fn, int(delay.Milliseconds()))
}

func (x *LoopTimers) ClearTimeout(id uint64) error {
	return x.js.ClearTimeout(id)
}

func (x *LoopTimers) SetInterval(fn func(), delay time.Duration) (uint64, error) {
	return x.js.SetInterval(fn, int(delay.Milliseconds()))
}

func (x *LoopTimers) ClearInterval(id uint64) error {
	return x.js.ClearInterval(id)
}

// Scope owns a set of scheduled tasks, all of which are canceled by
// [Scope.Close]. Callbacks are run with panic recovery.
type Scope struct {
	timers Timers
	logger *Logger
	tasks  map[*Task]struct{}
	mu     sync.Mutex
	closed bool
}

// Task is a single one-shot or repeating callback, owned by a [Scope].
type Task struct {
	scope    *Scope
	id       uint64
	interval bool
	done     bool
}

// NewScope returns an empty scope, scheduling via timers.
func NewScope(timers Timers, logger *Logger) *Scope {
	if timers == nil {
		panic(`gameshim: timers cannot be nil`)
	}
	return &Scope{
		timers: timers,
		logger: logger,
		tasks:  make(map[*Task]struct{}),
	}
}

// After schedules fn to run once, after delay.
func (s *Scope) After(delay time.Duration, fn func()) (*Task, error) {
	task := &Task{scope: s}
	if err := s.schedule(task, func() {
		if !s.finish(task) {
			return
		}
		s.run(fn)
	}, delay); err != nil {
		return nil, err
	}
	return task, nil
}

// Every schedules fn to run repeatedly, every interval.
func (s *Scope) Every(interval time.Duration, fn func()) (*Task, error) {
	task := &Task{scope: s, interval: true}
	if err := s.schedule(task, func() {
		if !s.active(task) {
			return
		}
		s.run(fn)
	}, interval); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Scope) schedule(task *Task, fn func(), delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	var err error
	if task.interval {
		task.id, err = s.timers.SetInterval(fn, delay)
	} else {
		task.id, err = s.timers.SetTimeout(fn, delay)
	}
	if err != nil {
		return fmt.Errorf("gameshim: failed to schedule task: %w", err)
	}
	s.tasks[task] = struct{}{}
	return nil
}

// finish marks a one-shot task as fired, returning false if it was already
// canceled.
func (s *Scope) finish(task *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.done {
		return false
	}
	task.done = true
	delete(s.tasks, task)
	return true
}

func (s *Scope) active(task *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !task.done
}

func (s *Scope) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Err().
				Str(`panic`, fmt.Sprint(r)).
				Log(`scheduled callback panicked`)
		}
	}()
	fn()
}

// Cancel stops the task. It is safe to call more than once, including from
// within the task's own callback.
func (t *Task) Cancel() {
	if t == nil || t.scope == nil {
		return
	}
	t.scope.mu.Lock()
	defer t.scope.mu.Unlock()
	t.scope.cancelLocked(t)
}

// Active reports whether the task may still run.
func (t *Task) Active() bool {
	return t != nil && t.scope != nil && t.scope.active(t)
}

func (s *Scope) cancelLocked(task *Task) {
	if task.done {
		return
	}
	task.done = true
	delete(s.tasks, task)
	if task.interval {
		_ = s.timers.ClearInterval(task.id)
	} else {
		_ = s.timers.ClearTimeout(task.id)
	}
}

// Len returns the number of outstanding tasks.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels every outstanding task, and prevents further scheduling.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for task := range s.tasks {
		s.cancelLocked(task)
	}
}
