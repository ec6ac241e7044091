// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"sync/atomic"
)

// State is the context shared by every watchdog of a [Shim].
//
// It lives for as long as the page does, and is never reset. Fields are
// atomic so snapshots may be taken from any goroutine, though all mutation
// is expected to happen on the loop goroutine.
type State struct {
	reconnectAttempts  atomic.Int64
	initialized        atomic.Bool
	sessionHandleFound atomic.Bool
	frameGuardActive   atomic.Bool
	recursionSuspected atomic.Bool
}

// StateSnapshot is a point-in-time copy of [State].
type StateSnapshot struct {
	ReconnectAttempts  int  `json:"connectionRetries"`
	Initialized        bool `json:"isInitialized"`
	SessionHandleFound bool `json:"gameManagerFound"`
	FrameGuardActive   bool `json:"playerLoopFixed"`
	RecursionSuspected bool `json:"recursionDetected"`
}

// NewState returns a zeroed [State].
func NewState() *State {
	return new(State)
}

// Snapshot copies the current values.
func (s *State) Snapshot() StateSnapshot {
	return StateSnapshot{
		ReconnectAttempts:  s.ReconnectAttempts(),
		Initialized:        s.Initialized(),
		SessionHandleFound: s.SessionHandleFound(),
		FrameGuardActive:   s.FrameGuardActive(),
		RecursionSuspected: s.RecursionSuspected(),
	}
}

func (s *State) Initialized() bool        { return s.initialized.Load() }
func (s *State) SessionHandleFound() bool { return s.sessionHandleFound.Load() }
func (s *State) FrameGuardActive() bool   { return s.frameGuardActive.Load() }
func (s *State) RecursionSuspected() bool { return s.recursionSuspected.Load() }
func (s *State) ReconnectAttempts() int   { return int(s.reconnectAttempts.Load()) }

// markInitialized reports whether this call performed the false->true
// transition.
func (s *State) markInitialized() bool {
	return s.initialized.CompareAndSwap(false, true)
}

func (s *State) markFrameGuardActive() bool {
	return s.frameGuardActive.CompareAndSwap(false, true)
}

func (s *State) markSessionHandleFound() bool {
	return s.sessionHandleFound.CompareAndSwap(false, true)
}

func (s *State) setRecursionSuspected() {
	s.recursionSuspected.Store(true)
}

func (s *State) incrementReconnectAttempts() int {
	return int(s.reconnectAttempts.Add(1))
}

func (s *State) resetReconnectAttempts() (previous int) {
	return int(s.reconnectAttempts.Swap(0))
}
