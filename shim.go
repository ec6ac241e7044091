// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"

	"github.com/joeycumines/go-eventloop"
)

const (
	// RuntimeReadyEvent is dispatched on the window once the runtime has
	// loaded. See [Shim.ListenRuntimeReady].
	RuntimeReadyEvent = `unity-ready`

	// ErrorEvent is dispatched on the window for uncaught errors. The
	// detail must be an error or a string.
	ErrorEvent = `error`
)

// Shim wires every watchdog to a single [Host], sharing one [State].
type Shim struct {
	host        Host
	doc         *Document
	state       *State
	logger      *Logger
	frameGuard  *FrameGuard
	interceptor *DiagnosticInterceptor
	session     *SessionInitializer
	connection  *ConnectionRecovery
	performance *PerformanceMonitor
	loading     *LoadingScreen
	reload      *ReloadPrompter
	listeners   map[string]eventloop.ListenerID
}

// NewShim constructs a [Shim]. Nothing is patched until [Shim.Start].
func NewShim(host Host, timers Timers, opts ...Option) (*Shim, error) {
	if host == nil {
		return nil, errors.New(`gameshim: host cannot be nil`)
	}
	if timers == nil {
		return nil, errors.New(`gameshim: timers cannot be nil`)
	}
	doc := host.Document()
	if doc == nil {
		return nil, errors.New(`gameshim: host has no document`)
	}
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("gameshim: failed to create shim: %w", err)
	}

	s := &Shim{
		host:        host,
		doc:         doc,
		state:       o.state,
		logger:      componentLogger(o.logger, `shim`),
		frameGuard:  newFrameGuard(timers, o),
		interceptor: newDiagnosticInterceptor(o),
		session:     newSessionInitializer(host, doc, timers, o),
		connection:  newConnectionRecovery(host, doc, timers, o),
		performance: newPerformanceMonitor(host, doc, o),
		loading:     newLoadingScreen(doc, timers, o),
		reload:      newReloadPrompter(doc, timers, o),
		listeners:   make(map[string]eventloop.ListenerID),
	}

	s.interceptor.Route(DiagnosticRecursion, func() { s.frameGuard.Install(s.host) })
	s.interceptor.Route(DiagnosticManagerNotFound, func() { s.session.Start() })
	s.interceptor.Route(DiagnosticConnectionLost, func() { s.connection.Start() })

	return s, nil
}

// Start applies every fix, in order. It returns false if the shim has
// already been started.
func (s *Shim) Start() bool {
	if s.state.Initialized() {
		return false
	}
	s.logger.Info().Log(`initializing runtime fixes`)

	s.frameGuard.Install(s.host)
	s.interceptor.Install(s.host)
	s.session.Start()
	s.connection.Start()
	s.performance.Start()
	s.loading.Start()

	if !s.state.markInitialized() {
		return false
	}
	s.logger.Info().Log(`all runtime fixes initialized`)
	return true
}

// ListenRuntimeReady starts the shim on [RuntimeReadyEvent], and routes
// [ErrorEvent] to [Shim.HandleError]. Subsequent calls are no-ops.
func (s *Shim) ListenRuntimeReady() {
	if len(s.listeners) != 0 {
		return
	}
	window := s.doc.Window()
	s.listeners[RuntimeReadyEvent] = window.AddEventListener(RuntimeReadyEvent, func(*eventloop.Event) {
		s.Start()
	})
	s.listeners[ErrorEvent] = window.AddEventListener(ErrorEvent, func(event *eventloop.Event) {
		switch detail := event.Detail().(type) {
		case error:
			s.HandleError(detail)
		case string:
			s.HandleError(errors.New(detail))
		}
	})
}

// HandleError reports an uncaught error. Known diagnostics are routed, and
// WebAssembly faults prompt for a reload. It returns true if the error was
// acted on.
func (s *Shim) HandleError(err error) bool {
	if err == nil {
		return false
	}
	if s.interceptor.Report(err) {
		return true
	}
	return s.reload.HandleError(err)
}

// State returns the shared state.
func (s *Shim) State() *State {
	return s.state
}

// Interceptor exposes the diagnostic interceptor, e.g. to report
// structured diagnostics directly.
func (s *Shim) Interceptor() *DiagnosticInterceptor {
	return s.interceptor
}

// Close cancels every scheduled task, and stops listening for window events.
// Patched primitives are left in place.
func (s *Shim) Close() {
	window := s.doc.Window()
	for eventType, id := range s.listeners {
		window.RemoveEventListenerByID(eventType, id)
		delete(s.listeners, eventType)
	}
	s.performance.Stop()
	s.frameGuard.Close()
	s.session.Close()
	s.connection.Close()
	s.loading.Close()
	s.reload.Close()
}
