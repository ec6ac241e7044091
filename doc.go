// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package gameshim implements runtime-compatibility watchdogs for an embedded
// game runtime and its multiplayer session client, scheduled on a
// single-threaded, JavaScript-compatible event loop.
//
// # Watchdogs
//
// Four independent watchdogs share one explicit [State]:
//
//   - [FrameGuard] wraps the animation-frame primitive, and rate-limits
//     abnormally fast repeated frame requests (a proxy for runaway recursion)
//   - [SessionInitializer] polls for the runtime handle, sends the manager
//     initialization command, and synthesizes a fallback [GameManager] on
//     failure or timeout
//   - [ConnectionRecovery] polls session connectivity, issuing a bounded
//     number of reconnects, before rendering a blocking error overlay
//   - [DiagnosticInterceptor] wraps the error-logging function, routing known
//     failure signatures to the watchdogs above
//
// Supporting components are the [PerformanceMonitor], the [LoadingScreen],
// and the [ReloadPrompter]. [Shim] wires them all together, and starts them
// exactly once.
//
// # Execution Model
//
// All callbacks are expected to run on a single goroutine, typically the
// goroutine of an eventloop.Loop. Delays are scheduled via [Timers], which
// [LoopTimers] implements on top of eventloop.JS. Every task is owned by a
// [Scope], which cancels whatever is outstanding when closed.
//
// # Usage
//
//	loop, _ := eventloop.New()
//	js, _ := eventloop.NewJS(loop)
//
//	shim, err := gameshim.NewShim(host, gameshim.NewLoopTimers(js),
//	    gameshim.WithLogger(gameshim.NewDefaultLogger(os.Stderr)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shim.Close()
//
//	loop.Submit(func() {
//	    shim.ListenRuntimeReady()
//	    shim.Start()
//	})
//
//	_ = loop.Run(ctx)
//
// See the gojashim package for a [Host] implementation backed by a goja
// runtime.
package gameshim
