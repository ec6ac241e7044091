// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

type (
	// FrameCallback receives the frame timestamp, in milliseconds, as per
	// the requestAnimationFrame callback.
	FrameCallback func(timestamp float64)

	// RequestFrameFunc is the "schedule next frame" primitive. It returns a
	// request ID, which is 0 if the request was not delegated.
	RequestFrameFunc func(callback FrameCallback) uint64

	// LogFunc is the global error-logging primitive, e.g. console.error.
	LogFunc func(args ...any)

	// FrameHost exposes the replaceable animation-frame primitive.
	FrameHost interface {
		// RequestAnimationFrame returns the current primitive, or nil if
		// the host has none.
		RequestAnimationFrame() RequestFrameFunc
		SetRequestAnimationFrame(fn RequestFrameFunc)
	}

	// ConsoleHost exposes the replaceable error-logging primitive.
	ConsoleHost interface {
		// ConsoleError returns the current primitive, or nil if the host
		// has none.
		ConsoleError() LogFunc
		SetConsoleError(fn LogFunc)
	}

	// RuntimeHandle is the loaded game module. SendMessage dispatches a
	// named command to a named target, failing if the target does not
	// exist.
	RuntimeHandle interface {
		SendMessage(target, method string) error
	}

	// SessionClient manages the persistent multiplayer connection.
	SessionClient interface {
		IsConnected() bool
		Connect(host string, port int) error
	}

	// SessionHost locates the runtime handle, and publishes the fallback
	// game manager.
	SessionHost interface {
		// RuntimeHandle returns nil while the runtime is not yet available.
		RuntimeHandle() RuntimeHandle
		SetGameManager(gm *GameManager)
	}

	// ClientHost locates the session client.
	ClientHost interface {
		// SessionClient returns nil while the client is not available.
		SessionClient() SessionClient
	}

	// Host is everything a [Shim] patches or observes.
	Host interface {
		FrameHost
		ConsoleHost
		SessionHost
		ClientHost
		// Document returns the page, which must not be nil.
		Document() *Document
	}
)
