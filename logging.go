// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger accepted by every component.
// A nil *Logger is valid, and discards everything.
type Logger = logiface.Logger[logiface.Event]

// NewDefaultLogger returns a JSON logger writing one line per event to w.
func NewDefaultLogger(w io.Writer) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	).Logger()
}

// componentLogger scopes logger to the named component, tolerating nil.
func componentLogger(logger *Logger, name string) *Logger {
	return logger.Clone().Str(`component`, name).Logger()
}
