// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeycumines/go-catrate"
)

// DiagnosticCode identifies a known failure signature.
type DiagnosticCode int

const (
	// DiagnosticNone is the zero value, an unrecognized diagnostic.
	DiagnosticNone DiagnosticCode = iota
	// DiagnosticRecursion indicates runaway frame recursion, and is routed
	// to the frame guard.
	DiagnosticRecursion
	// DiagnosticManagerNotFound indicates the runtime has no manager
	// object, and is routed to the session initializer.
	DiagnosticManagerNotFound
	// DiagnosticConnectionLost indicates the session client dropped, and is
	// routed to connection recovery.
	DiagnosticConnectionLost
)

var (
	ErrRecursion       = errors.New(`gameshim: frame recursion`)
	ErrManagerNotFound = errors.New(`gameshim: game manager not found`)
	ErrConnectionLost  = errors.New(`gameshim: connection lost`)
)

// diagnosticLogRates throttles the warning logged per code, the routing
// itself is never throttled.
var diagnosticLogRates = map[time.Duration]int{
	time.Second: 1,
	time.Minute: 10,
}

func (c DiagnosticCode) String() string {
	switch c {
	case DiagnosticRecursion:
		return `recursion`
	case DiagnosticManagerNotFound:
		return `manager_not_found`
	case DiagnosticConnectionLost:
		return `connection_lost`
	default:
		return `none`
	}
}

// Err returns the sentinel error for the code, or nil.
func (c DiagnosticCode) Err() error {
	switch c {
	case DiagnosticRecursion:
		return ErrRecursion
	case DiagnosticManagerNotFound:
		return ErrManagerNotFound
	case DiagnosticConnectionLost:
		return ErrConnectionLost
	default:
		return nil
	}
}

// Diagnostic is a classified failure signature. It matches the sentinel of
// its code, via [errors.Is].
type Diagnostic struct {
	Message string
	Code    DiagnosticCode
}

func (d *Diagnostic) Error() string {
	return `gameshim: diagnostic ` + d.Code.String() + `: ` + d.Message
}

func (d *Diagnostic) Is(target error) bool {
	sentinel := d.Code.Err()
	return sentinel != nil && target == sentinel
}

// Classify matches message against the default patterns.
func Classify(message string) DiagnosticCode {
	return classify(DefaultConfig(), message)
}

func classify(cfg Config, message string) DiagnosticCode {
	switch {
	case strings.Contains(message, cfg.RecursionPattern):
		return DiagnosticRecursion
	case strings.Contains(message, cfg.ManagerNotFoundPattern):
		return DiagnosticManagerNotFound
	case strings.Contains(message, cfg.ConnectionLostPattern):
		return DiagnosticConnectionLost
	default:
		return DiagnosticNone
	}
}

// DiagnosticInterceptor wraps the error-logging primitive, converting known
// failure signatures into recovery actions. Matched messages are suppressed,
// everything else passes through unchanged.
type DiagnosticInterceptor struct {
	logger    *Logger
	metrics   *Metrics
	limiter   *catrate.Limiter
	routes    map[DiagnosticCode]func()
	cfg       Config
	installed bool
}

// NewDiagnosticInterceptor constructs a [DiagnosticInterceptor] with no
// routes. See [DiagnosticInterceptor.Route].
func NewDiagnosticInterceptor(opts ...Option) (*DiagnosticInterceptor, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newDiagnosticInterceptor(o), nil
}

func newDiagnosticInterceptor(o *options) *DiagnosticInterceptor {
	return &DiagnosticInterceptor{
		logger:  componentLogger(o.logger, `diagnostic_interceptor`),
		metrics: o.metrics,
		limiter: catrate.NewLimiter(diagnosticLogRates),
		routes:  make(map[DiagnosticCode]func()),
		cfg:     o.config,
	}
}

// Route sets the recovery action for code, replacing any existing one.
func (x *DiagnosticInterceptor) Route(code DiagnosticCode, fn func()) {
	if code == DiagnosticNone {
		panic(`gameshim: cannot route DiagnosticNone`)
	}
	x.routes[code] = fn
}

// Classify matches message against the configured patterns, in order.
func (x *DiagnosticInterceptor) Classify(message string) DiagnosticCode {
	return classify(x.cfg, message)
}

// Install wraps the host's error-logging primitive. Only the first call has
// any effect.
func (x *DiagnosticInterceptor) Install(host ConsoleHost) bool {
	if x.installed {
		return false
	}
	x.installed = true
	host.SetConsoleError(x.Wrap(host.ConsoleError()))
	return true
}

// Wrap returns a replacement for original, which may be nil.
func (x *DiagnosticInterceptor) Wrap(original LogFunc) LogFunc {
	return func(args ...any) {
		message := joinArgs(args)
		if code := x.Classify(message); code != DiagnosticNone {
			x.dispatch(&Diagnostic{Code: code, Message: message})
			return
		}
		if original != nil {
			original(args...)
		}
	}
}

// Report routes a structured error. It returns false if err matched no known
// diagnostic.
func (x *DiagnosticInterceptor) Report(err error) bool {
	if err == nil {
		return false
	}
	var d *Diagnostic
	if !errors.As(err, &d) {
		d = &Diagnostic{Code: codeOf(err), Message: err.Error()}
		if d.Code == DiagnosticNone {
			d.Code = x.Classify(d.Message)
		}
	}
	if d.Code == DiagnosticNone {
		return false
	}
	x.dispatch(d)
	return true
}

func (x *DiagnosticInterceptor) dispatch(d *Diagnostic) {
	if _, ok := x.limiter.Allow(d.Code); ok {
		x.logger.Warning().
			Str(`code`, d.Code.String()).
			Str(`message`, d.Message).
			Log(`diagnostic intercepted`)
	}
	x.metrics.diagnosticRouted(d.Code)
	if fn := x.routes[d.Code]; fn != nil {
		fn()
	}
}

func codeOf(err error) DiagnosticCode {
	for _, code := range [...]DiagnosticCode{DiagnosticRecursion, DiagnosticManagerNotFound, DiagnosticConnectionLost} {
		if errors.Is(err, code.Err()) {
			return code
		}
	}
	return DiagnosticNone
}

func joinArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprint(arg)
	}
	return strings.Join(parts, ` `)
}
