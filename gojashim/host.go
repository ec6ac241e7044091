package gojashim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/dop251/goja_nodejs/url"
	"github.com/joeycumines/go-gameshim"
)

// frameInterval paces the requestAnimationFrame polyfill.
const frameInterval = time.Second / 60

// Host binds a goja runtime's global scope as a [gameshim.Host].
type Host struct {
	runtime           *goja.Runtime
	global            *goja.Object
	doc               *gameshim.Document
	timers            gameshim.Timers
	logger            *gameshim.Logger
	clock             gameshim.Clock
	raf               gameshim.RequestFrameFunc
	rafValue          goja.Value
	consoleError      gameshim.LogFunc
	consoleErrorValue goja.Value
	managers          map[*gameshim.GameManager]*goja.Object
	listeners         map[listenerKey]listenerEntry
}

var _ gameshim.Host = (*Host)(nil)

// Bind prepares the global scope of runtime, returning the [Host].
func Bind(runtime *goja.Runtime, doc *gameshim.Document, timers gameshim.Timers, opts ...Option) (*Host, error) {
	if runtime == nil || doc == nil || timers == nil {
		return nil, errors.New(`gojashim: runtime, document and timers are required`)
	}
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	h := &Host{
		runtime:   runtime,
		global:    runtime.GlobalObject(),
		doc:       doc,
		timers:    timers,
		logger:    o.logger,
		clock:     o.clock,
		managers:  make(map[*gameshim.GameManager]*goja.Object),
		listeners: make(map[listenerKey]listenerEntry),
	}
	for _, bind := range [...]func() error{
		h.bindWindow,
		h.bindPerformance,
		h.bindConsole,
		h.bindTimers,
		h.bindAnimationFrames,
		h.bindEvents,
		h.bindLocation,
		h.bindURL,
	} {
		if err := bind(); err != nil {
			return nil, fmt.Errorf("gojashim: failed to bind globals: %w", err)
		}
	}
	return h, nil
}

// Runtime returns the bound runtime.
func (h *Host) Runtime() *goja.Runtime { return h.runtime }

// Document returns the page.
func (h *Host) Document() *gameshim.Document { return h.doc }

func (h *Host) bindWindow() error {
	if err := h.global.Set(`window`, h.global); err != nil {
		return err
	}
	return h.global.Set(`self`, h.global)
}

// bindURL provides URL and URLSearchParams, enabling require if the runtime
// does not already have it.
func (h *Host) bindURL() error {
	if isFunction(h.global.Get(`URLSearchParams`)) {
		return nil
	}
	if !isFunction(h.global.Get(`require`)) {
		require.NewRegistry().Enable(h.runtime)
	}
	return catchPanic(func() { url.Enable(h.runtime) })
}

func catchPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	fn()
	return nil
}

func (h *Host) bindPerformance() error {
	performance, ok := h.global.Get(`performance`).(*goja.Object)
	if !ok {
		performance = h.runtime.NewObject()
		if err := h.global.Set(`performance`, performance); err != nil {
			return err
		}
	}
	if isFunction(performance.Get(`now`)) {
		return nil
	}
	return performance.Set(`now`, func(goja.FunctionCall) goja.Value {
		return h.runtime.ToValue(h.clock())
	})
}

func (h *Host) bindConsole() error {
	console, ok := h.global.Get(`console`).(*goja.Object)
	if !ok {
		console = h.runtime.NewObject()
		if err := h.global.Set(`console`, console); err != nil {
			return err
		}
	}
	logger := h.logger.Clone().Str(`component`, `console`).Logger()
	for name, log := range map[string]func(message string){
		`log`:   func(message string) { logger.Info().Log(message) },
		`info`:  func(message string) { logger.Info().Log(message) },
		`debug`: func(message string) { logger.Debug().Log(message) },
		`warn`:  func(message string) { logger.Warning().Log(message) },
		`error`: func(message string) { logger.Err().Log(message) },
	} {
		if isFunction(console.Get(name)) {
			continue
		}
		if err := console.Set(name, func(call goja.FunctionCall) goja.Value {
			log(joinValues(call.Arguments))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) bindAnimationFrames() error {
	if !isFunction(h.global.Get(`requestAnimationFrame`)) {
		if err := h.global.Set(`requestAnimationFrame`, h.requestAnimationFramePolyfill); err != nil {
			return err
		}
	}
	if !isFunction(h.global.Get(`cancelAnimationFrame`)) {
		if err := h.global.Set(`cancelAnimationFrame`, func(call goja.FunctionCall) goja.Value {
			_ = h.timers.ClearTimeout(uint64(call.Argument(0).ToInteger()))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) requestAnimationFramePolyfill(call goja.FunctionCall) goja.Value {
	callback, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(h.runtime.NewTypeError(`requestAnimationFrame requires a function as first argument`))
	}
	id, err := h.timers.SetTimeout(func() {
		h.invoke(callback, goja.Undefined(), h.runtime.ToValue(h.clock()))
	}, frameInterval)
	if err != nil {
		panic(h.runtime.NewGoError(err))
	}
	return h.runtime.ToValue(id)
}

func (h *Host) bindLocation() error {
	if _, ok := h.global.Get(`location`).(*goja.Object); !ok {
		u := h.doc.URL()
		location := h.runtime.NewObject()
		search := ``
		if u.RawQuery != `` {
			search = `?` + u.RawQuery
		}
		for name, value := range map[string]any{
			`href`:     u.String(),
			`search`:   search,
			`pathname`: u.Path,
			`host`:     u.Host,
			`reload`: func(goja.FunctionCall) goja.Value {
				h.doc.Reload()
				return goja.Undefined()
			},
		} {
			if err := location.Set(name, value); err != nil {
				return err
			}
		}
		if err := h.global.Set(`location`, location); err != nil {
			return err
		}
	}
	if isFunction(h.global.Get(`confirm`)) {
		return nil
	}
	return h.global.Set(`confirm`, func(call goja.FunctionCall) goja.Value {
		return h.runtime.ToValue(h.doc.Confirm(call.Argument(0).String()))
	})
}

// RequestAnimationFrame returns the current global requestAnimationFrame,
// or nil if it isn't a function.
func (h *Host) RequestAnimationFrame() gameshim.RequestFrameFunc {
	value := h.global.Get(`requestAnimationFrame`)
	if h.rafValue != nil && value != nil && value.SameAs(h.rafValue) {
		return h.raf
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil
	}
	return func(callback gameshim.FrameCallback) uint64 {
		result, err := fn(goja.Undefined(), h.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
			callback(call.Argument(0).ToFloat())
			return goja.Undefined()
		}))
		if err != nil {
			h.logger.Err().Err(err).Log(`requestAnimationFrame threw`)
			return 0
		}
		return uint64(result.ToInteger())
	}
}

// SetRequestAnimationFrame replaces the global requestAnimationFrame.
func (h *Host) SetRequestAnimationFrame(fn gameshim.RequestFrameFunc) {
	h.raf = fn
	h.rafValue = h.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(h.runtime.NewTypeError(`requestAnimationFrame requires a function as first argument`))
		}
		return h.runtime.ToValue(fn(func(timestamp float64) {
			h.invoke(callback, goja.Undefined(), h.runtime.ToValue(timestamp))
		}))
	})
	if err := h.global.Set(`requestAnimationFrame`, h.rafValue); err != nil {
		h.logger.Err().Err(err).Log(`failed to set requestAnimationFrame`)
	}
}

// ConsoleError returns the current console.error, or nil.
func (h *Host) ConsoleError() gameshim.LogFunc {
	console, ok := h.global.Get(`console`).(*goja.Object)
	if !ok {
		return nil
	}
	value := console.Get(`error`)
	if h.consoleErrorValue != nil && value != nil && value.SameAs(h.consoleErrorValue) {
		return h.consoleError
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil
	}
	return func(args ...any) {
		values := make([]goja.Value, len(args))
		for i, arg := range args {
			values[i] = h.runtime.ToValue(arg)
		}
		h.invoke(fn, console, values...)
	}
}

// SetConsoleError replaces console.error. Arguments are passed through as
// goja values, which format like their JavaScript string conversion.
func (h *Host) SetConsoleError(fn gameshim.LogFunc) {
	console, ok := h.global.Get(`console`).(*goja.Object)
	if !ok {
		console = h.runtime.NewObject()
		_ = h.global.Set(`console`, console)
	}
	h.consoleError = fn
	h.consoleErrorValue = h.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg
		}
		fn(args...)
		return goja.Undefined()
	})
	if err := console.Set(`error`, h.consoleErrorValue); err != nil {
		h.logger.Err().Err(err).Log(`failed to set console.error`)
	}
}

// RuntimeHandle returns the global UnityInstance, if it exposes SendMessage.
func (h *Host) RuntimeHandle() gameshim.RuntimeHandle {
	obj, ok := h.global.Get(`UnityInstance`).(*goja.Object)
	if !ok {
		return nil
	}
	sendMessage, ok := goja.AssertFunction(obj.Get(`SendMessage`))
	if !ok {
		return nil
	}
	return &runtimeHandle{h: h, this: obj, sendMessage: sendMessage}
}

// SessionClient returns the global SFS2X, if it exposes isConnected and
// connect.
func (h *Host) SessionClient() gameshim.SessionClient {
	obj, ok := h.global.Get(`SFS2X`).(*goja.Object)
	if !ok {
		return nil
	}
	isConnected, ok := goja.AssertFunction(obj.Get(`isConnected`))
	if !ok {
		return nil
	}
	connect, ok := goja.AssertFunction(obj.Get(`connect`))
	if !ok {
		return nil
	}
	return &sessionClient{h: h, this: obj, isConnected: isConnected, connect: connect}
}

// invoke calls fn, logging (rather than propagating) any exception.
func (h *Host) invoke(fn goja.Callable, this goja.Value, args ...goja.Value) goja.Value {
	result, err := fn(this, args...)
	if err != nil {
		h.logger.Err().Err(err).Log(`uncaught exception in callback`)
		return goja.Undefined()
	}
	return result
}

type runtimeHandle struct {
	h           *Host
	this        *goja.Object
	sendMessage goja.Callable
}

func (x *runtimeHandle) SendMessage(target, method string) error {
	_, err := x.sendMessage(x.this, x.h.runtime.ToValue(target), x.h.runtime.ToValue(method))
	return err
}

type sessionClient struct {
	h           *Host
	this        *goja.Object
	isConnected goja.Callable
	connect     goja.Callable
}

// IsConnected panics if the client throws, which the watchdogs recover.
func (x *sessionClient) IsConnected() bool {
	result, err := x.isConnected(x.this)
	if err != nil {
		panic(err)
	}
	return result.ToBoolean()
}

func (x *sessionClient) Connect(host string, port int) error {
	_, err := x.connect(x.this, x.h.runtime.ToValue(host), x.h.runtime.ToValue(port))
	return err
}

func isFunction(v goja.Value) bool {
	_, ok := goja.AssertFunction(v)
	return ok
}

func joinValues(values []goja.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ` `)
}
