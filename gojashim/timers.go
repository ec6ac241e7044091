package gojashim

import (
	"time"

	"github.com/dop251/goja"
)

// bindTimers installs setTimeout, setInterval, clearTimeout and
// clearInterval, scheduled on the same [gameshim.Timers] as the shim, so
// page scripts and watchdogs share one clock.
func (h *Host) bindTimers() error {
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		`setTimeout`:    h.timerFunc(`setTimeout`, h.timers.SetTimeout),
		`setInterval`:   h.timerFunc(`setInterval`, h.timers.SetInterval),
		`clearTimeout`:  h.clearFunc(h.timers.ClearTimeout),
		`clearInterval`: h.clearFunc(h.timers.ClearInterval),
	} {
		if isFunction(h.global.Get(name)) {
			continue
		}
		if err := h.global.Set(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) timerFunc(name string, schedule func(fn func(), delay time.Duration) (uint64, error)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(h.runtime.NewTypeError(name + ` requires a function as first argument`))
		}
		delay := call.Argument(1).ToInteger()
		if delay < 0 {
			delay = 0
		}
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		id, err := schedule(func() {
			h.invoke(callback, goja.Undefined(), args...)
		}, time.Duration(delay)*time.Millisecond)
		if err != nil {
			panic(h.runtime.NewGoError(err))
		}
		return h.runtime.ToValue(id)
	}
}

func (h *Host) clearFunc(clear func(id uint64) error) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		// unknown ids are ignored, as in browsers
		_ = clear(uint64(call.Argument(0).ToInteger()))
		return goja.Undefined()
	}
}
