package gojashim

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-gameshim"
)

type (
	listenerKey struct {
		fn        *goja.Object
		eventType string
	}

	listenerEntry struct {
		id eventloop.ListenerID
	}
)

func (h *Host) bindEvents() error {
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		`addEventListener`:    h.addEventListener,
		`removeEventListener`: h.removeEventListener,
		`dispatchEvent`:       h.dispatchEvent,
	} {
		if err := h.global.Set(name, fn); err != nil {
			return err
		}
	}
	if isFunction(h.global.Get(`CustomEvent`)) {
		return nil
	}
	return h.global.Set(`CustomEvent`, h.customEvent)
}

// addEventListener registers a listener on the document's window target.
// As in the DOM, registering the same function twice is a no-op.
func (h *Host) addEventListener(call goja.FunctionCall) goja.Value {
	eventType := call.Argument(0).String()
	fnObj, ok := call.Argument(1).(*goja.Object)
	if !ok {
		return goja.Undefined()
	}
	fn, ok := goja.AssertFunction(fnObj)
	if !ok {
		panic(h.runtime.NewTypeError(`addEventListener requires a function as second argument`))
	}
	key := listenerKey{eventType: eventType, fn: fnObj}
	if _, ok := h.listeners[key]; ok {
		return goja.Undefined()
	}
	id := h.doc.Window().AddEventListener(eventType, func(event *eventloop.Event) {
		h.invoke(fn, h.global, h.eventValue(event))
	})
	h.listeners[key] = listenerEntry{id: id}
	return goja.Undefined()
}

func (h *Host) removeEventListener(call goja.FunctionCall) goja.Value {
	fnObj, ok := call.Argument(1).(*goja.Object)
	if !ok {
		return goja.Undefined()
	}
	key := listenerKey{eventType: call.Argument(0).String(), fn: fnObj}
	if entry, ok := h.listeners[key]; ok {
		delete(h.listeners, key)
		h.doc.Window().RemoveEventListenerByID(key.eventType, entry.id)
	}
	return goja.Undefined()
}

// dispatchEvent dispatches an event object (anything with a type, and an
// optional detail) on the window. The detail is exported to Go, with Error
// instances converted to Go errors.
func (h *Host) dispatchEvent(call goja.FunctionCall) goja.Value {
	obj, ok := call.Argument(0).(*goja.Object)
	if !ok {
		panic(h.runtime.NewTypeError(`dispatchEvent requires an event`))
	}
	eventType := obj.Get(`type`)
	if eventType == nil || goja.IsUndefined(eventType) {
		panic(h.runtime.NewTypeError(`dispatchEvent requires an event with a type`))
	}
	event := eventloop.NewCustomEvent(eventType.String(), exportDetail(obj.Get(`detail`)))
	return h.runtime.ToValue(h.doc.DispatchEvent(event.EventPtr()))
}

func (h *Host) customEvent(call goja.ConstructorCall) *goja.Object {
	if len(call.Arguments) == 0 {
		panic(h.runtime.NewTypeError(`CustomEvent requires a type`))
	}
	detail := goja.Null()
	if init, ok := call.Argument(1).(*goja.Object); ok {
		if v := init.Get(`detail`); v != nil && !goja.IsUndefined(v) {
			detail = v
		}
	}
	_ = call.This.Set(`type`, call.Argument(0).String())
	_ = call.This.Set(`detail`, detail)
	return call.This
}

// eventValue converts an event for delivery to a JavaScript listener.
func (h *Host) eventValue(event *eventloop.Event) goja.Value {
	obj := h.runtime.NewObject()
	_ = obj.Set(`type`, event.Type)
	_ = obj.Set(`detail`, h.detailValue(event.Detail()))
	return obj
}

func (h *Host) detailValue(detail any) goja.Value {
	switch detail := detail.(type) {
	case nil:
		return goja.Null()
	case goja.Value:
		return detail
	case gameshim.GameManagerEventDetail:
		obj := h.runtime.NewObject()
		_ = obj.Set(`event`, detail.Event)
		if detail.Data != nil {
			_ = obj.Set(`data`, h.managerObject(detail.Data))
		}
		return obj
	case error:
		return h.runtime.NewGoError(detail)
	default:
		return h.runtime.ToValue(detail)
	}
}

func exportDetail(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == `Error` {
		return errors.New(obj.String())
	}
	return v.Export()
}
