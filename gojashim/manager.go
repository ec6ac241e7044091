package gojashim

import (
	"github.com/dop251/goja"
	"github.com/joeycumines/go-gameshim"
)

// SetGameManager publishes gm as the global GameManager.
func (h *Host) SetGameManager(gm *gameshim.GameManager) {
	if err := h.global.Set(`GameManager`, h.managerObject(gm)); err != nil {
		h.logger.Err().Err(err).Log(`failed to set GameManager`)
	}
}

// managerObject returns the (cached) JavaScript view of gm.
func (h *Host) managerObject(gm *gameshim.GameManager) *goja.Object {
	if obj, ok := h.managers[gm]; ok {
		return obj
	}
	player := gm.PlayerData()
	playerData := h.runtime.NewObject()
	_ = playerData.Set(`username`, player.Username)
	_ = playerData.Set(`balance`, player.Balance)

	obj := h.runtime.NewObject()
	_ = obj.Set(`isInitialized`, gm.IsInitialized())
	_ = obj.DefineAccessorProperty(`gameState`,
		h.runtime.ToValue(func(goja.FunctionCall) goja.Value {
			return h.runtime.ToValue(string(gm.State()))
		}),
		nil,
		goja.FLAG_FALSE,
		goja.FLAG_TRUE,
	)
	_ = obj.Set(`playerData`, playerData)
	_ = obj.Set(`Initialize`, func(goja.FunctionCall) goja.Value {
		gm.Initialize()
		return goja.Undefined()
	})
	_ = obj.Set(`triggerEvent`, func(call goja.FunctionCall) goja.Value {
		gm.TriggerEvent(call.Argument(0).String())
		return goja.Undefined()
	})

	h.managers[gm] = obj
	return obj
}

// BindState exposes state as the read-only global UnityFixes.
func (h *Host) BindState(state *gameshim.State) error {
	obj := h.runtime.NewObject()
	monitor := h.runtime.NewObject()
	for target, props := range map[*goja.Object]map[string]func() any{
		obj: {
			`isInitialized`:     func() any { return state.Initialized() },
			`gameManagerFound`:  func() any { return state.SessionHandleFound() },
			`playerLoopFixed`:   func() any { return state.FrameGuardActive() },
			`connectionRetries`: func() any { return state.ReconnectAttempts() },
		},
		monitor: {
			`recursionDetected`: func() any { return state.RecursionSuspected() },
		},
	} {
		for name, get := range props {
			if err := target.DefineAccessorProperty(name,
				h.runtime.ToValue(func(goja.FunctionCall) goja.Value {
					return h.runtime.ToValue(get())
				}),
				nil,
				goja.FLAG_FALSE,
				goja.FLAG_TRUE,
			); err != nil {
				return err
			}
		}
	}
	if err := obj.Set(`performanceMonitor`, monitor); err != nil {
		return err
	}
	return h.global.Set(`UnityFixes`, obj)
}
