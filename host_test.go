package gameshim

import (
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/go-gameshim/internal/virtualtime"
	"github.com/stretchr/testify/require"
)

const testPageMarkup = `<!DOCTYPE html>
<html>
<head><title>game</title></head>
<body>
<div class="loading-screen">
	<div class="progress"><div class="progress-fill" style="width: 0%"></div></div>
	<div class="loading-text"><p>Loading...</p></div>
	<div class="spinner"></div>
</div>
<div class="pulse"></div>
<canvas id="unity-canvas"></canvas>
</body>
</html>`

type fakeRuntime struct {
	calls []string
	err   error
	panic any
}

func (x *fakeRuntime) SendMessage(target, method string) error {
	x.calls = append(x.calls, target+`.`+method)
	if x.panic != nil {
		panic(x.panic)
	}
	return x.err
}

type fakeClient struct {
	connected func() bool
	err       error
	connects  []string
}

func (x *fakeClient) IsConnected() bool {
	return x.connected != nil && x.connected()
}

func (x *fakeClient) Connect(host string, port int) error {
	x.connects = append(x.connects, host)
	_ = port
	return x.err
}

type fakeHost struct {
	timers       *virtualtime.Timers
	doc          *Document
	raf          RequestFrameFunc
	consoleError LogFunc
	runtime      RuntimeHandle
	client       SessionClient
	manager      *GameManager
	rafSets      int
	consoleSets  int
	managerSets  int
	logged       [][]any
	confirms     []string
	confirm      bool
	reloads      int
}

// newFakeHost returns a host with a 16ms animation frame primitive, and a
// console that records every call.
func newFakeHost(t *testing.T, pageURL string) *fakeHost {
	t.Helper()
	h := &fakeHost{timers: virtualtime.New()}
	doc, err := NewDocument(pageURL, strings.NewReader(testPageMarkup),
		WithConfirm(func(message string) bool {
			h.confirms = append(h.confirms, message)
			return h.confirm
		}),
		WithReload(func() { h.reloads++ }),
	)
	require.NoError(t, err)
	h.doc = doc
	h.raf = h.frameAfter(16 * time.Millisecond)
	h.consoleError = func(args ...any) { h.logged = append(h.logged, args) }
	return h
}

func (h *fakeHost) frameAfter(delay time.Duration) RequestFrameFunc {
	return func(callback FrameCallback) uint64 {
		id, _ := h.timers.SetTimeout(func() { callback(h.timers.NowMillis()) }, delay)
		return id
	}
}

func (h *fakeHost) RequestAnimationFrame() RequestFrameFunc { return h.raf }

func (h *fakeHost) SetRequestAnimationFrame(fn RequestFrameFunc) {
	h.rafSets++
	h.raf = fn
}

func (h *fakeHost) ConsoleError() LogFunc { return h.consoleError }

func (h *fakeHost) SetConsoleError(fn LogFunc) {
	h.consoleSets++
	h.consoleError = fn
}

func (h *fakeHost) RuntimeHandle() RuntimeHandle { return h.runtime }

func (h *fakeHost) SetGameManager(gm *GameManager) {
	h.managerSets++
	h.manager = gm
}

func (h *fakeHost) SessionClient() SessionClient { return h.client }

func (h *fakeHost) Document() *Document { return h.doc }

// clock returns the virtual clock, as a [Clock].
func (h *fakeHost) clock() Clock { return h.timers.NowMillis }
