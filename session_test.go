package gameshim

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionInitializer(t *testing.T, h *fakeHost, opts ...Option) *SessionInitializer {
	t.Helper()
	x, err := NewSessionInitializer(h, h.doc, h.timers, opts...)
	require.NoError(t, err)
	return x
}

func recordManagerEvents(h *fakeHost) *[]GameManagerEventDetail {
	var events []GameManagerEventDetail
	h.doc.Window().AddEventListener(GameManagerEventType, func(event *eventloop.Event) {
		events = append(events, event.Detail().(GameManagerEventDetail))
	})
	return &events
}

func TestSessionInitializer_success(t *testing.T) {
	h := newFakeHost(t, `https://example.com/game`)
	runtime := &fakeRuntime{}
	h.runtime = runtime
	state := NewState()
	x := newTestSessionInitializer(t, h, WithState(state))

	require.True(t, x.Start())
	assert.False(t, x.Start())

	h.timers.Advance(time.Second)
	assert.Equal(t, []string{`GameManager.Initialize`}, runtime.calls)
	assert.True(t, state.SessionHandleFound())
	assert.Nil(t, x.Fallback())
	assert.Zero(t, h.managerSets)
	assert.Zero(t, h.timers.Pending())

	assert.False(t, x.Start())
}

func TestSessionInitializer_sendFailsCreatesFallbackOnce(t *testing.T) {
	h := newFakeHost(t, `https://example.com/game?user_name=Alice&balance=42.5`)
	runtime := &fakeRuntime{err: errors.New(`SendMessage: object GameManager not found`)}
	h.runtime = runtime
	events := recordManagerEvents(h)
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)
	x := newTestSessionInitializer(t, h, WithMetrics(metrics))

	require.True(t, x.Start())
	h.timers.Advance(time.Minute)

	assert.Len(t, runtime.calls, 1)
	assert.Equal(t, 1, h.managerSets)
	require.NotNil(t, h.manager)
	assert.Same(t, h.manager, x.Fallback())
	assert.True(t, h.manager.IsInitialized())
	assert.Equal(t, GameStateReady, h.manager.State())
	assert.Equal(t, PlayerData{Username: `Alice`, Balance: 42.5}, h.manager.PlayerData())
	require.Len(t, *events, 1)
	assert.Equal(t, GameReadyEvent, (*events)[0].Event)
	assert.Same(t, h.manager, (*events)[0].Data)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.sessionFallbacks))

	assert.False(t, x.Start())
	h.timers.Advance(time.Minute)
	assert.Equal(t, 1, h.managerSets)
}

func TestSessionInitializer_sendPanics(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	h.runtime = &fakeRuntime{panic: `boom`}
	x := newTestSessionInitializer(t, h)

	require.True(t, x.Start())
	h.timers.Advance(time.Second)
	require.NotNil(t, x.Fallback())
	assert.Equal(t, DefaultUsername, x.Fallback().PlayerData().Username)
}

func TestSessionInitializer_timeout(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	state := NewState()
	x := newTestSessionInitializer(t, h, WithState(state))

	require.True(t, x.Start())
	h.timers.Advance(29 * time.Second)
	assert.Nil(t, x.Fallback())
	assert.False(t, state.SessionHandleFound())

	h.timers.Advance(time.Second)
	require.NotNil(t, x.Fallback())
	assert.True(t, state.SessionHandleFound())
	assert.Equal(t, 1, h.managerSets)
	assert.Zero(t, h.timers.Pending())

	// a late runtime is never sent the command
	runtime := &fakeRuntime{}
	h.runtime = runtime
	h.timers.Advance(time.Minute)
	assert.Empty(t, runtime.calls)
}

// The poll and the timeout falling due together must still produce exactly
// one fallback, whichever of the two runs first.
func TestSessionInitializer_pollAndTimeoutCoincide(t *testing.T) {
	t.Run(`timeout first`, func(t *testing.T) {
		h := newFakeHost(t, `https://example.com/`)
		state := NewState()
		x := newTestSessionInitializer(t, h, WithState(state))

		require.True(t, x.Start())
		h.timers.Advance(29*time.Second + 500*time.Millisecond)
		runtime := &fakeRuntime{err: errors.New(`object GameManager not found`)}
		h.runtime = runtime
		h.timers.Advance(500 * time.Millisecond)

		assert.Empty(t, runtime.calls)
		assert.Equal(t, 1, h.managerSets)
		assert.True(t, state.SessionHandleFound())
		assert.Zero(t, h.timers.Pending())

		h.timers.Advance(time.Minute)
		assert.Empty(t, runtime.calls)
		assert.Equal(t, 1, h.managerSets)
	})

	t.Run(`poll first`, func(t *testing.T) {
		h := newFakeHost(t, `https://example.com/`)
		cfg := DefaultConfig()
		cfg.SessionTimeout = cfg.SessionPollInterval
		runtime := &fakeRuntime{err: errors.New(`object GameManager not found`)}
		h.runtime = runtime
		x := newTestSessionInitializer(t, h, WithConfig(cfg))

		require.True(t, x.Start())
		h.timers.Advance(cfg.SessionPollInterval)

		assert.Len(t, runtime.calls, 1)
		assert.Equal(t, 1, h.managerSets)
		assert.Zero(t, h.timers.Pending())

		h.timers.Advance(time.Minute)
		assert.Len(t, runtime.calls, 1)
		assert.Equal(t, 1, h.managerSets)
	})
}

func TestSessionInitializer_runtimeAppearsLater(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	x := newTestSessionInitializer(t, h)

	require.True(t, x.Start())
	h.timers.Advance(5 * time.Second)
	runtime := &fakeRuntime{}
	h.runtime = runtime
	h.timers.Advance(time.Second)
	assert.Len(t, runtime.calls, 1)
	h.timers.Advance(time.Minute)
	assert.Len(t, runtime.calls, 1)
	assert.Nil(t, x.Fallback())
}

func TestSessionInitializer_Close(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	x := newTestSessionInitializer(t, h)
	require.True(t, x.Start())
	x.Close()
	assert.Zero(t, h.timers.Pending())
	h.timers.Advance(time.Minute)
	assert.Nil(t, x.Fallback())
}

func TestNewSessionInitializer_invalid(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	_, err := NewSessionInitializer(nil, h.doc, h.timers)
	assert.Error(t, err)
	_, err = NewSessionInitializer(h, h.doc, h.timers, WithState(nil))
	assert.Error(t, err)
}

func TestParsePlayerData(t *testing.T) {
	for _, tc := range [...]struct {
		name  string
		query string
		want  PlayerData
	}{
		{`both`, `user_name=Alice&balance=42.5`, PlayerData{Username: `Alice`, Balance: 42.5}},
		{`empty`, ``, PlayerData{Username: DefaultUsername}},
		{`malformed balance`, `balance=notanumber`, PlayerData{Username: DefaultUsername}},
		{`numeric prefix`, `user_name=Bob&balance=12.5abc`, PlayerData{Username: `Bob`, Balance: 12.5}},
		{`negative`, `balance=-3`, PlayerData{Username: DefaultUsername, Balance: -3}},
		{`empty name`, `user_name=&balance=1`, PlayerData{Username: DefaultUsername, Balance: 1}},
		{`escaped`, `user_name=A%20B`, PlayerData{Username: `A B`}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			query, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ParsePlayerData(query))
		})
	}
}

func TestGameManager_TriggerEvent(t *testing.T) {
	target := eventloop.NewEventTarget()
	var got []GameManagerEventDetail
	target.AddEventListener(GameManagerEventType, func(event *eventloop.Event) {
		got = append(got, event.Detail().(GameManagerEventDetail))
	})
	gm := NewGameManager(PlayerData{Username: `x`}, target, nil)
	assert.Equal(t, GameStateLoading, gm.State())

	gm.TriggerEvent(`custom`)
	require.Len(t, got, 1)
	assert.Equal(t, `custom`, got[0].Event)
	assert.Same(t, gm, got[0].Data)

	NewGameManager(PlayerData{}, nil, nil).TriggerEvent(`dropped`)
}
