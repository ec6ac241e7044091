package gameshim

import (
	"testing"
	"time"

	"github.com/joeycumines/go-gameshim/internal/virtualtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrameGuard(t *testing.T, timers Timers, now *float64, opts ...Option) *FrameGuard {
	t.Helper()
	opts = append([]Option{WithClock(func() float64 { return *now })}, opts...)
	g, err := NewFrameGuard(timers, opts...)
	require.NoError(t, err)
	return g
}

func TestFrameGuard_Wrap_recursionDeferred(t *testing.T) {
	timers := virtualtime.New()
	var now float64
	state := NewState()
	g := newTestFrameGuard(t, timers, &now, WithState(state))

	var delegated int
	wrapped := g.Wrap(func(FrameCallback) uint64 {
		delegated++
		return uint64(delegated)
	})

	for i := 0; i < 100; i++ {
		require.NotZero(t, wrapped(func(float64) {}))
	}
	assert.Equal(t, 100, delegated)
	assert.False(t, state.RecursionSuspected())

	var timestamps []float64
	assert.Zero(t, wrapped(func(ts float64) { timestamps = append(timestamps, ts) }))
	assert.Equal(t, 100, delegated)
	assert.True(t, state.RecursionSuspected())

	timers.Advance(15 * time.Millisecond)
	assert.Empty(t, timestamps)
	timers.Advance(time.Millisecond)
	assert.Equal(t, []float64{16}, timestamps)

	// the counter resets, after a deferral
	assert.NotZero(t, wrapped(func(float64) {}))
	assert.Equal(t, 101, delegated)
}

func TestFrameGuard_Wrap_slowFrameResetsCounter(t *testing.T) {
	timers := virtualtime.New()
	var now float64
	g := newTestFrameGuard(t, timers, &now)

	var delegated int
	wrapped := g.Wrap(func(FrameCallback) uint64 {
		delegated++
		return 1
	})

	for i := 0; i < 50; i++ {
		wrapped(func(float64) {})
	}
	now += 5
	wrapped(func(float64) {})
	for i := 0; i < 100; i++ {
		wrapped(func(float64) {})
	}
	assert.Equal(t, 151, delegated)
	assert.Zero(t, timers.Pending())

	wrapped(func(float64) {})
	assert.Equal(t, 151, delegated)
	assert.Equal(t, 1, timers.Pending())
}

func TestFrameGuard_Wrap_exactlyAtFloor(t *testing.T) {
	timers := virtualtime.New()
	var now float64
	g := newTestFrameGuard(t, timers, &now)

	var delegated int
	wrapped := g.Wrap(func(FrameCallback) uint64 {
		delegated++
		return 1
	})
	for i := 0; i < 500; i++ {
		now++
		wrapped(func(float64) {})
	}
	assert.Equal(t, 500, delegated)
}

func TestFrameGuard_Install_once(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	state := NewState()
	now := float64(0)
	g1 := newTestFrameGuard(t, h.timers, &now, WithState(state))
	g2 := newTestFrameGuard(t, h.timers, &now, WithState(state))

	var calls int
	h.raf = func(FrameCallback) uint64 {
		calls++
		return 7
	}

	assert.True(t, g1.Install(h))
	assert.False(t, g1.Install(h))
	assert.False(t, g2.Install(h))
	assert.Equal(t, 1, h.rafSets)
	assert.True(t, state.FrameGuardActive())

	now = 10
	assert.Equal(t, uint64(7), h.raf(func(float64) {}))
	assert.Equal(t, 1, calls)
}

func TestFrameGuard_Install_withoutPrimitive(t *testing.T) {
	h := newFakeHost(t, `https://example.com/`)
	h.raf = nil
	g, err := NewFrameGuard(h.timers, WithClock(h.clock()))
	require.NoError(t, err)

	require.True(t, g.Install(h))
	require.NotNil(t, h.raf)

	var timestamps []float64
	assert.NotZero(t, h.raf(func(ts float64) { timestamps = append(timestamps, ts) }))
	h.timers.Advance(16 * time.Millisecond)
	assert.Equal(t, []float64{16}, timestamps)
}

func TestFrameGuard_Close(t *testing.T) {
	timers := virtualtime.New()
	var now float64
	g := newTestFrameGuard(t, timers, &now)
	wrapped := g.Wrap(func(FrameCallback) uint64 { return 1 })
	var called bool
	for i := 0; i <= 100; i++ {
		wrapped(func(float64) { called = true })
	}
	require.Equal(t, 1, timers.Pending())
	g.Close()
	timers.Advance(time.Second)
	assert.False(t, called)
}
