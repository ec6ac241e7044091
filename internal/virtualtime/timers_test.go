package virtualtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimers_timeoutOrdering(t *testing.T) {
	timers := New()
	var order []string
	_, _ = timers.SetTimeout(func() { order = append(order, `b`) }, 50*time.Millisecond)
	_, _ = timers.SetTimeout(func() { order = append(order, `a`) }, 10*time.Millisecond)
	_, _ = timers.SetTimeout(func() { order = append(order, `c1`) }, 100*time.Millisecond)
	_, _ = timers.SetTimeout(func() { order = append(order, `c2`) }, 100*time.Millisecond)

	timers.Advance(99 * time.Millisecond)
	assert.Equal(t, []string{`a`, `b`}, order)
	assert.Equal(t, 99*time.Millisecond, timers.Now())

	timers.Advance(time.Millisecond)
	assert.Equal(t, []string{`a`, `b`, `c1`, `c2`}, order)
	assert.Equal(t, 0, timers.Pending())
}

func TestTimers_clockDuringCallback(t *testing.T) {
	timers := New()
	var at time.Duration
	_, _ = timers.SetTimeout(func() { at = timers.Now() }, 30*time.Millisecond)
	timers.Advance(time.Second)
	assert.Equal(t, 30*time.Millisecond, at)
	assert.Equal(t, float64(1000), timers.NowMillis())
}

func TestTimers_interval(t *testing.T) {
	timers := New()
	var count int
	id, err := timers.SetInterval(func() { count++ }, 100*time.Millisecond)
	require.NoError(t, err)

	timers.Advance(350 * time.Millisecond)
	assert.Equal(t, 3, count)

	require.NoError(t, timers.ClearInterval(id))
	timers.Advance(time.Second)
	assert.Equal(t, 3, count)
	assert.ErrorIs(t, timers.ClearInterval(id), ErrTimerNotFound)
}

func TestTimers_clearFromCallback(t *testing.T) {
	timers := New()
	var count int
	var id uint64
	id, _ = timers.SetInterval(func() {
		count++
		if count == 2 {
			_ = timers.ClearInterval(id)
		}
	}, 10*time.Millisecond)
	timers.Advance(time.Second)
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, timers.Pending())
}

func TestTimers_nestedScheduling(t *testing.T) {
	timers := New()
	var fired []time.Duration
	_, _ = timers.SetTimeout(func() {
		fired = append(fired, timers.Now())
		_, _ = timers.SetTimeout(func() {
			fired = append(fired, timers.Now())
		}, 20*time.Millisecond)
	}, 10*time.Millisecond)
	timers.Advance(25 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, fired)
	timers.Advance(5 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond}, fired)
}

func TestTimers_clearTimeout(t *testing.T) {
	timers := New()
	called := false
	id, _ := timers.SetTimeout(func() { called = true }, time.Millisecond)
	require.NoError(t, timers.ClearTimeout(id))
	timers.Advance(time.Second)
	assert.False(t, called)
	assert.ErrorIs(t, timers.ClearTimeout(id), ErrTimerNotFound)
}
