package gameshim

import (
	"errors"
	"testing"
	"time"

	"github.com/joeycumines/go-gameshim/internal/virtualtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_After(t *testing.T) {
	timers := virtualtime.New()
	s := NewScope(timers, nil)

	var calls int
	task, err := s.After(10*time.Millisecond, func() { calls++ })
	require.NoError(t, err)
	assert.True(t, task.Active())
	assert.Equal(t, 1, s.Len())

	timers.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.False(t, task.Active())
	assert.Zero(t, s.Len())

	task.Cancel()
	task.Cancel()
}

func TestScope_Every(t *testing.T) {
	timers := virtualtime.New()
	s := NewScope(timers, nil)

	var calls int
	var task *Task
	task, err := s.Every(10*time.Millisecond, func() {
		calls++
		if calls == 3 {
			task.Cancel()
		}
	})
	require.NoError(t, err)

	timers.Advance(time.Second)
	assert.Equal(t, 3, calls)
	assert.False(t, task.Active())
	assert.Zero(t, timers.Pending())
}

func TestScope_Close(t *testing.T) {
	timers := virtualtime.New()
	s := NewScope(timers, nil)

	var calls int
	for i := 0; i < 3; i++ {
		_, err := s.After(time.Duration(i+1)*time.Millisecond, func() { calls++ })
		require.NoError(t, err)
	}
	_, err := s.Every(time.Millisecond, func() { calls++ })
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	s.Close()
	s.Close()
	assert.Zero(t, s.Len())
	assert.Zero(t, timers.Pending())
	timers.Advance(time.Second)
	assert.Zero(t, calls)

	_, err = s.After(time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrScopeClosed)
}

func TestScope_recoversPanics(t *testing.T) {
	timers := virtualtime.New()
	s := NewScope(timers, nil)

	var after bool
	_, err := s.After(time.Millisecond, func() { panic(`boom`) })
	require.NoError(t, err)
	_, err = s.After(2*time.Millisecond, func() { after = true })
	require.NoError(t, err)

	assert.NotPanics(t, func() { timers.Advance(time.Second) })
	assert.True(t, after)
}

type failingTimers struct{ Timers }

func (failingTimers) SetTimeout(func(), time.Duration) (uint64, error) {
	return 0, errors.New(`no timers`)
}

func TestScope_scheduleError(t *testing.T) {
	s := NewScope(failingTimers{}, nil)
	task, err := s.After(time.Millisecond, func() {})
	assert.Error(t, err)
	assert.Nil(t, task)
	assert.Zero(t, s.Len())
}

func TestTask_nil(t *testing.T) {
	var task *Task
	assert.False(t, task.Active())
	task.Cancel()
}
