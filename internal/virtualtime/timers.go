// Package virtualtime provides a deterministic, manually advanced
// implementation of the JavaScript timer API, for testing code that would
// otherwise run on an event loop.
package virtualtime

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

// ErrTimerNotFound is returned when clearing an unknown, fired, or
// already cleared timer.
var ErrTimerNotFound = errors.New(`virtualtime: timer not found`)

// minInterval is the clamp applied to repeating timers, to guarantee
// progress.
const minInterval = time.Millisecond

type (
	// Timers is a virtual clock, and the timers scheduled against it.
	// Callbacks only run within [Timers.Advance], on the calling goroutine.
	Timers struct {
		timers  map[uint64]*timer
		queue   timerQueue
		now     time.Duration
		seq     uint64
		nextID  uint64
		mu      sync.Mutex
		running bool
	}

	timer struct {
		fn       func()
		when     time.Duration
		interval time.Duration
		id       uint64
		seq      uint64
		index    int
	}

	timerQueue []*timer
)

// New returns timers with the clock at zero.
func New() *Timers {
	return &Timers{timers: make(map[uint64]*timer)}
}

// Now returns the elapsed virtual time.
func (x *Timers) Now() time.Duration {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.now
}

// NowMillis returns the elapsed virtual time in milliseconds, suitable as a
// performance.now() clock.
func (x *Timers) NowMillis() float64 {
	return float64(x.Now()) / float64(time.Millisecond)
}

// Pending returns the number of scheduled timers.
func (x *Timers) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.timers)
}

func (x *Timers) SetTimeout(fn func(), delay time.Duration) (uint64, error) {
	return x.add(fn, delay, 0), nil
}

func (x *Timers) SetInterval(fn func(), delay time.Duration) (uint64, error) {
	return x.add(fn, delay, max(delay, minInterval)), nil
}

func (x *Timers) ClearTimeout(id uint64) error {
	return x.clear(id)
}

func (x *Timers) ClearInterval(id uint64) error {
	return x.clear(id)
}

func (x *Timers) add(fn func(), delay, interval time.Duration) uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.nextID++
	x.seq++
	t := &timer{
		fn:       fn,
		when:     x.now + max(delay, 0),
		interval: interval,
		id:       x.nextID,
		seq:      x.seq,
	}
	x.timers[t.id] = t
	heap.Push(&x.queue, t)
	return t.id
}

func (x *Timers) clear(id uint64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	t, ok := x.timers[id]
	if !ok {
		return ErrTimerNotFound
	}
	delete(x.timers, id)
	if t.index >= 0 {
		heap.Remove(&x.queue, t.index)
	}
	return nil
}

// Advance moves the clock forward by d, running every timer that falls due,
// in deadline order (ties in scheduling order). Timers scheduled by
// callbacks run within the same call, if they fall due.
func (x *Timers) Advance(d time.Duration) {
	x.mu.Lock()
	if x.running {
		x.mu.Unlock()
		panic(`virtualtime: reentrant advance`)
	}
	x.running = true
	target := x.now + d
	for len(x.queue) != 0 && x.queue[0].when <= target {
		t := heap.Pop(&x.queue).(*timer)
		x.now = t.when
		if t.interval > 0 {
			x.seq++
			t.seq = x.seq
			t.when += t.interval
			heap.Push(&x.queue, t)
		} else {
			delete(x.timers, t.id)
		}
		fn := t.fn
		x.mu.Unlock()
		fn()
		x.mu.Lock()
	}
	x.now = target
	x.running = false
	x.mu.Unlock()
}

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when < q[j].when
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(v any) {
	t := v.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
