// Package clock schedules delayed callbacks against virtual time that only
// moves when the owner advances it.
package clock

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

type timer struct {
	handle Handle
	due    time.Duration
	fn     func()
	index  int
}

// Timers is a single-threaded queue of callbacks keyed by virtual due time.
// Callbacks run inside Advance, in due order; ties run in scheduling order.
type Timers struct {
	now   time.Duration
	next  Handle
	queue timerHeap
	live  map[Handle]*timer
}

func New() *Timers {
	return &Timers{live: map[Handle]*timer{}}
}

// Now is the virtual time elapsed since the queue was created.
func (t *Timers) Now() time.Duration {
	return t.now
}

// After schedules fn to run once d of virtual time has passed.
func (t *Timers) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	t.next++
	tm := &timer{handle: t.next, due: t.now + d, fn: fn}
	heap.Push(&t.queue, tm)
	t.live[tm.handle] = tm
	return tm.handle
}

// Cancel removes a pending callback. It reports false when h already ran or
// was never scheduled.
func (t *Timers) Cancel(h Handle) bool {
	tm, ok := t.live[h]
	if !ok {
		return false
	}
	heap.Remove(&t.queue, tm.index)
	delete(t.live, h)
	return true
}

// Pending is the number of callbacks waiting to run.
func (t *Timers) Pending() int {
	return len(t.live)
}

// Advance moves virtual time forward by dt and runs every callback that
// comes due, including ones scheduled by callbacks during this advance.
func (t *Timers) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := t.now + dt

	for len(t.queue) > 0 && t.queue[0].due <= target {
		tm := heap.Pop(&t.queue).(*timer)
		delete(t.live, tm.handle)
		t.now = tm.due
		tm.fn()
	}
	t.now = target
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due == h[j].due {
		return h[i].handle < h[j].handle
	}
	return h[i].due < h[j].due
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	tm := x.(*timer)
	tm.index = len(*h)
	*h = append(*h, tm)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	tm := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return tm
}
