package animation

import (
	"container/heap"
	"time"
)

// Timer is a deferred call on the scheduler timeline, created by
// [Scheduler.After]. It fires at the first frame whose time is at or past
// its due time, before that frame's tickers run.
type Timer struct {
	sched *Scheduler
	due   time.Time
	seq   uint64
	fn    func()
	index int
}

// Stop cancels the timer. It returns false if the timer already fired or
// was stopped.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&s.timers, t.index)
	return true
}

// Pending reports whether the timer has neither fired nor been stopped.
func (t *Timer) Pending() bool {
	if t == nil {
		return false
	}
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	return t.index >= 0
}

// Due returns the scheduler time at which the timer fires.
func (t *Timer) Due() time.Time {
	return t.due
}

// timerHeap orders timers by due time, then by creation order so timers
// with equal due times fire in the order they were scheduled.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
