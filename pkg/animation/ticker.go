package animation

import "time"

// TickFunc receives the frame delta shared by every registrant of a frame.
type TickFunc func(dt time.Duration)

// Ticker calls a callback on each frame while active.
//
// Ticker is the low-level registration handle of a [Scheduler]. Most code
// should use [Controller] rather than Ticker directly. Start registers the
// ticker, Stop unregisters it immediately: a ticker stopped during a frame,
// including from inside its own callback, is not called again.
type Ticker struct {
	sched    *Scheduler
	callback TickFunc
	isActive bool
	elapsed  time.Duration
}

// Start registers the ticker with its scheduler. Starting an active ticker
// is a no-op.
func (t *Ticker) Start() {
	t.sched.register(t)
}

// Stop unregisters the ticker. Stopping an inactive ticker is a no-op.
func (t *Ticker) Stop() {
	t.sched.unregister(t)
}

// IsActive reports whether the ticker is registered.
func (t *Ticker) IsActive() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	return t.isActive
}

// Elapsed returns the sum of frame deltas delivered since Start.
func (t *Ticker) Elapsed() time.Duration {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	return t.elapsed
}
