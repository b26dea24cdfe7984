package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
)

// FrameDuration is the clock step of one pumped frame.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: scheduler did not settle")

// Harness drives an isolated scheduler with a fake clock, one frame at a
// time. It replaces the process-wide default scheduler until Cleanup so
// code that falls back to animation.DefaultScheduler is driven too.
type Harness struct {
	sched *animation.Scheduler
	clock *FakeClock
	start time.Time
	prev  *animation.Scheduler
}

// NewHarness creates a harness. Call Cleanup() when done, or use
// NewHarnessWithT() instead.
func NewHarness(opts ...animation.SchedulerOption) *Harness {
	clk := NewFakeClock()
	opts = append([]animation.SchedulerOption{animation.WithClock(clk)}, opts...)
	h := &Harness{
		sched: animation.NewScheduler(opts...),
		clock: clk,
		start: clk.Now(),
	}
	h.prev = animation.SetDefaultScheduler(h.sched)
	return h
}

// NewHarnessWithT creates a harness that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewHarnessWithT(t testing.TB, opts ...animation.SchedulerOption) *Harness {
	h := NewHarness(opts...)
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup restores the previous default scheduler.
func (h *Harness) Cleanup() {
	animation.SetDefaultScheduler(h.prev)
}

// Scheduler returns the harness scheduler.
func (h *Harness) Scheduler() *animation.Scheduler {
	return h.sched
}

// Clock returns the fake clock for advancing time in tests.
func (h *Harness) Clock() *FakeClock {
	return h.clock
}

// Now returns the elapsed fake time since the harness was created.
func (h *Harness) Now() time.Duration {
	return h.clock.Now().Sub(h.start)
}

// Pump advances the clock by one frame and runs it.
func (h *Harness) Pump() {
	h.clock.Advance(FrameDuration)
	h.sched.Frame()
}

// PumpFrames runs n frames.
func (h *Harness) PumpFrames(n int) {
	for range n {
		h.Pump()
	}
}

// PumpFor runs frames until at least d of fake time has passed.
func (h *Harness) PumpFor(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += FrameDuration {
		h.Pump()
	}
}

// PumpAndSettle runs frames until the scheduler stops requesting them or
// the timeout elapses. It returns the number of frames run.
func (h *Harness) PumpAndSettle(timeout time.Duration) (int, error) {
	frames := 0
	for elapsed := time.Duration(0); elapsed < timeout; elapsed += FrameDuration {
		if !h.sched.IsRequesting() {
			return frames, nil
		}
		h.Pump()
		frames++
	}
	if h.sched.IsRequesting() {
		return frames, ErrSettleTimeout
	}
	return frames, nil
}

// MustSettle is PumpAndSettle that fails the test on timeout.
func (h *Harness) MustSettle(t testing.TB, timeout time.Duration) int {
	t.Helper()
	frames, err := h.PumpAndSettle(timeout)
	if err != nil {
		t.Fatalf("after %d frames: %v", frames, err)
	}
	return frames
}
