package animation

import (
	"container/heap"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

const (
	// NominalFrame is the frame delta used for the first frame after the
	// scheduler becomes active, when no previous frame time exists.
	NominalFrame = 16 * time.Millisecond

	// DefaultMaxFrameDelta caps the shared frame delta so a stalled host
	// (backgrounded tab, debugger pause) does not make springs explode.
	DefaultMaxFrameDelta = time.Second / 30
)

// FrameSource delivers display refresh callbacks to a [Scheduler].
//
// The scheduler calls Start when it gains its first registrant, timer or
// dispatched callback and Stop once a frame leaves none behind. Start and
// Stop may be called from inside a frame.
type FrameSource interface {
	Start(frame func())
	Stop()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock sets the scheduler time source.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithFrameSource sets the platform frame source. Without one the host
// calls [Scheduler.Frame] itself.
func WithFrameSource(src FrameSource) SchedulerOption {
	return func(s *Scheduler) { s.source = src }
}

// WithMaxFrameDelta overrides [DefaultMaxFrameDelta].
func WithMaxFrameDelta(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxDelta = d
		}
	}
}

// Scheduler fans one display refresh out to every active animation.
//
// Each [Scheduler.Frame] computes a single delta time shared by all
// registrants, runs dispatched callbacks, fires due timers and then ticks a
// snapshot of the registered tickers in registration order. The scheduler
// requests frames from its [FrameSource] only while it has work.
//
// Animations are driven from a single frame thread. The registrant, timer
// and dispatch queues are guarded so other goroutines may call
// [Scheduler.Dispatch], but controllers must only be touched from frame
// callbacks or from the goroutine that pumps frames.
type Scheduler struct {
	mu         sync.Mutex
	frameMu    sync.Mutex
	clock      Clock
	source     FrameSource
	maxDelta   time.Duration
	tickers    []*Ticker
	timers     timerHeap
	timerSeq   uint64
	dispatches []func()
	lastFrame  time.Time
	requesting bool
	frames     int64
}

// NewScheduler creates an isolated scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		clock:    SystemClock{},
		maxDelta: DefaultMaxFrameDelta,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultMu    sync.Mutex
	defaultSched *Scheduler
)

// DefaultScheduler returns the process-wide scheduler, creating it on first
// use with the system clock and a 60Hz [TickerSource].
func DefaultScheduler() *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSched == nil {
		defaultSched = NewScheduler(WithFrameSource(NewTickerSource(time.Second / 60)))
	}
	return defaultSched
}

// SetDefaultScheduler replaces the process-wide scheduler. Returns the
// previous scheduler so callers can restore it during cleanup.
func SetDefaultScheduler(s *Scheduler) *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultSched
	defaultSched = s
	return prev
}

// Now returns the current time from the scheduler clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// NewTicker creates an inactive ticker bound to this scheduler.
func (s *Scheduler) NewTicker(callback TickFunc) *Ticker {
	return &Ticker{sched: s, callback: callback}
}

// Register creates and starts a ticker for fn.
func (s *Scheduler) Register(fn TickFunc) *Ticker {
	t := s.NewTicker(fn)
	t.Start()
	return t
}

// Unregister stops t. It is equivalent to t.Stop().
func (s *Scheduler) Unregister(t *Ticker) {
	if t != nil {
		t.Stop()
	}
}

// After schedules fn to run on the frame thread once d has elapsed on the
// scheduler clock.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.mu.Lock()
	s.timerSeq++
	t := &Timer{
		sched: s,
		due:   s.clock.Now().Add(d),
		seq:   s.timerSeq,
		fn:    fn,
	}
	heap.Push(&s.timers, t)
	start := s.activateLocked()
	s.mu.Unlock()
	s.startSource(start)
	return t
}

// Dispatch queues fn to run at the start of the next frame.
// Safe to call from any goroutine.
func (s *Scheduler) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.dispatches = append(s.dispatches, fn)
	start := s.activateLocked()
	s.mu.Unlock()
	s.startSource(start)
}

// IsRequesting reports whether the scheduler currently wants frames.
func (s *Scheduler) IsRequesting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requesting
}

// Registered returns the number of active tickers.
func (s *Scheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// Pending returns the number of timers that have not fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers.Len()
}

// FrameCount returns the number of frames run so far.
func (s *Scheduler) FrameCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Frame runs one display refresh.
func (s *Scheduler) Frame() {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	s.mu.Lock()
	now := s.clock.Now()
	dt := s.frameDeltaLocked(now)
	s.lastFrame = now
	s.frames++
	dispatches := s.dispatches
	s.dispatches = nil
	s.mu.Unlock()

	for _, fn := range dispatches {
		errors.Guard("animation.Scheduler.Dispatch", fn)
	}

	s.fireTimers(now)

	s.mu.Lock()
	tickers := slices.Clone(s.tickers)
	s.mu.Unlock()

	for _, t := range tickers {
		s.mu.Lock()
		active := t.isActive
		if active {
			t.elapsed += dt
		}
		s.mu.Unlock()
		if !active || t.callback == nil {
			continue
		}
		errors.Guard("animation.Ticker", func() { t.callback(dt) })
	}

	s.mu.Lock()
	stop := s.requesting && s.idleLocked()
	if stop {
		s.requesting = false
		s.lastFrame = time.Time{}
	}
	s.mu.Unlock()
	if stop && s.source != nil {
		s.source.Stop()
	}
}

func (s *Scheduler) fireTimers(now time.Time) {
	for {
		s.mu.Lock()
		if s.timers.Len() == 0 || s.timers[0].due.After(now) {
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.timers).(*Timer)
		s.mu.Unlock()
		if t.fn != nil {
			errors.Guard("animation.Timer", t.fn)
		}
	}
}

func (s *Scheduler) frameDeltaLocked(now time.Time) time.Duration {
	if s.lastFrame.IsZero() {
		return NominalFrame
	}
	dt := now.Sub(s.lastFrame)
	if dt < 0 {
		return 0
	}
	if dt > s.maxDelta {
		return s.maxDelta
	}
	return dt
}

func (s *Scheduler) register(t *Ticker) {
	s.mu.Lock()
	if t.isActive {
		s.mu.Unlock()
		return
	}
	t.isActive = true
	t.elapsed = 0
	s.tickers = append(s.tickers, t)
	start := s.activateLocked()
	s.mu.Unlock()
	s.startSource(start)
}

func (s *Scheduler) unregister(t *Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.isActive {
		return
	}
	t.isActive = false
	if i := slices.Index(s.tickers, t); i >= 0 {
		s.tickers = slices.Delete(s.tickers, i, i+1)
	}
}

func (s *Scheduler) idleLocked() bool {
	return len(s.tickers) == 0 && s.timers.Len() == 0 && len(s.dispatches) == 0
}

// activateLocked marks the scheduler as requesting frames and reports
// whether the frame source must be started.
func (s *Scheduler) activateLocked() bool {
	if s.requesting {
		return false
	}
	s.requesting = true
	return true
}

func (s *Scheduler) startSource(start bool) {
	if start && s.source != nil {
		s.source.Start(s.Frame)
	}
}
