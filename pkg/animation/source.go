package animation

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// TickerSource is a [FrameSource] that emits frames from a time.Ticker on
// its own goroutine. That goroutine becomes the frame thread: work from
// other goroutines must go through [Scheduler.Dispatch].
type TickerSource struct {
	interval time.Duration
	running  *atomic.Bool
	frames   *atomic.Int64
	starts   *atomic.Int64

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerSource creates a source that emits one frame per interval.
func NewTickerSource(interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = NominalFrame
	}
	return &TickerSource{
		interval: interval,
		running:  atomic.NewBool(false),
		frames:   atomic.NewInt64(0),
		starts:   atomic.NewInt64(0),
	}
}

// Start begins emitting frames. Starting a running source is a no-op.
func (src *TickerSource) Start(frame func()) {
	src.mu.Lock()
	defer src.mu.Unlock()
	if !src.running.CompareAndSwap(false, true) {
		return
	}
	src.starts.Inc()
	stop := make(chan struct{})
	src.stop = stop

	go func() {
		ticker := time.NewTicker(src.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				src.frames.Inc()
				frame()
			}
		}
	}()
}

// Stop ends frame emission. Safe to call from inside a frame.
func (src *TickerSource) Stop() {
	src.mu.Lock()
	defer src.mu.Unlock()
	if !src.running.CompareAndSwap(true, false) {
		return
	}
	if src.stop != nil {
		close(src.stop)
		src.stop = nil
	}
}

// Running reports whether the source is emitting frames.
func (src *TickerSource) Running() bool {
	return src.running.Load()
}

// Frames returns the number of frames emitted since creation.
func (src *TickerSource) Frames() int64 {
	return src.frames.Load()
}

// Starts returns how many times the source was started.
func (src *TickerSource) Starts() int64 {
	return src.starts.Load()
}
