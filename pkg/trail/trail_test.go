package trail_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	motionerrors "github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
	"github.com/go-drift/motion/pkg/trail"
)

const stagger = 50 * time.Millisecond

func newTrail(t *testing.T, h *motiontest.Harness, n int) *trail.Trail {
	t.Helper()
	tr, err := trail.New(h.Scheduler(), n, animation.DefaultConfig, stagger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(tr.Dispose)
	return tr
}

// firstMoves records, per member, the harness time of its first commit
// made by a later frame rather than by a jump.
func firstMoves(h *motiontest.Harness, tr *trail.Trail) map[int]time.Duration {
	first := map[int]time.Duration{}
	since := h.Now()
	tr.OnChange(func(i int, _ animation.Values) {
		if _, ok := first[i]; !ok && h.Now() > since {
			first[i] = h.Now()
		}
	})
	return first
}

func TestNew_Validation(t *testing.T) {
	if _, err := trail.New(nil, -1, animation.DefaultConfig, 0); !errors.Is(err, motionerrors.ErrInvalidConfig) {
		t.Errorf("negative count: %v", err)
	}
	if _, err := trail.New(nil, 1, animation.DefaultConfig, -time.Second); !errors.Is(err, motionerrors.ErrInvalidConfig) {
		t.Errorf("negative stagger: %v", err)
	}
	if _, err := trail.New(nil, 1, animation.SpringConfig{Tension: 1}, 0); !errors.Is(err, motionerrors.ErrInvalidConfig) {
		t.Errorf("bad config: %v", err)
	}
}

func TestTrail_StaggeredStart(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 4)
	first := firstMoves(h, tr)
	rests := 0
	tr.OnRest(func() { rests++ })

	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 100})
	h.MustSettle(t, 3*time.Second)

	for i := range 4 {
		got, ok := first[i]
		if !ok {
			t.Fatalf("member %d never moved", i)
		}
		if earliest := time.Duration(i) * stagger; got < earliest {
			t.Errorf("member %d first moved at %v, before %v", i, got, earliest)
		}
		if i > 0 && got <= first[i-1] {
			t.Errorf("member %d moved at %v, not after member %d at %v", i, got, i-1, first[i-1])
		}
	}
	for i, v := range tr.Values() {
		if v["y"] != 100 {
			t.Errorf("member %d y = %v, want 100", i, v["y"])
		}
	}
	if rests != 1 {
		t.Errorf("rest fired %d times, want 1", rests)
	}
}

func TestTrail_SetSameTargetIsNoop(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 3)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	h.MustSettle(t, 3*time.Second)

	starts := 0
	for i := range tr.Len() {
		tr.Member(i).OnStart(func() { starts++ })
	}
	tr.Set(animation.Values{"y": 10})
	if starts != 0 || tr.IsAnimating() {
		t.Errorf("starts = %d animating = %v, want no restart", starts, tr.IsAnimating())
	}
	if h.Scheduler().IsRequesting() {
		t.Error("idempotent Set requested frames")
	}
}

func TestTrail_SetRestaggersPending(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 3)
	first := firstMoves(h, tr)

	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	h.Pump()
	setAt := h.Now()
	tr.Set(animation.Values{"y": 20})
	h.MustSettle(t, 3*time.Second)

	if got := first[2]; got < setAt+2*stagger {
		t.Errorf("pending member 2 started at %v, want >= %v", got, setAt+2*stagger)
	}
	for i, v := range tr.Values() {
		if v["y"] != 20 {
			t.Errorf("member %d y = %v, want 20", i, v["y"])
		}
	}
}

func TestTrail_SetRedirectsMoving(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 2)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 100})
	h.PumpFrames(8)

	lead := tr.Member(0)
	y, _ := lead.Get("y")
	tr.Set(animation.Values{"y": -100})
	if got, _ := lead.Get("y"); got != y {
		t.Errorf("redirect jumped from %v to %v", y, got)
	}
	if !lead.Goal().Equal(animation.Values{"y": -100}) {
		t.Errorf("lead goal = %v", lead.Goal())
	}
	if follower := tr.Member(1); follower.Goal()["y"] != 100 {
		t.Errorf("follower redirected before its stagger: goal %v", follower.Goal())
	}

	h.MustSettle(t, 3*time.Second)
	for i, v := range tr.Values() {
		if v["y"] != -100 {
			t.Errorf("member %d y = %v, want -100", i, v["y"])
		}
	}
}

func TestTrail_Restart(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 2)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	h.MustSettle(t, 3*time.Second)

	tr.Restart()
	if got, _ := tr.Member(1).Get("y"); got != 0 {
		t.Errorf("restart did not jump back: y = %v", got)
	}
	if !tr.IsAnimating() {
		t.Error("expected restart to animate")
	}
	h.MustSettle(t, 3*time.Second)
}

func TestTrail_ResizeGrow(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 2)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	h.MustSettle(t, 3*time.Second)

	first := firstMoves(h, tr)
	resizedAt := h.Now()
	if err := tr.Resize(4); err != nil {
		t.Fatal(err)
	}
	if got, _ := tr.Member(3).Get("y"); got != 0 {
		t.Errorf("new member should start at from, got %v", got)
	}
	h.MustSettle(t, 3*time.Second)

	if got := first[3]; got < resizedAt+3*stagger {
		t.Errorf("member 3 moved at %v, want >= %v", got, resizedAt+3*stagger)
	}
	if _, moved := first[0]; moved {
		t.Error("settled members restarted on grow")
	}
	if tr.Len() != 4 || tr.Values()[3]["y"] != 10 {
		t.Errorf("after grow: len %d values %v", tr.Len(), tr.Values())
	}
}

func TestTrail_ResizeShrinkCancelsTimers(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 5)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	if h.Scheduler().Pending() != 4 {
		t.Fatalf("pending = %d, want 4", h.Scheduler().Pending())
	}
	removed := tr.Member(4)

	tr.Resize(2)
	if h.Scheduler().Pending() != 1 {
		t.Errorf("pending = %d after shrink, want 1", h.Scheduler().Pending())
	}
	if !removed.IsDisposed() {
		t.Error("removed member was not disposed")
	}
	if tr.Member(4) != nil {
		t.Error("Member(4) should be nil")
	}
	h.MustSettle(t, 3*time.Second)
}

func TestTrail_StopAndDispose(t *testing.T) {
	rec := motiontest.RecordErrors(t)
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 3)
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	h.Pump()

	tr.Stop()
	if h.Scheduler().Registered() != 0 || h.Scheduler().Pending() != 0 {
		t.Error("Stop leaked registrations or timers")
	}
	if tr.Member(0).Status() != animation.StatusCancelled {
		t.Errorf("lead status = %v", tr.Member(0).Status())
	}

	tr.Dispose()
	if err := tr.Start(nil, animation.Values{"y": 1}); !errors.Is(err, motionerrors.ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	if rec.Count(motionerrors.ErrDisposed) != 1 {
		t.Error("disposed start was not reported")
	}
}

func TestTrail_RejectsNonFinite(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr := newTrail(t, h, 3)

	err := tr.Start(animation.Values{"x": 0}, animation.Values{"x": math.NaN()})
	if !errors.Is(err, motionerrors.ErrNonFinite) {
		t.Fatalf("Start: expected ErrNonFinite, got %v", err)
	}
	if h.Scheduler().Pending() != 0 || h.Scheduler().Registered() != 0 || tr.IsAnimating() {
		t.Error("rejected Start scheduled work")
	}

	tr.Start(animation.Values{"x": 0}, animation.Values{"x": 1})
	err = tr.Set(animation.Values{"x": math.Inf(-1)})
	if !errors.Is(err, motionerrors.ErrNonFinite) {
		t.Fatalf("Set: expected ErrNonFinite, got %v", err)
	}
	h.MustSettle(t, 3*time.Second)
	for i, v := range tr.Values() {
		if v["x"] != 1 {
			t.Errorf("member %d x = %v, want 1", i, v["x"])
		}
	}
}

func TestTrail_ZeroStagger(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	tr, err := trail.New(h.Scheduler(), 3, animation.SpringConfig{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Dispose()

	tr.Start(animation.Values{"x": 0}, animation.Values{"x": 1})
	if h.Scheduler().Pending() != 0 || h.Scheduler().Registered() != 3 {
		t.Errorf("pending=%d registered=%d, want 0/3", h.Scheduler().Pending(), h.Scheduler().Registered())
	}
	h.MustSettle(t, 3*time.Second)
}
