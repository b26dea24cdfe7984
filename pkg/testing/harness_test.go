package testing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	motionerrors "github.com/go-drift/motion/pkg/errors"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestHarness_InstallsDefaultScheduler(t *testing.T) {
	before := animation.DefaultScheduler()
	h := NewHarness()
	if animation.DefaultScheduler() != h.Scheduler() {
		t.Fatal("expected harness scheduler to be the default")
	}
	h.Cleanup()
	if animation.DefaultScheduler() != before {
		t.Error("expected Cleanup to restore the previous default")
	}
}

func TestHarness_PumpAdvancesClock(t *testing.T) {
	h := NewHarnessWithT(t)
	h.PumpFrames(3)
	if h.Now() != 3*FrameDuration {
		t.Errorf("expected %v elapsed, got %v", 3*FrameDuration, h.Now())
	}
	if h.Scheduler().FrameCount() != 3 {
		t.Errorf("expected 3 frames, got %d", h.Scheduler().FrameCount())
	}
}

func TestHarness_PumpFor(t *testing.T) {
	h := NewHarnessWithT(t)
	h.PumpFor(50 * time.Millisecond)
	if got := h.Scheduler().FrameCount(); got != 4 {
		t.Errorf("expected 4 frames to cover 50ms, got %d", got)
	}
}

func TestPumpAndSettle_Idle(t *testing.T) {
	h := NewHarnessWithT(t)
	frames, err := h.PumpAndSettle(time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frames != 0 {
		t.Errorf("expected no frames for an idle scheduler, got %d", frames)
	}
}

func TestPumpAndSettle_Spring(t *testing.T) {
	h := NewHarnessWithT(t)
	ctrl, err := animation.NewController(animation.DefaultConfig, animation.WithScheduler(h.Scheduler()))
	if err != nil {
		t.Fatal(err)
	}
	defer ctrl.Dispose()

	ctrl.Start(animation.Values{"x": 0}, animation.Values{"x": 1})
	frames := h.MustSettle(t, 2*time.Second)
	if frames == 0 {
		t.Error("expected at least one frame")
	}
	if got, _ := ctrl.Get("x"); got != 1 {
		t.Errorf("expected x = 1, got %v", got)
	}
}

func TestPumpAndSettle_Timeout(t *testing.T) {
	h := NewHarnessWithT(t)
	tick := h.Scheduler().Register(func(time.Duration) {})
	defer tick.Stop()

	_, err := h.PumpAndSettle(100 * time.Millisecond)
	if !errors.Is(err, ErrSettleTimeout) {
		t.Errorf("expected ErrSettleTimeout, got %v", err)
	}
}

func TestRecordErrors(t *testing.T) {
	rec := RecordErrors(t)
	motionerrors.Report(motionerrors.Lifecycle("op", "k", motionerrors.ErrDisposed))
	motionerrors.Guard("op", func() { panic("boom") })

	if rec.Count(motionerrors.ErrDisposed) != 1 {
		t.Errorf("expected 1 disposed error, got %d", rec.Count(motionerrors.ErrDisposed))
	}
	if len(rec.Panics()) != 1 {
		t.Errorf("expected 1 panic, got %d", len(rec.Panics()))
	}
	rec.Reset()
	if len(rec.Errors()) != 0 || len(rec.Panics()) != 0 {
		t.Error("expected Reset to clear the recorder")
	}
}

func TestRecorder_Snapshot(t *testing.T) {
	h := NewHarnessWithT(t)
	ctrl, err := animation.NewController(animation.StiffConfig, animation.WithScheduler(h.Scheduler()))
	if err != nil {
		t.Fatal(err)
	}
	rec := h.NewRecorder()
	rec.Record("box", ctrl)

	ctrl.Start(animation.Values{"x": 0}, animation.Values{"x": 10})
	h.MustSettle(t, 2*time.Second)
	rec.Stop()

	snap := rec.Snapshot()
	if len(snap.Frames) == 0 {
		t.Fatal("expected recorded frames")
	}
	last := snap.Frames[len(snap.Frames)-1]
	if !last.Rest || last.Values["x"] != 10 {
		t.Errorf("expected resting final frame at 10, got %+v", last)
	}
	for i, f := range snap.Frames {
		if f.Frame != int64(i+1) {
			t.Fatalf("frame %d recorded as %d", i+1, f.Frame)
		}
	}
}

type fakeT struct {
	failed bool
	msg    string
}

func (f *fakeT) Helper()                           {}
func (f *fakeT) Name() string                      { return "TestFake" }
func (f *fakeT) Fatalf(format string, args ...any) { f.failed = true; f.msg = format }
func (f *fakeT) Errorf(format string, args ...any) { f.failed = true; f.msg = format }

func TestSnapshot_MatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "x.snapshot.json")
	snap := &Snapshot{Frames: []FrameRecord{{Frame: 1, Values: map[string]float64{"x": 0.5}}}}
	if err := snap.UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	ok := &fakeT{}
	snap.MatchesFile(ok, path)
	if ok.failed {
		t.Errorf("expected identical snapshot to match: %s", ok.msg)
	}

	other := &Snapshot{Frames: []FrameRecord{{Frame: 1, Values: map[string]float64{"x": 0.6}}}}
	bad := &fakeT{}
	other.MatchesFile(bad, path)
	if !bad.failed || !strings.Contains(bad.msg, "snapshot mismatch") {
		t.Error("expected mismatch to be reported")
	}

	missing := &fakeT{}
	snap.MatchesFile(missing, filepath.Join(t.TempDir(), "nope.json"))
	if !missing.failed {
		t.Error("expected missing file to fail")
	}
}

func TestSnapshot_Diff(t *testing.T) {
	a := &Snapshot{Frames: []FrameRecord{{Frame: 1, Values: map[string]float64{"x": 1}}}}
	b := &Snapshot{Frames: []FrameRecord{{Frame: 1, Values: map[string]float64{"x": 1}}}}
	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff, got:\n%s", diff)
	}
	b.Frames[0].Values["x"] = 2
	diff := a.Diff(b)
	if !strings.Contains(diff, "-") || !strings.Contains(diff, "+") {
		t.Errorf("expected a line diff, got:\n%s", diff)
	}
}

func TestMain(m *testing.M) {
	os.Unsetenv("MOTION_UPDATE_SNAPSHOTS")
	os.Exit(m.Run())
}
