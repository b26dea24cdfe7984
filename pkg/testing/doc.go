// Package testing provides deterministic frame-by-frame testing for motion
// animations.
//
// # Quick Start
//
// Create a harness, start an animation and pump frames:
//
//	func TestFadeIn(t *testing.T) {
//	    h := motiontest.NewHarnessWithT(t)
//	    ctrl, _ := animation.NewController(animation.DefaultConfig,
//	        animation.WithScheduler(h.Scheduler()))
//	    ctrl.Start(animation.Values{"opacity": 0}, animation.Values{"opacity": 1})
//
//	    if _, err := h.PumpAndSettle(2 * time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	    if got, _ := ctrl.Get("opacity"); got != 1 {
//	        t.Errorf("opacity = %v, want 1", got)
//	    }
//	}
//
// Every pumped frame advances the fake clock by [FrameDuration], so timers
// created with Scheduler.After fire on predictable frames.
//
// # Snapshot Testing
//
// Record the commits of controllers and compare them to a golden file:
//
//	rec := h.NewRecorder()
//	rec.Record("fade", ctrl)
//	h.PumpAndSettle(time.Second)
//	rec.Snapshot().MatchesFile(t, "testdata/fade.snapshot.json")
//
// Update snapshots with:
//
//	MOTION_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Errors
//
// [RecordErrors] captures reported lifecycle errors and recovered panics
// for assertions instead of logging them.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import motiontest "github.com/go-drift/motion/pkg/testing"
package testing
