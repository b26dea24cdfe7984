// Package animation provides the physics-based animation core: a frame
// scheduler, a spring integrator and the controllers that drive named sets
// of numbers toward their targets.
//
// # Scheduler
//
// A [Scheduler] turns display refreshes into ticks. Every frame computes a
// single delta time shared by all registered tickers, fires due timers and
// runs queued callbacks. The scheduler asks its [FrameSource] for frames
// only while something is registered, so an idle application costs nothing:
//
//	sched := animation.NewScheduler(
//	    animation.WithFrameSource(animation.NewTickerSource(time.Second / 60)),
//	)
//
// Without a frame source the host calls [Scheduler.Frame] itself, which is
// what game loops and tests do.
//
// # Springs
//
// Values move as damped springs described by [SpringConfig]. The named
// presets ([DefaultConfig], [GentleConfig], [WobblyConfig], [StiffConfig],
// [SlowConfig], [MolassesConfig]) cover most interfaces. A config with a
// positive Duration runs a fixed-length eased tween instead.
//
// # Controllers
//
// A [Controller] animates a [Values] mapping and commits the whole mapping
// to its OnTick listeners once per frame:
//
//	ctrl, err := animation.NewController(animation.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	ctrl.OnTick(func(v animation.Values) {
//	    node.SetOpacity(v["opacity"])
//	})
//	ctrl.Start(animation.Values{"opacity": 0}, animation.Values{"opacity": 1})
//
// Set redirects a running animation without a jump in position or
// velocity, Stop halts it where it is and Dispose releases it.
//
// # Refs
//
// A [Ref] holds the starts of its controllers until Ref.Start, so a chain
// can sequence several groups of animations.
package animation
