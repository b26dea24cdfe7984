// Package chain sequences groups of animations. Each group is an
// [animation.Ref]; a chain starts the refs at fixed offsets, or one after
// another as each finishes.
package chain

import (
	"fmt"
	"math"
	"time"
	"weak"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// Link schedules one ref's start Delay after the chain runs.
type Link struct {
	Ref   *animation.Ref
	Delay time.Duration
}

type pending struct {
	ref   weak.Pointer[animation.Ref]
	name  string
	timer *animation.Timer
	unsub func()
}

// Chain starts refs on the scheduler timeline. A new Run supersedes every
// call still pending from the previous one.
type Chain struct {
	sched    *animation.Scheduler
	pending  []*pending
	disposed bool
}

// New creates a chain driven by sched, or by the default scheduler when
// sched is nil.
func New(sched *animation.Scheduler) *Chain {
	if sched == nil {
		sched = animation.DefaultScheduler()
	}
	return &Chain{sched: sched}
}

// Run schedules link i's ref.Start() at links[i].Delay measured from this
// call. Delays are absolute, not cumulative. A zero delay starts the ref
// before Run returns. The chain keeps only weak references to the refs:
// a ref collected before its turn, or one with no live controllers, is
// reported and skipped.
func (c *Chain) Run(links ...Link) error {
	const op = "chain.Chain.Run"
	if c.disposed {
		return errors.Report(errors.Lifecycle(op, "", errors.ErrDisposed))
	}
	for i, l := range links {
		if l.Delay < 0 {
			return errors.Config(op, "link %d: delay must be >= 0, got %v", i, l.Delay)
		}
		if l.Ref == nil {
			return errors.Config(op, "link %d: ref is nil", i)
		}
	}
	c.Cancel()

	var immediate []*animation.Ref
	for _, l := range links {
		if l.Delay == 0 {
			immediate = append(immediate, l.Ref)
			continue
		}
		p := &pending{ref: weak.Make(l.Ref), name: l.Ref.Name()}
		p.timer = c.sched.After(l.Delay, func() {
			c.forget(p)
			c.fire(p.ref, p.name)
		})
		c.pending = append(c.pending, p)
	}
	for _, ref := range immediate {
		ref.Start()
	}
	return nil
}

// RunSequential starts refs[0] now and each following ref once every
// controller of the previous one has settled. Refs with no live
// controllers are reported and skipped.
func (c *Chain) RunSequential(refs ...*animation.Ref) error {
	const op = "chain.Chain.RunSequential"
	if c.disposed {
		return errors.Report(errors.Lifecycle(op, "", errors.ErrDisposed))
	}
	wps := make([]weak.Pointer[animation.Ref], len(refs))
	names := make([]string, len(refs))
	for i, ref := range refs {
		if ref == nil {
			return errors.Config(op, "ref %d is nil", i)
		}
		wps[i] = weak.Make(ref)
		names[i] = ref.Name()
	}
	c.Cancel()
	c.step(wps, names, 0)
	return nil
}

func (c *Chain) step(refs []weak.Pointer[animation.Ref], names []string, i int) {
	for ; i < len(refs); i++ {
		ref := refs[i].Value()
		if ref == nil {
			errors.Report(errors.Lifecycle("chain.Chain.RunSequential", names[i], errors.ErrDanglingRef))
			continue
		}
		var p *pending
		if next := i + 1; next < len(refs) {
			p = &pending{ref: refs[next], name: names[next]}
			p.unsub = ref.OnRest(func() {
				p.unsub()
				c.forget(p)
				c.step(refs, names, next)
			})
			c.pending = append(c.pending, p)
		}
		if err := ref.Start(); err != nil {
			if p != nil {
				p.unsub()
				c.forget(p)
			}
			continue
		}
		return
	}
}

func (c *Chain) fire(wp weak.Pointer[animation.Ref], name string) {
	ref := wp.Value()
	if ref == nil {
		errors.Report(errors.Lifecycle("chain.Chain.fire", name, errors.ErrDanglingRef))
		return
	}
	ref.Start()
}

func (c *Chain) forget(p *pending) {
	for i, q := range c.pending {
		if q == p {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Cancel drops every pending start. Refs already started keep running.
func (c *Chain) Cancel() {
	for _, p := range c.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		if p.unsub != nil {
			p.unsub()
		}
	}
	clear(c.pending)
	c.pending = c.pending[:0]
}

// Dispose cancels the chain. Later runs report [errors.ErrDisposed].
func (c *Chain) Dispose() {
	c.Cancel()
	c.disposed = true
}

// Pending returns the number of refs waiting for their turn.
func (c *Chain) Pending() int {
	return len(c.pending)
}

// Timesteps spreads refs over a time frame: ref i starts at
// steps[i]*frame. With nil steps the refs are spread evenly, i/len(refs).
func Timesteps(refs []*animation.Ref, steps []float64, frame time.Duration) ([]Link, error) {
	const op = "chain.Timesteps"
	if steps != nil && len(steps) != len(refs) {
		return nil, errors.Config(op, "%d refs but %d steps", len(refs), len(steps))
	}
	if frame < 0 {
		return nil, errors.Config(op, "frame must be >= 0, got %v", frame)
	}
	links := make([]Link, len(refs))
	for i, ref := range refs {
		step := float64(i) / float64(len(refs))
		if steps != nil {
			step = steps[i]
		}
		if step < 0 || math.IsNaN(step) {
			return nil, errors.Config(op, "step %d must be >= 0, got %v", i, step)
		}
		links[i] = Link{
			Ref:   ref,
			Delay: time.Duration(math.Round(step * float64(frame))),
		}
	}
	return links, nil
}

// String returns the ref name and delay, e.g. "cards@150ms".
func (l Link) String() string {
	name := "<nil>"
	if l.Ref != nil {
		name = l.Ref.Name()
	}
	return fmt.Sprintf("%s@%v", name, l.Delay)
}
