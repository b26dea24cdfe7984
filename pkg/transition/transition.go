// Package transition animates keyed lists through their enter, update and
// leave lifecycle.
//
// A [Transition] tracks one controller per key. Each call to Update diffs
// the new item list against the tracked keys: new keys enter, keys that
// stay receive their update targets, and keys that disappear play their
// leave animation before they are removed. Leaving items keep their last
// position in [Transition.Items] so a renderer can draw them in place
// until they are gone.
package transition

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// Phase is the lifecycle position of a tracked item.
type Phase int

const (
	// PhaseEntering means the enter animation is running.
	PhaseEntering Phase = iota
	// PhasePresent means the item entered and is still in the list.
	PhasePresent
	// PhaseLeaving means the item left the list and its leave animation
	// is running.
	PhaseLeaving
	// PhaseRemoved means the item finished leaving and is no longer
	// tracked.
	PhaseRemoved
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhasePresent:
		return "present"
	case PhaseLeaving:
		return "leaving"
	case PhaseRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Props configures a Transition.
type Props[T any, K comparable] struct {
	// Key identifies an item across updates. Required.
	Key func(T) K

	// From is where an entering item starts. Nil starts at Enter.
	From func(T) animation.Values
	// Enter is the target of an entering item.
	Enter func(T) animation.Values
	// Update is applied to present items on every Update call. Optional.
	Update func(T) animation.Values
	// Leave is the target of a leaving item. Nil removes leaving items
	// on the next frame.
	Leave func(T) animation.Values

	// Config drives every item controller. Zero means
	// animation.DefaultConfig.
	Config animation.SpringConfig
	// Trail staggers the enter and leave starts of one Update by i*Trail.
	Trail time.Duration

	// OnChange receives every commit of every item.
	OnChange func(key K, values animation.Values)
	// OnRemove is called once an item finished leaving.
	OnRemove func(key K, item T)

	// Options are passed to every item controller.
	Options []animation.Option
}

// Fixed returns a Props callback that ignores the item.
func Fixed[T any](v animation.Values) func(T) animation.Values {
	return func(T) animation.Values { return v.Clone() }
}

// Entry is a tracked item as seen by a renderer.
type Entry[T any, K comparable] struct {
	Key    K
	Item   T
	Phase  Phase
	Values animation.Values
}

type entry[T any, K comparable] struct {
	key   K
	item  T
	phase Phase
	ctrl  *animation.Controller
	timer *animation.Timer
}

// Transition tracks a keyed list of items.
type Transition[T any, K comparable] struct {
	sched    *animation.Scheduler
	props    Props[T, K]
	items    []*entry[T, K]
	byKey    map[K]*entry[T, K]
	disposed bool
}

// New creates a Transition driven by sched, or by the default scheduler
// when sched is nil.
func New[T any, K comparable](sched *animation.Scheduler, props Props[T, K]) (*Transition[T, K], error) {
	const op = "transition.New"
	if props.Key == nil {
		return nil, errors.Config(op, "Key is required")
	}
	if props.Enter == nil {
		return nil, errors.Config(op, "Enter is required")
	}
	if props.Trail < 0 {
		return nil, errors.Config(op, "trail must be >= 0, got %v", props.Trail)
	}
	props.Config = props.Config.OrDefault()
	if err := props.Config.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		sched = animation.DefaultScheduler()
	}
	return &Transition[T, K]{
		sched: sched,
		props: props,
		byKey: make(map[K]*entry[T, K]),
	}, nil
}

// Update diffs items against the tracked keys and starts the resulting
// enter, update and leave animations. Items with a key already seen in
// this call, and items whose targets the controller rejects, are reported,
// dropped from the tracked set without OnRemove, and returned as a joined
// error; the rest of the update proceeds.
func (t *Transition[T, K]) Update(items []T) error {
	const op = "transition.Update"
	if t.disposed {
		return errors.Report(errors.Lifecycle(op, "", errors.ErrDisposed))
	}

	var errs []error
	seen := make(map[K]bool, len(items))
	next := make([]*entry[T, K], 0, len(items))
	prev := slices.Clone(t.items)
	stagger := 0

	for _, it := range items {
		key := t.props.Key(it)
		if seen[key] {
			errs = append(errs, errors.Report(errors.Lifecycle(op, fmt.Sprint(key), errors.ErrDuplicateKey)))
			continue
		}
		seen[key] = true

		e, ok := t.byKey[key]
		switch {
		case !ok:
			var err error
			e, err = t.track(key, it)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			enter := t.props.Enter(it)
			from := enter
			if t.props.From != nil {
				from = t.props.From(it)
			}
			if err := e.ctrl.Jump(from); err != nil {
				errs = append(errs, t.fail(op, e, err))
				continue
			}
			if err := t.start(e, enter, stagger); err != nil {
				errs = append(errs, t.fail(op, e, err))
				continue
			}
			stagger++
		case e.phase == PhaseLeaving:
			e.item = it
			e.phase = PhaseEntering
			if err := t.start(e, t.props.Enter(it), stagger); err != nil {
				errs = append(errs, t.fail(op, e, err))
				continue
			}
			stagger++
		default:
			e.item = it
			if e.phase == PhaseEntering && e.ctrl.Status() == animation.StatusSettled {
				e.phase = PhasePresent
			}
			if e.phase == PhasePresent && t.props.Update != nil {
				if err := e.ctrl.Set(t.props.Update(it)); err != nil {
					errs = append(errs, t.fail(op, e, err))
					continue
				}
			}
		}
		next = append(next, e)
	}

	for _, e := range prev {
		if seen[e.key] || e.phase == PhaseLeaving || e.phase == PhaseRemoved {
			continue
		}
		e.phase = PhaseLeaving
		var leave animation.Values
		if t.props.Leave != nil {
			leave = t.props.Leave(e.item)
		}
		if err := t.start(e, leave, stagger); err != nil {
			errs = append(errs, t.fail(op, e, err))
			continue
		}
		stagger++
	}

	t.items = mergeOrder(prev, next, seen)
	return errors.Join(errs...)
}

// mergeOrder returns next with the leaving items of prev reinserted at
// their previous index.
func mergeOrder[T any, K comparable](prev, next []*entry[T, K], seen map[K]bool) []*entry[T, K] {
	out := slices.Clone(next)
	for i, e := range prev {
		if seen[e.key] || e.phase != PhaseLeaving {
			continue
		}
		out = slices.Insert(out, min(i, len(out)), e)
	}
	return out
}

func (t *Transition[T, K]) track(key K, it T) (*entry[T, K], error) {
	e := &entry[T, K]{key: key, item: it, phase: PhaseEntering}
	opts := append([]animation.Option{
		animation.WithScheduler(t.sched),
		animation.WithName(fmt.Sprint(key)),
	}, t.props.Options...)
	ctrl, err := animation.NewController(t.props.Config, opts...)
	if err != nil {
		return nil, err
	}
	e.ctrl = ctrl
	if t.props.OnChange != nil {
		ctrl.OnTick(func(v animation.Values) {
			t.props.OnChange(e.key, v)
		})
	}
	ctrl.OnRest(func(animation.Values) {
		t.rested(e)
	})
	t.byKey[key] = e
	return e, nil
}

// start moves e toward to after i*Trail. A nil target on a leaving item
// removes it on the next frame. A start run later by a timer reports its
// own failure and drops the item.
func (t *Transition[T, K]) start(e *entry[T, K], to animation.Values, i int) error {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	run := func() error {
		e.timer = nil
		if to == nil && e.phase == PhaseLeaving {
			t.remove(e)
			return nil
		}
		return e.ctrl.Start(nil, to)
	}
	delay := time.Duration(i) * t.props.Trail
	if to == nil || delay > 0 {
		e.timer = t.sched.After(delay, func() {
			if err := run(); err != nil {
				t.fail("transition.start", e, err)
			}
		})
		return nil
	}
	return run()
}

func (t *Transition[T, K]) rested(e *entry[T, K]) {
	if e.timer != nil {
		return
	}
	switch e.phase {
	case PhaseEntering:
		e.phase = PhasePresent
	case PhaseLeaving:
		t.remove(e)
	}
}

func (t *Transition[T, K]) remove(e *entry[T, K]) {
	if e.phase == PhaseRemoved {
		return
	}
	t.discard(e)
	if t.props.OnRemove != nil {
		t.props.OnRemove(e.key, e.item)
	}
}

// fail drops e and reports err under the item key.
func (t *Transition[T, K]) fail(op string, e *entry[T, K], err error) error {
	t.discard(e)
	me := errors.Lifecycle(op, fmt.Sprint(e.key), err)
	var cause *errors.MotionError
	if errors.As(err, &cause) {
		me.Kind = cause.Kind
	}
	return errors.Report(me)
}

func (t *Transition[T, K]) discard(e *entry[T, K]) {
	e.phase = PhaseRemoved
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if t.byKey[e.key] == e {
		delete(t.byKey, e.key)
	}
	t.items = slices.DeleteFunc(t.items, func(x *entry[T, K]) bool { return x == e })
	e.ctrl.Dispose()
}

// Items returns the tracked items in display order, leaving items
// included.
func (t *Transition[T, K]) Items() []Entry[T, K] {
	out := make([]Entry[T, K], 0, len(t.items))
	for _, e := range t.items {
		if e.phase == PhaseRemoved {
			continue
		}
		out = append(out, Entry[T, K]{
			Key:    e.key,
			Item:   e.item,
			Phase:  e.phase,
			Values: e.ctrl.Values(),
		})
	}
	return out
}

// Phase returns the phase of key. Untracked keys report PhaseRemoved.
func (t *Transition[T, K]) Phase(key K) (Phase, bool) {
	e, ok := t.byKey[key]
	if !ok {
		return PhaseRemoved, false
	}
	return e.phase, true
}

// Controller returns the controller animating key.
func (t *Transition[T, K]) Controller(key K) (*animation.Controller, bool) {
	e, ok := t.byKey[key]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Len returns the number of tracked items, leaving items included.
func (t *Transition[T, K]) Len() int {
	return len(t.byKey)
}

// Dispose stops every item without playing leave animations.
func (t *Transition[T, K]) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	for _, e := range t.items {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.ctrl.Dispose()
	}
	t.items = nil
	clear(t.byKey)
}
