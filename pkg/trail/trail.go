// Package trail runs a row of identical springs where each member follows
// the one before it with a fixed stagger.
package trail

import (
	"fmt"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

type member struct {
	ctrl *animation.Controller

	// timer holds the member's deferred start or redirect.
	timer   *animation.Timer
	pending animation.Values
	set     bool
}

func (m *member) cancel() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = nil
	m.set = false
}

// Trail is a list of controllers started i*stagger apart.
type Trail struct {
	sched   *animation.Scheduler
	cfg     animation.SpringConfig
	stagger time.Duration
	opts    []animation.Option

	members  []*member
	from, to animation.Values
	started  bool
	disposed bool

	changeListeners map[int]func(int, animation.Values)
	restListeners   map[int]func()
	nextListenerID  int
	waiting         bool
	starting        bool
}

// New creates a trail of n members driven by sched, or by the default
// scheduler when sched is nil. opts are passed to every member controller.
func New(sched *animation.Scheduler, n int, cfg animation.SpringConfig, stagger time.Duration, opts ...animation.Option) (*Trail, error) {
	const op = "trail.New"
	if n < 0 {
		return nil, errors.Config(op, "count must be >= 0, got %d", n)
	}
	if stagger < 0 {
		return nil, errors.Config(op, "stagger must be >= 0, got %v", stagger)
	}
	cfg = cfg.OrDefault()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		sched = animation.DefaultScheduler()
	}
	t := &Trail{
		sched:           sched,
		cfg:             cfg,
		stagger:         stagger,
		opts:            opts,
		changeListeners: make(map[int]func(int, animation.Values)),
		restListeners:   make(map[int]func()),
	}
	if err := t.grow(n); err != nil {
		return nil, err
	}
	return t, nil
}

// Start jumps every member to from and starts member i toward to after
// i*stagger. Non-finite values are rejected before any member moves.
func (t *Trail) Start(from, to animation.Values) error {
	const op = "trail.Trail.Start"
	if t.disposed {
		return t.disposedErr(op)
	}
	if err := animation.CheckFinite(op, from, to); err != nil {
		return err
	}
	t.from = from.Clone()
	t.to = to.Clone()
	t.started = true
	t.waiting = true
	t.starting = true
	for i, m := range t.members {
		m.cancel()
		if len(from) > 0 {
			if err := m.ctrl.Jump(from); err != nil {
				t.starting = false
				return err
			}
		}
		if err := t.schedule(i, m, t.to, false); err != nil {
			t.starting = false
			return err
		}
	}
	t.starting = false
	t.rested()
	return nil
}

// Restart replays the last Start from its original from values.
func (t *Trail) Restart() error {
	return t.Start(t.from, t.to)
}

// Set moves the trail toward new targets. Members still waiting for their
// start keep waiting, with the targets merged and the stagger measured
// again from now. Members already moving are redirected at their stagger
// offset. Members already headed for the targets are left alone.
func (t *Trail) Set(to animation.Values) error {
	const op = "trail.Trail.Set"
	if t.disposed {
		return t.disposedErr(op)
	}
	if err := animation.CheckFinite(op, nil, to); err != nil {
		return err
	}
	t.to = t.to.Merge(to)
	if !t.started {
		t.from = nil
		t.started = true
	}
	t.waiting = true
	t.starting = true
	var errs []error
	for i, m := range t.members {
		if m.timer != nil {
			pending, set := m.pending.Merge(to), m.set
			m.cancel()
			if err := t.schedule(i, m, pending, set); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if headedFor(m.ctrl, to) {
			continue
		}
		if err := t.schedule(i, m, to.Clone(), true); err != nil {
			errs = append(errs, err)
		}
	}
	t.starting = false
	t.rested()
	return errors.Join(errs...)
}

func headedFor(c *animation.Controller, to animation.Values) bool {
	goal := c.Goal()
	for key, x := range to {
		if g, ok := goal[key]; !ok || g != x {
			return false
		}
	}
	return true
}

// schedule runs a start (or a redirect when set is true) for member i after
// i*stagger. A deferred run reports its own failure.
func (t *Trail) schedule(i int, m *member, to animation.Values, set bool) error {
	run := func(to animation.Values) error {
		if set {
			return m.ctrl.Set(to)
		}
		return m.ctrl.Start(nil, to)
	}
	delay := time.Duration(i) * t.stagger
	if delay <= 0 {
		return run(to)
	}
	m.pending = to
	m.set = set
	m.timer = t.sched.After(delay, func() {
		pending := m.pending
		m.timer = nil
		m.pending = nil
		if err := run(pending); err != nil {
			report(err)
		}
		t.rested()
	})
	return nil
}

// report forwards an error raised inside a timer. Disposed errors were
// reported where they were raised.
func report(err error) {
	var me *errors.MotionError
	if errors.As(err, &me) && !errors.Is(err, errors.ErrDisposed) {
		errors.Report(me)
	}
}

// Resize grows or shrinks the trail. New members start at the trail's from
// values and follow with their full stagger offset; removed members are
// stopped and disposed.
func (t *Trail) Resize(n int) error {
	if t.disposed {
		return t.disposedErr("trail.Trail.Resize")
	}
	if n < 0 {
		return errors.Config("trail.Trail.Resize", "count must be >= 0, got %d", n)
	}
	if n < len(t.members) {
		for _, m := range t.members[n:] {
			m.cancel()
			m.ctrl.Dispose()
		}
		clear(t.members[n:])
		t.members = t.members[:n]
		t.rested()
		return nil
	}
	old := len(t.members)
	if err := t.grow(n - old); err != nil {
		return err
	}
	if !t.started {
		return nil
	}
	t.waiting = true
	for i := old; i < n; i++ {
		m := t.members[i]
		if len(t.from) > 0 {
			if err := m.ctrl.Jump(t.from); err != nil {
				return err
			}
		}
		if err := t.schedule(i, m, t.to, false); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trail) grow(n int) error {
	for range n {
		i := len(t.members)
		opts := append([]animation.Option{
			animation.WithScheduler(t.sched),
			animation.WithName(fmt.Sprintf("trail[%d]", i)),
		}, t.opts...)
		ctrl, err := animation.NewController(t.cfg, opts...)
		if err != nil {
			return err
		}
		ctrl.OnTick(func(v animation.Values) {
			for _, listener := range t.changeListeners {
				listener(i, v)
			}
		})
		ctrl.OnRest(func(animation.Values) {
			t.rested()
		})
		t.members = append(t.members, &member{ctrl: ctrl})
	}
	return nil
}

// Stop halts every member where it is and cancels pending starts.
func (t *Trail) Stop() {
	t.waiting = false
	for _, m := range t.members {
		m.cancel()
		m.ctrl.Stop()
	}
}

// Dispose stops and releases every member.
func (t *Trail) Dispose() {
	if t.disposed {
		return
	}
	t.Stop()
	for _, m := range t.members {
		m.ctrl.Dispose()
	}
	t.members = nil
	t.disposed = true
}

// Len returns the number of members.
func (t *Trail) Len() int {
	return len(t.members)
}

// Member returns the controller of member i.
func (t *Trail) Member(i int) *animation.Controller {
	if i < 0 || i >= len(t.members) {
		return nil
	}
	return t.members[i].ctrl
}

// Values returns the current values of every member in order.
func (t *Trail) Values() []animation.Values {
	out := make([]animation.Values, len(t.members))
	for i, m := range t.members {
		out[i] = m.ctrl.Values()
	}
	return out
}

// IsAnimating reports whether any member is moving or waiting to start.
func (t *Trail) IsAnimating() bool {
	for _, m := range t.members {
		if m.timer != nil || m.ctrl.IsAnimating() {
			return true
		}
	}
	return false
}

// OnChange adds a callback receiving every member commit with the member
// index. Returns an unsubscribe function.
func (t *Trail) OnChange(fn func(i int, v animation.Values)) func() {
	id := t.nextListenerID
	t.nextListenerID++
	t.changeListeners[id] = fn
	return func() {
		delete(t.changeListeners, id)
	}
}

// OnRest adds a callback invoked once all members have settled after a
// Start, Set or Resize. Returns an unsubscribe function.
func (t *Trail) OnRest(fn func()) func() {
	id := t.nextListenerID
	t.nextListenerID++
	t.restListeners[id] = fn
	return func() {
		delete(t.restListeners, id)
	}
}

func (t *Trail) rested() {
	if t.starting || !t.waiting || t.IsAnimating() {
		return
	}
	t.waiting = false
	for _, listener := range t.restListeners {
		listener()
	}
}

func (t *Trail) disposedErr(op string) error {
	return errors.Report(errors.Lifecycle(op, "", errors.ErrDisposed))
}
