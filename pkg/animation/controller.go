package animation

import (
	"fmt"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// Status represents the lifecycle state of a [Controller].
//
//	          Start/Set              all values at rest
//	Idle ──────────────► Running ───────────────────────► Settled
//	                       │  ▲                              │
//	                  Stop │  └──────── Start/Set ───────────┘
//	                       ▼
//	                   Cancelled ──── Start/Set ───► Running
type Status int

const (
	// StatusIdle means the controller has never been started.
	StatusIdle Status = iota
	// StatusRunning means the controller is registered with its scheduler.
	StatusRunning
	// StatusSettled means every value reached its target.
	StatusSettled
	// StatusCancelled means Stop halted the controller mid-flight.
	StatusCancelled
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSettled:
		return "settled"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler drives the controller from s instead of the default
// scheduler.
func WithScheduler(s *Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithIntegrator replaces [EulerIntegrator].
func WithIntegrator(i Integrator) Option {
	return func(c *Controller) {
		if i != nil {
			c.integrate = i
		}
	}
}

// WithRef attaches the controller to r. Start calls are queued until
// r.Start() releases them.
func WithRef(r *Ref) Option {
	return func(c *Controller) { c.ref = r }
}

// WithName labels the controller in reported errors.
func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

// WithValues seeds the controller with resting values. A later Set
// animates from them.
func WithValues(v Values) Option {
	return func(c *Controller) {
		for key, x := range v {
			c.value(key).jump(x)
		}
	}
}

// Controller animates a named set of values toward their targets.
//
// A controller registers with its [Scheduler] while running, commits the
// full value mapping to its tick listeners once per frame, and unregisters
// as soon as every value is at rest. It is the only writer of its values.
//
// Always call Dispose when the owning scope is torn down.
type Controller struct {
	sched     *Scheduler
	config    SpringConfig
	integrate Integrator
	ref       *Ref
	name      string

	values   map[string]*Value
	order    []string
	status   Status
	ticker   *Ticker
	delay    *Timer
	pending  *startRequest
	queued   *startRequest
	disposed bool

	tickListeners   map[int]func(Values)
	restListeners   map[int]func(Values)
	startListeners  map[int]func()
	statusListeners map[int]func(Status)
	nextListenerID  int
}

type startRequest struct {
	from Values
	to   Values
}

// NewController creates a controller. An invalid config fails here, never
// at the first tick.
func NewController(cfg SpringConfig, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		config:          cfg,
		integrate:       EulerIntegrator,
		values:          make(map[string]*Value),
		status:          StatusIdle,
		tickListeners:   make(map[int]func(Values)),
		restListeners:   make(map[int]func(Values)),
		startListeners:  make(map[int]func()),
		statusListeners: make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = DefaultScheduler()
	}
	c.ticker = c.sched.NewTicker(c.tick)
	if c.ref != nil {
		c.ref.attach(c)
	}
	return c, nil
}

// Config returns the controller's spring config.
func (c *Controller) Config() SpringConfig {
	return c.config
}

// Scheduler returns the scheduler driving the controller.
func (c *Controller) Scheduler() *Scheduler {
	return c.sched
}

// Start animates toward to. Values in from are jumped to first, resetting
// their velocity; keys of to that the controller has never seen start at
// their target. If every value is already at rest on its target no frame
// is scheduled: the controller settles immediately, committing once.
//
// A controller attached to a [Ref] queues the call until the ref starts.
// A positive config Delay defers the start on the scheduler timeline.
func (c *Controller) Start(from, to Values) error {
	if c.disposed {
		return c.disposedErr("animation.Controller.Start")
	}
	if err := CheckFinite("animation.Controller.Start", from, to); err != nil {
		return err
	}
	req := &startRequest{from: from.Clone(), to: to.Clone()}
	if c.ref != nil {
		c.queued = req
		return nil
	}
	c.begin(req)
	return nil
}

// Set redirects the given targets without touching position or velocity,
// so the motion bends toward the new goal with no discontinuity. Setting
// the current targets is a no-op. Set on an idle, settled or cancelled
// controller starts it when some value has somewhere to go. Keys the
// controller has never seen jump to their target and are committed.
//
// A start still queued behind a delay or a [Ref] absorbs the targets
// instead.
func (c *Controller) Set(to Values) error {
	if c.disposed {
		return c.disposedErr("animation.Controller.Set")
	}
	if err := CheckFinite("animation.Controller.Set", nil, to); err != nil {
		return err
	}
	if c.pending != nil {
		c.pending.to = c.pending.to.Merge(to)
		return nil
	}
	if c.queued != nil {
		c.queued.to = c.queued.to.Merge(to)
		return nil
	}
	changed, jumped := false, false
	for _, key := range to.Keys() {
		target := to[key]
		v, ok := c.values[key]
		if !ok {
			c.value(key).jump(target)
			jumped = true
			continue
		}
		if v.Target == target {
			continue
		}
		v.retarget(target, c.config)
		if !v.resting {
			changed = true
		}
	}
	if !changed {
		if jumped && c.status != StatusRunning {
			c.notifyTick(c.Values())
		}
		return nil
	}
	c.run()
	return nil
}

// Jump moves values to the given positions immediately, with no motion,
// and commits once.
func (c *Controller) Jump(values Values) error {
	if c.disposed {
		return c.disposedErr("animation.Controller.Jump")
	}
	if err := CheckFinite("animation.Controller.Jump", values, nil); err != nil {
		return err
	}
	for key, x := range values {
		c.value(key).jump(x)
	}
	c.notifyTick(c.Values())
	if c.status == StatusRunning && c.allResting() {
		c.settle()
	}
	return nil
}

// Stop halts the controller where it is: it unregisters immediately,
// cancels a delayed start, zeroes velocities and leaves positions at their
// last committed values. A controller that is not running or waiting is
// left unchanged.
func (c *Controller) Stop() {
	if c.disposed {
		return
	}
	waiting := c.cancelDelay()
	if c.status != StatusRunning && !waiting {
		return
	}
	c.ticker.Stop()
	for _, v := range c.values {
		v.Velocity = 0
		v.tween = nil
		v.resting = true
	}
	c.setStatus(StatusCancelled)
}

// Dispose stops the controller and releases its listeners. Later calls
// report [errors.ErrDisposed].
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.Stop()
	c.disposed = true
	c.queued = nil
	if c.ref != nil {
		c.ref.detach(c)
	}
	c.tickListeners = nil
	c.restListeners = nil
	c.startListeners = nil
	c.statusListeners = nil
}

// IsDisposed reports whether Dispose was called.
func (c *Controller) IsDisposed() bool {
	return c.disposed
}

// Status returns the current status.
func (c *Controller) Status() Status {
	return c.status
}

// IsAnimating reports whether the controller is running or waiting on a
// delayed start.
func (c *Controller) IsAnimating() bool {
	return c.status == StatusRunning || c.pending != nil
}

// Values returns a snapshot of the current positions.
func (c *Controller) Values() Values {
	out := make(Values, len(c.values))
	for key, v := range c.values {
		out[key] = v.Current
	}
	return out
}

// Goal returns a snapshot of the targets.
func (c *Controller) Goal() Values {
	out := make(Values, len(c.values))
	for key, v := range c.values {
		out[key] = v.Target
	}
	return out
}

// Get returns the current position of key.
func (c *Controller) Get(key string) (float64, bool) {
	v, ok := c.values[key]
	if !ok {
		return 0, false
	}
	return v.Current, true
}

// Velocity returns the current velocity of key in units per second.
func (c *Controller) Velocity(key string) float64 {
	if v, ok := c.values[key]; ok {
		return v.Velocity
	}
	return 0
}

// OnTick adds a commit callback, invoked once per frame with the full
// value mapping while running, including the settling frame.
// Returns an unsubscribe function.
func (c *Controller) OnTick(fn func(Values)) func() {
	return addListener(c, c.tickListeners, fn)
}

// OnRest adds a callback invoked once each time every value comes to rest.
// Returns an unsubscribe function.
func (c *Controller) OnRest(fn func(Values)) func() {
	return addListener(c, c.restListeners, fn)
}

// OnStart adds a callback invoked when the controller starts running.
// Returns an unsubscribe function.
func (c *Controller) OnStart(fn func()) func() {
	return addListener(c, c.startListeners, fn)
}

// OnStatus adds a callback invoked whenever the status changes.
// Returns an unsubscribe function.
func (c *Controller) OnStatus(fn func(Status)) func() {
	return addListener(c, c.statusListeners, fn)
}

func addListener[F any](c *Controller, listeners map[int]F, fn F) func() {
	if listeners == nil {
		return func() {}
	}
	id := c.nextListenerID
	c.nextListenerID++
	listeners[id] = fn
	return func() {
		delete(listeners, id)
	}
}

// flush runs the start queued while a ref held the controller.
func (c *Controller) flush() {
	if c.disposed || c.queued == nil {
		return
	}
	req := c.queued
	c.queued = nil
	c.begin(req)
}

func (c *Controller) begin(req *startRequest) {
	c.cancelDelay()
	if c.config.Delay > 0 {
		c.pending = req
		c.delay = c.sched.After(c.config.Delay, func() {
			pending := c.pending
			c.pending = nil
			c.delay = nil
			if pending != nil && !c.disposed {
				c.apply(pending)
			}
		})
		return
	}
	c.apply(req)
}

func (c *Controller) apply(req *startRequest) {
	for _, key := range req.from.Keys() {
		c.value(key).jump(req.from[key])
	}
	for _, key := range req.to.Keys() {
		target := req.to[key]
		v, ok := c.values[key]
		if !ok {
			c.value(key).jump(target)
			continue
		}
		v.retarget(target, c.config)
	}
	if c.allResting() {
		c.ticker.Stop()
		if c.status == StatusRunning {
			c.notifyTick(c.Values())
			c.settle()
			return
		}
		c.setStatus(StatusSettled)
		c.notifyTick(c.Values())
		c.notifyRest()
		return
	}
	c.run()
}

// run moves the controller to Running and registers its ticker.
func (c *Controller) run() {
	if c.status != StatusRunning {
		c.setStatus(StatusRunning)
		for _, listener := range c.startListeners {
			listener()
		}
	}
	c.ticker.Start()
}

func (c *Controller) tick(dt time.Duration) {
	if c.status != StatusRunning {
		return
	}
	secs := dt.Seconds()
	resting := true
	for _, key := range c.order {
		if !c.values[key].advance(c.integrate, c.config, secs) {
			resting = false
		}
	}
	c.notifyTick(c.Values())
	if resting && c.status == StatusRunning {
		c.settle()
	}
}

func (c *Controller) settle() {
	c.ticker.Stop()
	c.setStatus(StatusSettled)
	c.notifyRest()
}

func (c *Controller) notifyRest() {
	snapshot := c.Values()
	for _, listener := range c.restListeners {
		listener(snapshot)
	}
	if c.ref != nil {
		c.ref.rested()
	}
}

func (c *Controller) notifyTick(snapshot Values) {
	for _, listener := range c.tickListeners {
		listener(snapshot)
	}
}

func (c *Controller) setStatus(status Status) {
	if c.status == status {
		return
	}
	c.status = status
	for _, listener := range c.statusListeners {
		listener(status)
	}
}

// cancelDelay drops a pending delayed start and reports whether one
// existed.
func (c *Controller) cancelDelay() bool {
	if c.pending == nil {
		return false
	}
	c.delay.Stop()
	c.delay = nil
	c.pending = nil
	return true
}

func (c *Controller) allResting() bool {
	for _, v := range c.values {
		if !v.resting {
			return false
		}
	}
	return true
}

func (c *Controller) value(key string) *Value {
	v, ok := c.values[key]
	if !ok {
		v = &Value{resting: true}
		c.values[key] = v
		c.order = append(c.order, key)
	}
	return v
}

func (c *Controller) disposedErr(op string) error {
	return errors.Report(errors.Lifecycle(op, c.name, errors.ErrDisposed))
}

// CheckFinite returns a numeric error for the first NaN or infinite value
// in sets.
func CheckFinite(op string, sets ...Values) error {
	for _, set := range sets {
		for key, x := range set {
			if !finite(x) {
				return errors.Numeric(op, key, x)
			}
		}
	}
	return nil
}
