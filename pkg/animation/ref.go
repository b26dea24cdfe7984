package animation

import (
	"slices"
	"weak"

	"github.com/go-drift/motion/pkg/errors"
)

// Ref is an imperative handle on a group of controllers.
//
// Controllers created with [WithRef] hold their Start calls until
// Ref.Start releases them, which lets a chain decide when each
// group begins. The ref only keeps weak pointers: it never extends the
// lifetime of a controller.
type Ref struct {
	name        string
	controllers []weak.Pointer[Controller]

	restListeners map[int]func()
	nextID        int
	starting      bool
	waiting       bool
}

// NewRef creates an empty ref. The name labels reported errors.
func NewRef(name string) *Ref {
	return &Ref{
		name:          name,
		restListeners: make(map[int]func()),
	}
}

// Name returns the ref label.
func (r *Ref) Name() string {
	return r.name
}

// Controllers returns the live attached controllers in attach order.
func (r *Ref) Controllers() []*Controller {
	out := make([]*Controller, 0, len(r.controllers))
	live := r.controllers[:0]
	for _, wp := range r.controllers {
		c := wp.Value()
		if c == nil || c.disposed {
			continue
		}
		live = append(live, wp)
		out = append(out, c)
	}
	clear(r.controllers[len(live):])
	r.controllers = live
	return out
}

// Len returns the number of live attached controllers.
func (r *Ref) Len() int {
	return len(r.Controllers())
}

// Start releases the queued start of every attached controller. A ref with
// no live controller reports and returns [errors.ErrDanglingRef].
func (r *Ref) Start() error {
	controllers := r.Controllers()
	if len(controllers) == 0 {
		return errors.Report(errors.Lifecycle("animation.Ref.Start", r.name, errors.ErrDanglingRef))
	}
	r.waiting = true
	r.starting = true
	for _, c := range controllers {
		c.flush()
	}
	r.starting = false
	r.rested()
	return nil
}

// Stop stops every attached controller.
func (r *Ref) Stop() {
	r.waiting = false
	for _, c := range r.Controllers() {
		c.Stop()
	}
}

// Set redirects every attached controller. Errors are joined.
func (r *Ref) Set(to Values) error {
	var errs []error
	for _, c := range r.Controllers() {
		if err := c.Set(to); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnRest adds a callback invoked once per Start, after every attached
// controller has settled. Returns an unsubscribe function.
func (r *Ref) OnRest(fn func()) func() {
	id := r.nextID
	r.nextID++
	r.restListeners[id] = fn
	return func() {
		delete(r.restListeners, id)
	}
}

func (r *Ref) attach(c *Controller) {
	wp := weak.Make(c)
	if slices.Contains(r.controllers, wp) {
		return
	}
	r.controllers = append(r.controllers, wp)
}

func (r *Ref) detach(c *Controller) {
	wp := weak.Make(c)
	r.controllers = slices.DeleteFunc(r.controllers, func(p weak.Pointer[Controller]) bool {
		return p == wp
	})
	r.rested()
}

// rested is called by controllers when they settle.
func (r *Ref) rested() {
	if r.starting || !r.waiting {
		return
	}
	for _, c := range r.Controllers() {
		if c.IsAnimating() || c.queued != nil {
			return
		}
	}
	r.waiting = false
	for _, listener := range r.restListeners {
		listener()
	}
}
