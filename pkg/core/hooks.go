package core

import (
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/chain"
	"github.com/go-drift/motion/pkg/trail"
	"github.com/go-drift/motion/pkg/transition"
)

// Disposable is implemented by every object a scope can own.
type Disposable interface {
	Dispose()
}

// Use creates a disposable and registers it for automatic disposal.
// The object will be disposed when the scope is disposed.
//
// Example:
//
//	tr := core.Use(scope, func() *myEffect {
//	    return newMyEffect()
//	})
func Use[C Disposable](s *Scope, create func() C) C {
	obj := create()
	s.OnDispose(obj.Dispose)
	return obj
}

// UseController creates a controller on the scope's scheduler and
// registers it for automatic disposal. opts are applied after the
// scheduler option, so a WithScheduler in opts wins.
func UseController(s *Scope, cfg animation.SpringConfig, opts ...animation.Option) (*animation.Controller, error) {
	opts = append([]animation.Option{animation.WithScheduler(s.Scheduler())}, opts...)
	c, err := animation.NewController(cfg, opts...)
	if err != nil {
		return nil, err
	}
	s.OnDispose(c.Dispose)
	return c, nil
}

// UseSpring creates a controller like UseController and immediately
// starts it from from toward to.
//
// Example:
//
//	fade, err := core.UseSpring(scope, animation.GentleConfig,
//	    animation.Values{"opacity": 0}, animation.Values{"opacity": 1})
func UseSpring(s *Scope, cfg animation.SpringConfig, from, to animation.Values, opts ...animation.Option) (*animation.Controller, error) {
	c, err := UseController(s, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(from, to); err != nil {
		return nil, err
	}
	return c, nil
}

// UseTrail creates a trail of n members on the scope's scheduler and
// registers it for automatic disposal.
func UseTrail(s *Scope, n int, cfg animation.SpringConfig, stagger time.Duration, opts ...animation.Option) (*trail.Trail, error) {
	t, err := trail.New(s.Scheduler(), n, cfg, stagger, opts...)
	if err != nil {
		return nil, err
	}
	s.OnDispose(t.Dispose)
	return t, nil
}

// UseTransition creates a keyed list transition on the scope's scheduler
// and registers it for automatic disposal. Items still leaving when the
// scope is disposed are dropped without their OnRemove callback.
func UseTransition[T any, K comparable](s *Scope, props transition.Props[T, K]) (*transition.Transition[T, K], error) {
	t, err := transition.New(s.Scheduler(), props)
	if err != nil {
		return nil, err
	}
	s.OnDispose(t.Dispose)
	return t, nil
}

// UseChain creates a chain on the scope's scheduler. Disposing the scope
// cancels every start the chain still has pending.
func UseChain(s *Scope) *chain.Chain {
	return Use(s, func() *chain.Chain {
		return chain.New(s.Scheduler())
	})
}

// UseRef creates a ref for controllers of this scope. Refs hold their
// controllers weakly and need no disposal; disposing the scope stops every
// controller still attached.
func UseRef(s *Scope, name string) *animation.Ref {
	ref := animation.NewRef(name)
	s.OnDispose(ref.Stop)
	return ref
}

// UseDerived calls fn with d evaluated against every commit of c. The
// subscription is automatically cleaned up when the scope is disposed.
//
// Example:
//
//	core.UseDerived(scope, card, animation.To(func(a ...float64) string {
//	    return fmt.Sprintf("translate(%.0fpx)", a[0])
//	}, "x"), func(css string) { node.SetStyle(css) })
func UseDerived[T any](s *Scope, c *animation.Controller, d animation.Derived[T], fn func(T)) {
	unsub := c.OnTick(func(v animation.Values) {
		fn(d.Get(v))
	})
	s.OnDispose(unsub)
}

// UseRest calls fn every time c comes to rest until the scope is disposed.
func UseRest(s *Scope, c *animation.Controller, fn func(animation.Values)) {
	s.OnDispose(c.OnRest(fn))
}
