package core

import (
	"sync"

	"github.com/go-drift/motion/pkg/animation"
)

// Scope owns the animation objects created through the Use hooks and tears
// them down together. A scope usually lives as long as the view or entity
// that displays its values.
//
// Scope is safe for concurrent registration, but the objects it creates
// must still be driven from the frame thread.
type Scope struct {
	sched     *animation.Scheduler
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// NewScope creates a scope whose hooks drive their objects on sched, or on
// the default scheduler when sched is nil.
func NewScope(sched *animation.Scheduler) *Scope {
	return &Scope{sched: sched}
}

// Scheduler returns the scheduler hooks created in this scope run on.
func (s *Scope) Scheduler() *animation.Scheduler {
	if s.sched == nil {
		return animation.DefaultScheduler()
	}
	return s.sched
}

// Child creates a scope that is disposed with s. Disposing the child first
// is fine; it simply runs its own disposers early.
func (s *Scope) Child() *Scope {
	child := &Scope{sched: s.sched}
	s.OnDispose(child.Dispose)
	return child
}

// OnDispose registers a cleanup function to be called when the scope is
// disposed. Returns an unregister function that can be called to remove
// the disposer. The cleanup function will only be called once.
func (s *Scope) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		// Already disposed, run cleanup immediately
		cleanup()
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// Dispose runs every registered disposer in reverse order. Later calls are
// no-ops.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	// Run disposers in reverse order (LIFO)
	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// IsDisposed returns true if this scope has been disposed.
func (s *Scope) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
