package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

// ErrorRecorder captures reported errors and panics instead of logging
// them.
type ErrorRecorder struct {
	mu     sync.Mutex
	errs   []*errors.MotionError
	panics []*errors.PanicError
}

// RecordErrors installs a recorder as the error handler for the duration
// of the test.
func RecordErrors(t testing.TB) *ErrorRecorder {
	r := &ErrorRecorder{}
	prev := errors.SetHandler(r)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return r
}

// HandleError records err.
func (r *ErrorRecorder) HandleError(err *errors.MotionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandlePanic records err.
func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

// Errors returns the recorded errors in report order.
func (r *ErrorRecorder) Errors() []*errors.MotionError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.MotionError(nil), r.errs...)
}

// Panics returns the recorded panics in report order.
func (r *ErrorRecorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// Count returns how many recorded errors match target.
func (r *ErrorRecorder) Count(target error) int {
	n := 0
	for _, err := range r.Errors() {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (r *ErrorRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
	r.panics = nil
}
