// Package errors provides structured error handling for the motion runtime.
//
// Configuration errors are returned to the caller synchronously. Lifecycle
// errors (duplicate transition keys, starting a disposed controller, a chain
// link whose handle is gone) are sent to the global [ErrorHandler] via
// [Report] so one failing animation never halts the others.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates an invalid spring or scheduling configuration.
	KindConfig
	// KindLifecycle indicates an operation on an item, controller or handle
	// in the wrong lifecycle state.
	KindLifecycle
	// KindNumeric indicates a non-finite value reached the integrator.
	KindNumeric
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLifecycle:
		return "lifecycle"
	case KindNumeric:
		return "numeric"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by [MotionError.Err]. Match with errors.Is.
var (
	// ErrInvalidConfig is returned for non-positive or non-finite
	// tension, friction or mass, and for negative delays.
	ErrInvalidConfig = errors.New("invalid animation config")
	// ErrDisposed is returned when a disposed object is used.
	ErrDisposed = errors.New("use of disposed animation")
	// ErrDuplicateKey is reported when a transition update repeats a key.
	ErrDuplicateKey = errors.New("duplicate transition key")
	// ErrDanglingRef is reported when a chain link fires for a handle
	// whose controllers no longer exist.
	ErrDanglingRef = errors.New("dangling animation reference")
	// ErrNonFinite is wrapped by numeric errors for NaN or infinite values.
	ErrNonFinite = errors.New("non-finite animation value")
)

// MotionError represents a structured error raised by an animation.
type MotionError struct {
	// Op is the operation that failed (e.g., "animation.Controller.Start").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Key identifies the property, item key or link involved, if any.
	Key string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MotionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s] key=%s: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MotionError) Unwrap() error {
	return e.Err
}

// Config builds a configuration error wrapping ErrInvalidConfig.
func Config(op, format string, args ...any) *MotionError {
	return &MotionError{
		Op:   op,
		Kind: KindConfig,
		Err:  fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)),
	}
}

// Lifecycle builds a lifecycle error for key wrapping err.
func Lifecycle(op, key string, err error) *MotionError {
	return &MotionError{
		Op:   op,
		Kind: KindLifecycle,
		Key:  key,
		Err:  err,
	}
}

// Numeric builds a numeric error for key wrapping ErrNonFinite.
func Numeric(op, key string, x float64) *MotionError {
	return &MotionError{
		Op:   op,
		Kind: KindNumeric,
		Key:  key,
		Err:  fmt.Errorf("%w: %v", ErrNonFinite, x),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Scheduler.Frame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the motion runtime.
type ErrorHandler interface {
	// HandleError is called when an error is reported.
	HandleError(err *MotionError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Is reports whether any error in err's chain matches target.
// It is re-exported so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
