package animation

import "time"

// Clock provides time for a [Scheduler]. The default implementation uses
// system time. Tests inject a fake clock via [WithClock] to control
// frame timing deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
