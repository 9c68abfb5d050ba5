package session

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs a single pending callback after a delay. Scheduling again
// replaces the pending callback. Callbacks must run on the caller's control
// thread.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
	Cancel()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}
