package tracing

import "time"

// A TimeTeller tells the current time. Tracers stamp spans through it
// rather than reading the system clock directly.
type TimeTeller interface {
	Now() time.Time
}

// WallClock is a TimeTeller backed by the system clock.
type WallClock struct{}

// Now returns the current system time.
func (WallClock) Now() time.Time {
	return time.Now()
}
