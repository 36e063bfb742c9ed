package statemachine

import "time"

// Clock is the monotonic time source of a machine. It is sampled exactly
// once per tick.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the process clock, which carries a monotonic reading.
var SystemClock Clock = ClockFunc(time.Now) //nolint:gochecknoglobals
