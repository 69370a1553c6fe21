package clock

import "time"

// Clock provides the current time. Clock-in and clock-out stamps are taken
// from it so tests can pin them.
type Clock interface {
	Now() time.Time
}

// RealClock reads the local system clock
type RealClock struct{}

var _ Clock = (*RealClock)(nil)

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current local time
func (c *RealClock) Now() time.Time {
	return time.Now().Local()
}
