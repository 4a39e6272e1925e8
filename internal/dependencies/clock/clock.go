// Package clock is the time source of the executor. Every call samples it
// once, so all deadline checks inside one call agree.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// System reads the wall clock, normalised to UTC so stored deadlines compare
// and serialise the same on every host
type System struct{}

var _ Clock = System{}

// New returns the system clock
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}
