// Package system provides the clocks stamped onto normalized records.
package system

import "time"

// Clock implements normalize.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Frozen always reports the same instant. Re-running a pass with a Frozen
// clock reproduces the record byte for byte.
type Frozen struct {
	At time.Time
}

// NewFrozen returns a clock stopped at t, in UTC.
func NewFrozen(t time.Time) Frozen {
	return Frozen{At: t.UTC()}
}

// Now returns the frozen instant.
func (f Frozen) Now() time.Time {
	return f.At
}
