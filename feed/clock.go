package feed

import "time"

// Clock supplies the time publish and period rules are evaluated at.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
