package engine

import "time"

// Clock is the time source of the tick scheduler
type Clock interface {
	Now() time.Time
	// After behaves like time.After
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
