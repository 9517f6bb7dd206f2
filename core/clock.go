package interview

import "time"

// Clock is the time source for every delay the session schedules.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	// Stop prevents the timer from firing and reports whether it was still
	// pending.
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// loopClock runs timer callbacks on the session loop instead of the timer
// goroutine.
type loopClock struct {
	Clock
	enqueue func(func()) bool
}

func (c loopClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.Clock.AfterFunc(d, func() { c.enqueue(f) })
}
