package internal

import "time"

// Timer is a pending callback. Stop prevents it from running and reports
// whether it was still pending. It is an alias so clocks outside this package
// can implement Clock without importing it.
type Timer = interface {
	Stop() bool
}

// Clock schedules callbacks. Debouncers take their timers from it.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
