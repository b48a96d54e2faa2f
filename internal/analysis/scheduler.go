package analysis

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from firing. It reports false if the call already ran
	// or was stopped.
	Stop() bool
}

// Scheduler runs f once after d without blocking the caller.
// The orchestrator never sleeps: every step schedules its successor and returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

// NewRealScheduler fires calls on the runtime timer.
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
