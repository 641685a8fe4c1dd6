// File: thread/this_thread.go
// Author: momentics <momentics@gmail.com>
//
// Utilities acting on the calling thread.

package thread

import (
	"math"
	"time"
)

// CurrentID returns the identity of the calling OS thread. Goroutines that are
// not locked to their thread (every goroutine not started by this package)
// may observe different values across calls.
func CurrentID() ID {
	return ID(Backend().CurrentThreadID())
}

// Yield hints the scheduler to run other threads. No ordering is implied.
func Yield() {
	Backend().Yield()
}

// SleepFor suspends the calling thread for at least d. Non-positive durations
// return immediately.
func SleepFor(d time.Duration) {
	if d <= 0 {
		return
	}
	Backend().Sleep(d)
}

// SleepForSeconds is SleepFor for a fractional number of seconds.
func SleepForSeconds(s float64) {
	SleepFor(ToNanoseconds(s, time.Second))
}

// ToNanoseconds converts value units to a Duration, rounding any fractional
// nanosecond up and clamping at the largest representable Duration.
// Non-positive and NaN values convert to zero.
func ToNanoseconds(value float64, unit time.Duration) time.Duration {
	if !(value > 0) || unit <= 0 {
		return 0
	}
	ns := value * float64(unit)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	d := time.Duration(ns)
	if float64(d) < ns {
		d++
	}
	return d
}

// SleepUntil suspends the caller until the clock reaches deadline. Every
// wake-up re-checks the clock, so early wake-ups only lead to another wait.
func SleepUntil(deadline time.Time) {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		timer := time.NewTimer(remaining)
		<-timer.C
	}
}
