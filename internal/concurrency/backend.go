// File: internal/concurrency/backend.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Build-time selection of the OS thread backend.

package concurrency

import (
	"math"
	"time"

	"github.com/momentics/hiothread/api"
)

// NewBackend returns the OS thread backend for the build platform.
// newPlatformBackend is provided by exactly one backend_<goos>.go file;
// building for a platform without one fails at compile time.
func NewBackend() api.Backend {
	return newPlatformBackend()
}

// maxSleep is the longest single sleep a backend performs.
const maxSleep = time.Duration(math.MaxInt64)

// clampSleep bounds d to what the backend can represent.
func clampSleep(d, limit time.Duration) time.Duration {
	if d > limit {
		return limit
	}
	return d
}
