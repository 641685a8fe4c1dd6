// File: adapters/priority.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"math"

	"github.com/momentics/hiothread/api"
)

// ClampPriority bounds p to the normalized scale.
func ClampPriority(p int) int {
	switch {
	case p < api.PriorityLowest:
		return api.PriorityLowest
	case p > api.PriorityHighest:
		return api.PriorityHighest
	}
	return p
}

// NormalizePriority maps a normalized priority linearly onto the native range
// [lowest, highest]: lowest + round((highest-lowest) * p / 255). The end points
// are returned exactly rather than through floating point.
func NormalizePriority(p, lowest, highest int) int {
	p = ClampPriority(p)
	switch p {
	case api.PriorityLowest:
		return lowest
	case api.PriorityHighest:
		return highest
	}
	span := float64(highest - lowest)
	return lowest + int(math.Round(span*float64(p)/float64(api.PriorityHighest)))
}
