// File: api/attributes.go
// Author: momentics <momentics@gmail.com>
//
// Thread creation attributes and the normalized priority scale.

package api

import "github.com/momentics/hiothread/affinity"

// Normalized priority buckets. Backends map the [PriorityLowest, PriorityHighest]
// range linearly onto their native scheduling range.
const (
	PriorityLowest  = 0
	PriorityBelow   = 64
	PriorityNormal  = 127
	PriorityAbove   = 191
	PriorityHighest = 255
)

// DefaultStackSize is the stack size requested when none is configured.
const DefaultStackSize = 64 * 1024

// DefaultName is the debug name given to threads created with default attributes.
const DefaultName = "hiothread"

// Attributes is an immutable snapshot of thread creation parameters.
// No validation happens here: out-of-range priorities are clamped when the
// backend adapter translates them.
type Attributes struct {
	StackSize int           // requested stack size in bytes
	Priority  int           // normalized priority, 0..255
	Affinity  affinity.Mask // processors the thread may run on
	Name      string        // short debug name
}

// DefaultAttributes returns the attributes used when the caller supplies none.
func DefaultAttributes() Attributes {
	return Attributes{
		StackSize: DefaultStackSize,
		Priority:  PriorityNormal,
		Affinity:  affinity.All,
		Name:      DefaultName,
	}
}
