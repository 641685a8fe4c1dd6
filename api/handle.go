// Package api
// Author: momentics <momentics@gmail.com>
//
// Opaque native thread handle shared between backends and the thread object.

package api

// Handle references one OS thread. ID zero is the empty sentinel: a Handle
// with a non-zero ID is the unique live reference to exactly one thread.
type Handle struct {
	Native uintptr // backend-specific token, meaningful only to the issuing backend
	ID     uint64  // OS thread id
}

// IsEmpty reports whether h references no thread.
func (h Handle) IsEmpty() bool { return h.ID == 0 }

// EmptyHandle is the no-thread sentinel.
var EmptyHandle = Handle{}
