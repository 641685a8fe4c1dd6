// File: api/backend.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backend contract for OS thread management. One implementation exists per
// supported platform and is selected at build time.

package api

import "time"

// Backend creates, tunes and reclaims native OS threads.
//
// A thread returned by CreateSuspended does not run entry until Resume is called.
// Exactly one of Resume or Abort must follow CreateSuspended. After Resume the
// handle is released by exactly one of WaitAndReclaim or ReclaimWithoutWaiting.
type Backend interface {
	// CreateSuspended creates a native thread that will call entry once resumed.
	CreateSuspended(entry func(), stackSize int) (Handle, error)

	// PriorityRange reports the native priority values that the lowest and
	// highest normalized priorities map to. lowest may be numerically greater
	// than highest (e.g. nice values).
	PriorityRange() (lowest, highest int)

	// SetPriority applies a native priority value.
	SetPriority(h Handle, native int) error

	// SetAffinity restricts the thread to the processors in mask.
	SetAffinity(h Handle, mask uint64) error

	// SetName sets a debug name. Best effort.
	SetName(h Handle, name string) error

	// Resume starts a suspended thread.
	Resume(h Handle) error

	// Abort terminates a suspended thread without running its entry.
	Abort(h Handle)

	// WaitAndReclaim blocks until the thread terminates and releases it.
	WaitAndReclaim(h Handle) error

	// ReclaimWithoutWaiting releases the handle; the thread keeps running.
	ReclaimWithoutWaiting(h Handle)

	// CurrentThreadID returns the OS id of the calling thread.
	CurrentThreadID() uint64

	// LogicalProcessorCount returns the number of logical processors.
	LogicalProcessorCount() int

	// Sleep suspends the calling thread for at least d.
	Sleep(d time.Duration)

	// Yield hints the scheduler to run other threads.
	Yield()
}
