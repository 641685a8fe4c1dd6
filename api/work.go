// Package api
// Author: momentics <momentics@gmail.com>
//
// Unit of work contract executed on a freshly created thread.

package api

// Work is an owned, type-erased callable plus its arguments.
// Run is invoked exactly once, on the thread created for it.
type Work interface {
	Run()
}

// WorkFunc adapts a plain function to Work.
type WorkFunc func()

// Run calls f.
func (f WorkFunc) Run() { f() }
