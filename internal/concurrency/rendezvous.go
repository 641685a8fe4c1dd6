// File: internal/concurrency/rendezvous.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Startup rendezvous between the creating goroutine and a new thread.

package concurrency

import (
	"sync"

	"github.com/momentics/hiothread/api"
)

// Rendezvous lets the creator block until the new thread has taken ownership
// of its Work. It is scoped to one creation call and must not be reused.
type Rendezvous struct {
	mu      sync.Mutex
	cond    *sync.Cond
	started bool
	work    api.Work
}

// NewRendezvous pairs work with a fresh rendezvous.
func NewRendezvous(work api.Work) *Rendezvous {
	r := &Rendezvous{work: work}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Entry returns the function the backend runs on the new thread. It moves the
// Work into its own frame, signals started, then runs the Work outside the lock.
func (r *Rendezvous) Entry() func() {
	return func() {
		r.mu.Lock()
		w := r.work
		r.work = nil
		r.started = true
		r.mu.Unlock()
		r.cond.Signal()

		if w != nil {
			w.Run()
		}
	}
}

// Wait blocks until Entry has taken the Work.
func (r *Rendezvous) Wait() {
	r.mu.Lock()
	for !r.started {
		r.cond.Wait()
	}
	r.mu.Unlock()
}

// Started reports whether the new thread has signalled.
func (r *Rendezvous) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}
