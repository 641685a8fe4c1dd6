// File: thread/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Move-only owner of one OS thread.

package thread

import (
	"runtime"

	"github.com/momentics/hiothread/adapters"
	"github.com/momentics/hiothread/api"
	"github.com/momentics/hiothread/control"
	"github.com/momentics/hiothread/internal/concurrency"
)

// noCopy makes go vet's copylocks check flag copies of a Thread.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// owned is the live side of a Thread. It is heap allocated so ownership moves
// by pointer and the unreachable-while-joinable finalizer follows the handle.
type owned struct {
	h       api.Handle
	adapter *adapters.BackendAdapter
}

// Thread owns zero or one OS thread. The zero value owns none.
type Thread struct {
	_ noCopy
	o *owned
}

// New runs fn(args...) on a new thread with default attributes.
func New(fn any, args ...any) (*Thread, error) {
	return NewWithAttributes(api.DefaultAttributes(), fn, args...)
}

// NewWithAttributes runs fn(args...) on a new thread created with attrs.
// Arguments are copied before the thread is created. A method value such as
// foo.Run binds its receiver at the call site.
func NewWithAttributes(attrs api.Attributes, fn any, args ...any) (*Thread, error) {
	w, err := concurrency.Bind(fn, args...)
	if err != nil {
		return nil, err
	}
	return Spawn(attrs, w)
}

// Spawn runs a prepackaged unit of work on a new thread created with attrs.
func Spawn(attrs api.Attributes, w api.Work) (*Thread, error) {
	if w == nil {
		return nil, nilCallable()
	}
	a := current()
	h, err := a.Create(w, attrs)
	if err != nil {
		return nil, err
	}
	o := &owned{h: h, adapter: a}
	runtime.SetFinalizer(o, finalizeOwned)
	return &Thread{o: o}, nil
}

func finalizeOwned(o *owned) {
	violation(ViolationUnreachable, ID(o.h.ID))
}

// Joinable reports whether t owns a thread.
func (t *Thread) Joinable() bool {
	return t != nil && t.o != nil
}

// ID returns the identity of the owned thread, or the zero ID.
func (t *Thread) ID() ID {
	if !t.Joinable() {
		return 0
	}
	return ID(t.o.h.ID)
}

// NativeHandle exposes the backend handle token without transferring ownership.
func (t *Thread) NativeHandle() uintptr {
	if !t.Joinable() {
		return 0
	}
	return t.o.h.Native
}

// Join blocks until the thread terminates and then empties t. It is a no-op
// on an empty Thread. Joining from the thread itself terminates the process.
// If the backend fails to wait, t stays joinable and the error is returned.
func (t *Thread) Join() error {
	if !t.Joinable() {
		return nil
	}
	o := t.o
	backend := o.adapter.Backend()
	if backend.CurrentThreadID() == o.h.ID {
		violation(ViolationSelfJoin, ID(o.h.ID))
		return nil
	}
	if err := backend.WaitAndReclaim(o.h); err != nil {
		control.Logger().WithError(err).WithField("thread_id", ID(o.h.ID).String()).Error("join failed")
		return api.BackendError(adapters.OpWait, err)
	}
	t.release(o)
	o.adapter.Metrics().Joined()
	return nil
}

// Detach lets the thread run on untracked and empties t immediately.
// It is a no-op on an empty Thread.
func (t *Thread) Detach() {
	if !t.Joinable() {
		return
	}
	o := t.o
	o.adapter.Backend().ReclaimWithoutWaiting(o.h)
	t.release(o)
	o.adapter.Metrics().Detached()
}

func (t *Thread) release(o *owned) {
	runtime.SetFinalizer(o, nil)
	t.o = nil
}

// Swap exchanges the threads owned by t and other.
func (t *Thread) Swap(other *Thread) {
	t.o, other.o = other.o, t.o
}

// Move transfers ownership to a new Thread and leaves t empty.
func (t *Thread) Move() *Thread {
	n := &Thread{o: t.o}
	t.o = nil
	return n
}

// MoveFrom transfers ownership from src into t and leaves src empty.
// t must be empty: moving onto a joinable Thread terminates the process.
func (t *Thread) MoveFrom(src *Thread) {
	if t == src {
		return
	}
	if t.Joinable() {
		violation(ViolationMoveOntoActive, t.ID())
		return
	}
	t.o = src.o
	src.o = nil
}

// Release ends t's lifetime. t must be empty: releasing a joinable Thread
// terminates the process. Threads that become unreachable while joinable
// are reported the same way when collected.
func (t *Thread) Release() {
	if t.Joinable() {
		violation(ViolationReleaseJoinable, t.ID())
	}
}

// HardwareConcurrency returns the number of logical processors.
func HardwareConcurrency() int {
	return Backend().LogicalProcessorCount()
}

func nilCallable() error {
	return api.NewError(api.ErrCodeInvalidArgument, "callable is nil")
}

// Go0 runs fn on a new thread with default attributes.
func Go0(fn func()) (*Thread, error) {
	if fn == nil {
		return nil, nilCallable()
	}
	return Spawn(api.DefaultAttributes(), concurrency.Bind0(fn))
}

// Go1 runs fn(a) on a new thread with default attributes.
func Go1[A any](fn func(A), a A) (*Thread, error) {
	if fn == nil {
		return nil, nilCallable()
	}
	return Spawn(api.DefaultAttributes(), concurrency.Bind1(fn, a))
}

// Go2 runs fn(a, b) on a new thread with default attributes.
func Go2[A, B any](fn func(A, B), a A, b B) (*Thread, error) {
	if fn == nil {
		return nil, nilCallable()
	}
	return Spawn(api.DefaultAttributes(), concurrency.Bind2(fn, a, b))
}

// Go3 runs fn(a, b, c) on a new thread with default attributes.
func Go3[A, B, C any](fn func(A, B, C), a A, b B, c C) (*Thread, error) {
	if fn == nil {
		return nil, nilCallable()
	}
	return Spawn(api.DefaultAttributes(), concurrency.Bind3(fn, a, b, c))
}
