//go:build linux
// +build linux

// File: internal/concurrency/backend_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux OS thread backend. Each thread is a goroutine locked to its own OS
// thread for its whole life; when the goroutine returns while still locked the
// runtime destroys the OS thread. Priority maps onto the per-thread nice value,
// affinity onto sched_setaffinity(2), names onto /proc/self/task/<tid>/comm.

package concurrency

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hiothread/affinity"
	"github.com/momentics/hiothread/api"
)

// Nice values bounding the normalized priority scale.
const (
	niceLowest  = 19
	niceHighest = -20
)

// commMax is the longest thread name the kernel keeps, excluding the NUL.
const commMax = 15

const (
	stateSuspended int32 = iota
	stateRunning
	stateAborted
)

// osThread keeps its OS thread, and so its tid, alive after entry returns
// until the handle is reclaimed. The kernel cannot hand the tid to another
// thread while a handle still refers to it.
type osThread struct {
	tid      int
	state    atomic.Int32
	resume   chan bool     // true runs entry, false aborts
	finished chan struct{} // closed when entry returns
	reclaim  chan struct{} // closed when the handle is released
	done     chan struct{} // closed when the goroutine exits
	release  sync.Once
}

type linuxBackend struct {
	next    atomic.Uintptr
	threads sync.Map // uintptr -> *osThread
}

func newPlatformBackend() api.Backend {
	return &linuxBackend{}
}

// CreateSuspended starts a locked goroutine that parks before running entry.
// stackSize is advisory: goroutine stacks grow on demand and the runtime owns
// the OS thread stack, so only negative values are rejected.
func (b *linuxBackend) CreateSuspended(entry func(), stackSize int) (api.Handle, error) {
	if entry == nil {
		return api.EmptyHandle, errors.New("nil entry")
	}
	if stackSize < 0 {
		return api.EmptyHandle, fmt.Errorf("negative stack size %d", stackSize)
	}
	t := &osThread{
		resume:   make(chan bool, 1),
		finished: make(chan struct{}),
		reclaim:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	ready := make(chan int, 1)
	go t.run(entry, ready)
	t.tid = <-ready

	token := b.next.Add(1)
	b.threads.Store(token, t)
	return api.Handle{Native: token, ID: uint64(t.tid)}, nil
}

func (t *osThread) run(entry func(), ready chan<- int) {
	runtime.LockOSThread()
	tid := unix.Gettid()
	if tid == unix.Getpid() {
		// Landed on the main OS thread. Start over from here: while this
		// goroutine holds the lock the new one cannot run on this thread.
		go t.run(entry, ready)
		runtime.UnlockOSThread()
		return
	}

	// Never unlocked: the OS thread terminates together with this goroutine.
	defer close(t.done)
	ready <- tid
	if !<-t.resume {
		return
	}
	entry()
	close(t.finished)
	<-t.reclaim
}

func (t *osThread) releaseHandle() {
	t.release.Do(func() { close(t.reclaim) })
}

func (b *linuxBackend) lookup(h api.Handle) (*osThread, error) {
	v, ok := b.threads.Load(h.Native)
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h.Native, api.ErrThreadNotRunning)
	}
	t := v.(*osThread)
	if uint64(t.tid) != h.ID {
		return nil, fmt.Errorf("handle %d: id mismatch: %w", h.Native, api.ErrThreadNotRunning)
	}
	return t, nil
}

func (b *linuxBackend) PriorityRange() (lowest, highest int) {
	return niceLowest, niceHighest
}

func (b *linuxBackend) SetPriority(h api.Handle, native int) error {
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	// PRIO_PROCESS with a tid addresses a single thread on Linux.
	if err := unix.Setpriority(unix.PRIO_PROCESS, t.tid, native); err != nil {
		return fmt.Errorf("setpriority(%d, %d): %w", t.tid, native, err)
	}
	return nil
}

func (b *linuxBackend) SetAffinity(h api.Handle, mask uint64) error {
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	return affinity.SetThread(t.tid, affinity.Mask(mask))
}

func (b *linuxBackend) SetName(h api.Handle, name string) error {
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	if len(name) > commMax {
		name = name[:commMax]
	}
	path := "/proc/self/task/" + strconv.Itoa(t.tid) + "/comm"
	return os.WriteFile(path, []byte(name), 0)
}

func (b *linuxBackend) Resume(h api.Handle) error {
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	if !t.state.CompareAndSwap(stateSuspended, stateRunning) {
		return fmt.Errorf("thread %d is not suspended", t.tid)
	}
	t.resume <- true
	return nil
}

func (b *linuxBackend) Abort(h api.Handle) {
	t, err := b.lookup(h)
	if err != nil {
		return
	}
	if t.state.CompareAndSwap(stateSuspended, stateAborted) {
		t.resume <- false
		<-t.done
	} else {
		t.releaseHandle()
	}
	b.threads.Delete(h.Native)
}

func (b *linuxBackend) WaitAndReclaim(h api.Handle) error {
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	<-t.finished
	t.releaseHandle()
	<-t.done
	b.threads.Delete(h.Native)
	return nil
}

// ReclaimWithoutWaiting lets the thread exit on its own once entry returns.
func (b *linuxBackend) ReclaimWithoutWaiting(h api.Handle) {
	t, err := b.lookup(h)
	if err != nil {
		return
	}
	t.releaseHandle()
	b.threads.Delete(h.Native)
}

func (b *linuxBackend) CurrentThreadID() uint64 {
	return uint64(unix.Gettid())
}

// LogicalProcessorCount reports the online logical processors from sysfs,
// falling back to the runtime's count.
func (b *linuxBackend) LogicalProcessorCount() int {
	data, err := os.ReadFile("/sys/devices/system/cpu/online")
	if err == nil {
		if ranges, err := affinity.ParseList(string(data)); err == nil {
			if n := affinity.CountRanges(ranges); n > 0 {
				return n
			}
		}
	}
	return runtime.NumCPU()
}

// Sleep suspends the calling OS thread, resuming after signal interruptions
// with the remaining time.
func (b *linuxBackend) Sleep(d time.Duration) {
	d = clampSleep(d, maxSleep)
	if d <= 0 {
		return
	}
	ts := unix.NsecToTimespec(int64(d))
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&ts, &rem)
		if err != unix.EINTR {
			return
		}
		ts = rem
	}
}

func (b *linuxBackend) Yield() {
	runtime.Gosched()
}
