// File: fake/backend.go
// Author: momentics <momentics@gmail.com>
//
// Fake api.Backend for tests: goroutine-backed threads, call recording and
// per-operation failure injection.

package fake

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/momentics/hiothread/api"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("fake: injected failure")

// Call records one backend invocation.
type Call struct {
	Op     string
	ID     uint64
	Native int    // priority value for set_priority
	Mask   uint64 // mask for set_affinity
	Name   string // name for set_name
	Stack  int    // stack size for create
}

type fakeThread struct {
	id      uint64
	resume  chan bool
	done    chan struct{}
	goid    uint64
	resumed bool
}

// Backend is a deterministic in-memory api.Backend.
type Backend struct {
	mu      sync.Mutex
	nextID  uint64
	threads map[uint64]*fakeThread
	byGoid  map[uint64]uint64
	calls   []Call
	fail    map[string]error

	Lowest, Highest int
	CPUs            int
	SleepFunc       func(time.Duration)
}

// NewBackend returns a fake with a [0,255] priority range and 4 CPUs.
func NewBackend() *Backend {
	return &Backend{
		nextID:  0x1000,
		threads: make(map[uint64]*fakeThread),
		byGoid:  make(map[uint64]uint64),
		fail:    make(map[string]error),
		Lowest:  0,
		Highest: 255,
		CPUs:    4,
	}
}

// FailOn makes op fail with err (ErrInjected when err is nil).
func (b *Backend) FailOn(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	b.mu.Lock()
	b.fail[op] = err
	b.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsFor returns the recorded calls of one operation.
func (b *Backend) CallsFor(op string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Live returns the number of created threads not yet reclaimed.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.threads)
}

func (b *Backend) record(c Call) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return b.fail[c.Op]
}

func (b *Backend) get(h api.Handle) (*fakeThread, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.threads[h.ID]
	if !ok || uintptr(t.id) != h.Native {
		return nil, fmt.Errorf("fake: unknown handle %d: %w", h.ID, api.ErrThreadNotRunning)
	}
	return t, nil
}

func (b *Backend) CreateSuspended(entry func(), stackSize int) (api.Handle, error) {
	if err := b.record(Call{Op: "create", Stack: stackSize}); err != nil {
		return api.EmptyHandle, err
	}
	b.mu.Lock()
	b.nextID++
	t := &fakeThread{
		id:     b.nextID,
		resume: make(chan bool, 1),
		done:   make(chan struct{}),
	}
	b.threads[t.id] = t
	b.mu.Unlock()

	started := make(chan struct{})
	go func() {
		defer close(t.done)
		b.mu.Lock()
		t.goid = goroutineID()
		b.byGoid[t.goid] = t.id
		b.mu.Unlock()
		close(started)
		run := <-t.resume
		if run {
			entry()
		}
		b.mu.Lock()
		delete(b.byGoid, t.goid)
		b.mu.Unlock()
	}()
	<-started
	return api.Handle{Native: uintptr(t.id), ID: t.id}, nil
}

func (b *Backend) PriorityRange() (lowest, highest int) {
	return b.Lowest, b.Highest
}

func (b *Backend) SetPriority(h api.Handle, native int) error {
	if _, err := b.get(h); err != nil {
		return err
	}
	return b.record(Call{Op: "set_priority", ID: h.ID, Native: native})
}

func (b *Backend) SetAffinity(h api.Handle, mask uint64) error {
	if _, err := b.get(h); err != nil {
		return err
	}
	return b.record(Call{Op: "set_affinity", ID: h.ID, Mask: mask})
}

func (b *Backend) SetName(h api.Handle, name string) error {
	if _, err := b.get(h); err != nil {
		return err
	}
	return b.record(Call{Op: "set_name", ID: h.ID, Name: name})
}

func (b *Backend) Resume(h api.Handle) error {
	t, err := b.get(h)
	if err != nil {
		return err
	}
	if err := b.record(Call{Op: "resume", ID: h.ID}); err != nil {
		return err
	}
	b.mu.Lock()
	t.resumed = true
	b.mu.Unlock()
	t.resume <- true
	return nil
}

func (b *Backend) Abort(h api.Handle) {
	t, err := b.get(h)
	if err != nil {
		return
	}
	_ = b.record(Call{Op: "abort", ID: h.ID})
	b.mu.Lock()
	wasResumed := t.resumed
	delete(b.threads, h.ID)
	b.mu.Unlock()
	if !wasResumed {
		t.resume <- false
		<-t.done
	}
}

func (b *Backend) WaitAndReclaim(h api.Handle) error {
	t, err := b.get(h)
	if err != nil {
		return err
	}
	if err := b.record(Call{Op: "wait", ID: h.ID}); err != nil {
		return err
	}
	<-t.done
	b.mu.Lock()
	delete(b.threads, h.ID)
	b.mu.Unlock()
	return nil
}

func (b *Backend) ReclaimWithoutWaiting(h api.Handle) {
	_ = b.record(Call{Op: "detach", ID: h.ID})
	b.mu.Lock()
	delete(b.threads, h.ID)
	b.mu.Unlock()
}

// CurrentThreadID maps the calling goroutine to its fake thread id. Goroutines
// not created by this backend report an id derived from their goroutine id,
// offset so it never collides with fake thread ids.
func (b *Backend) CurrentThreadID() uint64 {
	g := goroutineID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.byGoid[g]; ok {
		return id
	}
	return g | 1<<62
}

func (b *Backend) LogicalProcessorCount() int { return b.CPUs }

func (b *Backend) Sleep(d time.Duration) {
	_ = b.record(Call{Op: "sleep", Native: int(d / time.Millisecond)})
	if b.SleepFunc != nil {
		b.SleepFunc(d)
		return
	}
	time.Sleep(d)
}

func (b *Backend) Yield() {
	_ = b.record(Call{Op: "yield"})
	runtime.Gosched()
}

// goroutineID parses the id from the "goroutine N [" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
