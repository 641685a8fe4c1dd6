//go:build linux

package concurrency

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hiothread/affinity"
	"github.com/momentics/hiothread/api"
)

func TestLinuxBackendLifecycle(t *testing.T) {
	b := NewBackend()
	var ran atomic.Bool
	tids := make(chan uint64, 1)

	h, err := b.CreateSuspended(func() {
		ran.Store(true)
		tids <- b.CurrentThreadID()
	}, api.DefaultStackSize)
	require.NoError(t, err)
	assert.False(t, h.IsEmpty())

	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load(), "suspended thread must not run")

	require.NoError(t, b.SetName(h, "hiothread-test-long-name"))
	comm, err := os.ReadFile("/proc/self/task/" + strconv.FormatUint(h.ID, 10) + "/comm")
	require.NoError(t, err)
	assert.Equal(t, "hiothread-test-", strings.TrimSpace(string(comm)))

	require.NoError(t, b.Resume(h))
	assert.Error(t, b.Resume(h))
	require.NoError(t, b.WaitAndReclaim(h))
	assert.True(t, ran.Load())
	assert.Equal(t, h.ID, <-tids)

	assert.ErrorIs(t, b.WaitAndReclaim(h), api.ErrThreadNotRunning)
}

func TestLinuxBackendAbort(t *testing.T) {
	b := NewBackend()
	var ran atomic.Bool
	h, err := b.CreateSuspended(func() { ran.Store(true) }, 0)
	require.NoError(t, err)

	b.Abort(h)
	assert.False(t, ran.Load())
	assert.ErrorIs(t, b.Resume(h), api.ErrThreadNotRunning)
}

func TestLinuxBackendRejectsBadInput(t *testing.T) {
	b := NewBackend()
	_, err := b.CreateSuspended(nil, 0)
	assert.Error(t, err)
	_, err = b.CreateSuspended(func() {}, -1)
	assert.Error(t, err)
	assert.ErrorIs(t, b.SetPriority(api.Handle{Native: 999, ID: 1}, 0), api.ErrThreadNotRunning)
}

func TestLinuxBackendLowestPriority(t *testing.T) {
	b := NewBackend()
	lowest, highest := b.PriorityRange()
	assert.Equal(t, 19, lowest)
	assert.Equal(t, -20, highest)

	h, err := b.CreateSuspended(func() {}, 0)
	require.NoError(t, err)
	// Raising the nice value is always permitted.
	require.NoError(t, b.SetPriority(h, lowest))
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, int(h.ID))
	require.NoError(t, err)
	assert.Equal(t, 20-lowest, prio)

	require.NoError(t, b.Resume(h))
	require.NoError(t, b.WaitAndReclaim(h))
}

func TestLinuxBackendAffinity(t *testing.T) {
	b := NewBackend()
	var allowed unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &allowed))
	cpu := -1
	for id := 0; id < 64; id++ {
		if allowed.IsSet(id) {
			cpu = id
			break
		}
	}
	if cpu < 0 {
		t.Skip("no CPU below 64 available")
	}

	h, err := b.CreateSuspended(func() {}, 0)
	require.NoError(t, err)
	require.NoError(t, b.SetAffinity(h, 1<<uint(cpu)))

	var got unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(int(h.ID), &got))
	assert.Equal(t, 1, got.Count())
	assert.True(t, got.IsSet(cpu))

	b.Abort(h)
}

func TestLinuxLogicalProcessorCount(t *testing.T) {
	data, err := os.ReadFile("/sys/devices/system/cpu/online")
	if err != nil {
		t.Skipf("sysfs unavailable: %v", err)
	}
	ranges, err := affinity.ParseList(string(data))
	require.NoError(t, err)
	assert.Equal(t, affinity.CountRanges(ranges), NewBackend().LogicalProcessorCount())
}

func TestLinuxThreadNeverUsesMainThread(t *testing.T) {
	b := NewBackend()
	pid := uint64(os.Getpid())
	var handles []api.Handle
	for i := 0; i < 16; i++ {
		h, err := b.CreateSuspended(func() {}, 0)
		require.NoError(t, err)
		assert.NotEqual(t, pid, h.ID)
		handles = append(handles, h)
	}
	for _, h := range handles {
		b.Abort(h)
	}
}

func taskExists(tid uint64) bool {
	_, err := os.Stat("/proc/self/task/" + strconv.FormatUint(tid, 10))
	return err == nil
}

func TestLinuxFinishedThreadKeepsTidUntilReclaimed(t *testing.T) {
	b := NewBackend()
	finished := make(chan struct{})
	h, err := b.CreateSuspended(func() { close(finished) }, 0)
	require.NoError(t, err)
	require.NoError(t, b.Resume(h))
	<-finished

	// The entry has returned but the handle still owns the tid.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, taskExists(h.ID), "tid released before reclaim")

	require.NoError(t, b.WaitAndReclaim(h))
	assert.Eventually(t, func() bool { return !taskExists(h.ID) }, 5*time.Second, 10*time.Millisecond)
}

func TestLinuxDetachedThreadExitsAfterEntry(t *testing.T) {
	b := NewBackend()
	gate := make(chan struct{})
	h, err := b.CreateSuspended(func() { <-gate }, 0)
	require.NoError(t, err)
	require.NoError(t, b.Resume(h))

	b.ReclaimWithoutWaiting(h)
	assert.True(t, taskExists(h.ID), "detached thread must keep running")
	close(gate)
	assert.Eventually(t, func() bool { return !taskExists(h.ID) }, 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, b.WaitAndReclaim(h), api.ErrThreadNotRunning)
}

func TestLinuxSleep(t *testing.T) {
	b := NewBackend()
	start := time.Now()
	b.Sleep(15 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	start = time.Now()
	b.Sleep(0)
	b.Sleep(-time.Second)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
