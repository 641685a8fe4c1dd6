package thread_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hiothread/adapters"
	"github.com/momentics/hiothread/affinity"
	"github.com/momentics/hiothread/api"
	"github.com/momentics/hiothread/fake"
	"github.com/momentics/hiothread/thread"
)

func withFake(t *testing.T) *fake.Backend {
	t.Helper()
	b := fake.NewBackend()
	t.Cleanup(thread.SetBackend(b))
	return b
}

func TestPriorityBucketsOnNativeRange(t *testing.T) {
	b := withFake(t)
	b.Lowest, b.Highest = -2, 2

	want := map[int]int{
		api.PriorityLowest:  -2,
		api.PriorityBelow:   -1,
		api.PriorityNormal:  0,
		api.PriorityAbove:   1,
		api.PriorityHighest: 2,
		-50:                 -2,
		1000:                2,
	}
	for prio, native := range want {
		attrs := api.DefaultAttributes()
		attrs.Priority = prio
		th := track(t)(thread.NewWithAttributes(attrs, func() {}))
		require.NoError(t, th.Join())

		calls := b.CallsFor("set_priority")
		require.NotEmpty(t, calls)
		assert.Equal(t, native, calls[len(calls)-1].Native, "priority %d", prio)
	}
}

func TestCreateSequence(t *testing.T) {
	b := withFake(t)
	attrs := api.Attributes{StackSize: 512 * 1024, Priority: api.PriorityNormal, Affinity: affinity.Of(0, 1), Name: "x"}

	th := track(t)(thread.NewWithAttributes(attrs, func() {}))
	id := uint64(th.ID())
	require.NoError(t, th.Join())

	var ops []string
	for _, c := range b.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"create", "set_priority", "set_affinity", "set_name", "resume", "wait"}, ops)
	assert.Equal(t, 512*1024, b.CallsFor("create")[0].Stack)
	assert.Equal(t, uint64(0x3), b.CallsFor("set_affinity")[0].Mask)
	assert.Equal(t, "x", b.CallsFor("set_name")[0].Name)
	assert.Equal(t, id, b.CallsFor("wait")[0].ID)
	assert.Zero(t, b.Live())
}

func TestAllAffinitySkipsBackendCall(t *testing.T) {
	b := withFake(t)
	th := track(t)(thread.New(func() {}))
	require.NoError(t, th.Join())
	assert.Empty(t, b.CallsFor("set_affinity"))
}

func TestCreateFailureReturnsTypedError(t *testing.T) {
	b := withFake(t)
	b.FailOn("create", nil)

	var ran atomic.Bool
	th, err := thread.New(func() { ran.Store(true) })
	assert.Nil(t, th)
	require.ErrorIs(t, err, api.ErrBackendFailure)
	require.ErrorIs(t, err, fake.ErrInjected)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "create", apiErr.Op)
	assert.Empty(t, b.CallsFor("resume"))
	assert.False(t, ran.Load())
}

func TestFailureAfterCreateAbortsThread(t *testing.T) {
	for _, op := range []string{"set_priority", "set_affinity", "resume"} {
		t.Run(op, func(t *testing.T) {
			b := withFake(t)
			b.FailOn(op, nil)
			attrs := api.DefaultAttributes()
			attrs.Affinity = affinity.CPU(1)

			var ran atomic.Bool
			th, err := thread.NewWithAttributes(attrs, func() { ran.Store(true) })
			assert.Nil(t, th)

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, api.ErrCodeBackend, apiErr.Code)
			assert.Equal(t, op, apiErr.Op)

			created := b.CallsFor("create")
			require.Len(t, created, 1)
			aborts := b.CallsFor("abort")
			require.Len(t, aborts, 1)
			assert.Zero(t, b.Live())
			assert.False(t, ran.Load())
		})
	}
}

func TestNameFailureIsNotFatal(t *testing.T) {
	b := withFake(t)
	b.FailOn("set_name", nil)
	th := track(t)(thread.New(func() {}))
	require.NoError(t, th.Join())
}

func TestJoinFailureKeepsThreadJoinable(t *testing.T) {
	b := withFake(t)
	gate := make(chan struct{})
	th := track(t)(thread.Go1(func(g chan struct{}) { <-g }, gate))

	b.FailOn(adapters.OpWait, nil)
	err := th.Join()
	require.ErrorIs(t, err, api.ErrBackendFailure)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, adapters.OpWait, apiErr.Op)
	assert.True(t, th.Joinable())

	close(gate)
	th.Detach()
	assert.False(t, th.Joinable())
	assert.Len(t, b.CallsFor("detach"), 1)
}

func TestFakeHardwareConcurrency(t *testing.T) {
	b := withFake(t)
	b.CPUs = 12
	assert.Equal(t, 12, thread.HardwareConcurrency())
}

func TestSleepAndYieldDelegateToBackend(t *testing.T) {
	b := withFake(t)
	var slept []int64
	b.SleepFunc = func(d time.Duration) { slept = append(slept, int64(d)) }

	thread.SleepFor(0)
	thread.SleepFor(1500 * time.Microsecond)
	thread.SleepForSeconds(0.5e-9)
	thread.Yield()

	assert.Equal(t, []int64{1500000, 1}, slept)
	assert.Len(t, b.CallsFor("yield"), 1)
}

func TestThreadsKeepCreatingBackend(t *testing.T) {
	first := withFake(t)
	gate := make(chan struct{})
	th := track(t)(thread.Go1(func(g chan struct{}) { <-g }, gate))

	second := fake.NewBackend()
	restore := thread.SetBackend(second)
	defer restore()

	close(gate)
	require.NoError(t, th.Join())
	assert.Len(t, first.CallsFor("wait"), 1)
	assert.Empty(t, second.CallsFor("wait"))
}

func TestNilCallableRejected(t *testing.T) {
	b := withFake(t)
	starts := map[string]func() (*thread.Thread, error){
		"Go0":   func() (*thread.Thread, error) { return thread.Go0(nil) },
		"Go1":   func() (*thread.Thread, error) { return thread.Go1[int](nil, 1) },
		"Go2":   func() (*thread.Thread, error) { return thread.Go2[int, string](nil, 1, "a") },
		"Go3":   func() (*thread.Thread, error) { return thread.Go3[int, int, int](nil, 1, 2, 3) },
		"Spawn": func() (*thread.Thread, error) { return thread.Spawn(api.DefaultAttributes(), nil) },
		"New":   func() (*thread.Thread, error) { return thread.New(nil) },
	}
	for name, start := range starts {
		th, err := start()
		assert.Nil(t, th, name)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, name)
	}
	assert.Empty(t, b.CallsFor("create"), "no thread may be created for a nil callable")
}
