package thread_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hiothread/affinity"
	"github.com/momentics/hiothread/thread"
)

// requireNiceAllowed skips tests on the real backend when the process runs
// with a positive nice value: normal priority maps to nice 0, which an
// unprivileged process cannot return to.
func requireNiceAllowed(t *testing.T) {
	t.Helper()
	// The raw syscall reports 20 - nice.
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err == nil && 20-prio > 0 {
		t.Skipf("process nice is %d; normal priority needs nice 0", 20-prio)
	}
}

// allowedCPUs returns up to n CPUs this process may run on.
func allowedCPUs(t *testing.T, n int) affinity.Mask {
	t.Helper()
	var set unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &set))
	var m affinity.Mask
	for id := 0; id < affinity.MaxCPUs && m.Count() < n; id++ {
		if set.IsSet(id) {
			m = m.Set(id)
		}
	}
	require.NotZero(t, m)
	return m
}

// track detaches the created Thread when the test ends so a failed assertion
// never leaves a joinable Thread behind.
func track(t *testing.T) func(*thread.Thread, error) *thread.Thread {
	return func(th *thread.Thread, err error) *thread.Thread {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, th)
		t.Cleanup(th.Detach)
		return th
	}
}
