// File: thread/backend.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"sync/atomic"

	"github.com/momentics/hiothread/adapters"
	"github.com/momentics/hiothread/api"
	"github.com/momentics/hiothread/internal/concurrency"
)

var launcher atomic.Pointer[adapters.BackendAdapter]

func init() {
	launcher.Store(adapters.NewBackendAdapter(concurrency.NewBackend(), nil))
}

// SetBackend routes new threads and current-thread utilities to b and returns
// a function restoring the previous backend. Existing threads keep the backend
// that created them.
func SetBackend(b api.Backend) (restore func()) {
	prev := launcher.Swap(adapters.NewBackendAdapter(b, nil))
	return func() { launcher.Store(prev) }
}

// Backend returns the backend new threads are created on.
func Backend() api.Backend {
	return launcher.Load().Backend()
}

func current() *adapters.BackendAdapter {
	return launcher.Load()
}
