//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probe integrations.

package control

import (
	"runtime"
)

// RegisterPlatformProbes sets Linux-specific debug metrics. cpus reports the
// logical processor count as seen by the thread backend.
func RegisterPlatformProbes(dp *DebugProbes, cpus func() int) {
	dp.RegisterProbe("platform.cpus", func() any {
		return cpus()
	})
	dp.RegisterProbe("platform.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
}
