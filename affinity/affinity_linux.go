//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setThreadPlatform applies m to the thread tid via sched_setaffinity(2).
func setThreadPlatform(tid int, m Mask) error {
	var set unix.CPUSet
	set.Zero()
	for _, id := range m.CPUs() {
		set.Set(id)
	}
	if err := unix.SchedSetaffinity(tid, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity(%d, %s): %w", tid, m, err)
	}
	return nil
}
