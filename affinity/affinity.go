// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral CPU affinity mask. Platform-specific application of a mask to an
// OS thread lives in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxCPUs is the number of logical processors addressable by a Mask.
const MaxCPUs = 64

// Mask selects logical processors 0..63, one bit per CPU.
type Mask uint64

// All places no restriction on the processors a thread may run on.
const All = ^Mask(0)

// CPU returns the mask selecting only the given logical CPU.
// Out-of-range ids yield an empty mask.
func CPU(id int) Mask {
	if id < 0 || id >= MaxCPUs {
		return 0
	}
	return Mask(1) << uint(id)
}

// Of returns the mask selecting every listed CPU.
func Of(ids ...int) Mask {
	var m Mask
	for _, id := range ids {
		m |= CPU(id)
	}
	return m
}

// Set returns m with the given CPU added.
func (m Mask) Set(id int) Mask { return m | CPU(id) }

// Clear returns m with the given CPU removed.
func (m Mask) Clear(id int) Mask { return m &^ CPU(id) }

// Has reports whether the CPU is selected.
func (m Mask) Has(id int) bool {
	c := CPU(id)
	return c != 0 && m&c != 0
}

// Count returns the number of selected CPUs.
func (m Mask) Count() int { return bits.OnesCount64(uint64(m)) }

// IsAll reports whether the mask imposes no restriction.
func (m Mask) IsAll() bool { return m == All }

// CPUs lists the selected CPU ids in ascending order.
func (m Mask) CPUs() []int {
	out := make([]int, 0, m.Count())
	for v := uint64(m); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

// String renders the mask as lowercase hexadecimal, or "all".
func (m Mask) String() string {
	if m.IsAll() {
		return "all"
	}
	return "0x" + strconv.FormatUint(uint64(m), 16)
}

// Parse accepts "all", a hexadecimal mask ("0x3") or a CPU list ("0,1,4-6").
func Parse(s string) (Mask, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "all":
		return All, nil
	case strings.HasPrefix(s, "0x"):
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("affinity: bad mask %q: %w", s, err)
		}
		return Mask(v), nil
	}
	ranges, err := ParseList(s)
	if err != nil {
		return 0, err
	}
	var m Mask
	for _, r := range ranges {
		if r.Last >= MaxCPUs {
			return 0, fmt.Errorf("affinity: cpu %d out of range [0,%d)", r.Last, MaxCPUs)
		}
		for id := r.First; id <= r.Last; id++ {
			m = m.Set(id)
		}
	}
	return m, nil
}

// Range is an inclusive span of CPU ids.
type Range struct {
	First, Last int
}

// Len returns the number of CPUs in r.
func (r Range) Len() int { return r.Last - r.First + 1 }

// ParseList parses a kernel CPU list such as "0-3,8,10-11" (the format of
// /sys/devices/system/cpu/online). Ids are not limited to MaxCPUs.
func ParseList(s string) ([]Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parseCPU(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = parseCPU(hi); err != nil {
				return nil, err
			}
		}
		if last < first {
			return nil, fmt.Errorf("affinity: bad range %q", part)
		}
		out = append(out, Range{First: first, Last: last})
	}
	return out, nil
}

// CountRanges returns the total number of CPUs in ranges.
func CountRanges(ranges []Range) int {
	n := 0
	for _, r := range ranges {
		n += r.Len()
	}
	return n
}

func parseCPU(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("affinity: bad cpu %q: %w", s, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("affinity: negative cpu %d", id)
	}
	return id, nil
}

// SetThread restricts the OS thread identified by tid to the CPUs in m.
// On unsupported platforms returns an error.
func SetThread(tid int, m Mask) error {
	return setThreadPlatform(tid, m)
}
