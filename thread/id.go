// File: thread/id.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"cmp"
	"strconv"
)

// ID identifies an OS thread. The zero ID means "no thread"; two zero IDs
// compare equal without referring to the same thread.
type ID uint64

// IsZero reports whether id is the no-thread sentinel.
func (id ID) IsZero() bool { return id == 0 }

// Less orders IDs numerically.
func (id ID) Less(other ID) bool { return id < other }

// Compare returns -1, 0 or +1.
func (id ID) Compare(other ID) int { return cmp.Compare(id, other) }

// Hash returns a hash of the numeric id.
func (id ID) Hash() uint64 { return uint64(id) }

// String renders the id in lowercase hexadecimal.
func (id ID) String() string { return strconv.FormatUint(uint64(id), 16) }
