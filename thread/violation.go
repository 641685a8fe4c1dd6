// File: thread/violation.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hiothread/control"
)

// Lifecycle contract violations.
const (
	ViolationReleaseJoinable = "release_joinable"
	ViolationMoveOntoActive  = "move_onto_joinable"
	ViolationSelfJoin        = "self_join"
	ViolationUnreachable     = "unreachable_joinable"
)

// terminate ends the process. Replaced only by tests in this package.
var terminate = func(entry *logrus.Entry, msg string) {
	entry.Fatal(msg)
	// The logger's ExitFunc may have been replaced; a violation still ends the process.
	os.Exit(2)
}

func violation(kind string, id ID) {
	entry := control.Logger().WithFields(logrus.Fields{
		"violation": kind,
		"thread_id": id.String(),
	})
	terminate(entry, "thread lifecycle contract violated")
}
