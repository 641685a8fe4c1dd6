// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// Package-wide structured logger.

package control

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	logger.Store(l)
}

// Logger returns the logger shared by all hiothread packages.
func Logger() *logrus.Logger {
	return logger.Load()
}

// SetLogger replaces the shared logger. A nil logger is ignored.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger.Store(l)
	}
}
