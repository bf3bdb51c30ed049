// Package log holds the zap logger shared by the adapter packages.
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the bridge logger. It is a no-op logger unless SetLogger
// installed another one.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the bridge logger. nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
