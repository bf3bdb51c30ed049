// Package thread identifies the OS thread the calling goroutine runs on.
//
// State keyed by ID is only meaningful while the goroutine is locked to its
// thread (runtime.LockOSThread); engine callbacks arriving from native code
// always run on a locked thread.
package thread

import "runtime"

// ID is an OS thread identifier.
type ID uint64

// Current returns the ID of the calling OS thread.
func Current() ID {
	return current()
}

// Locked runs fn with the calling goroutine locked to its OS thread.
func Locked(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	fn()
}
