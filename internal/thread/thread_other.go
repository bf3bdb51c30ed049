//go:build !linux && !windows && !freebsd

package thread

// Shared reports whether every thread maps to the same ID on this platform.
const Shared = true

// No portable thread id is available here; all threads share one slot.
func current() ID {
	return 0
}
