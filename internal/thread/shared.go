//go:build linux || windows || freebsd

package thread

// Shared reports whether every thread maps to the same ID on this platform.
const Shared = false
