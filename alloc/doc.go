// Package alloc lets a Go allocator serve the engine's memory requests.
//
// A Bridge hands the engine a call table backed by a physfs.AllocatorFactory.
// The engine calls Init once per initialization; the bridge then builds an
// allocator from the factory and routes Malloc, Realloc and Free to it until
// Deinit. Calling Init twice without Deinit is a contract violation and
// panics.
//
// Malloc and Realloc report every failure as a zero address, the same value
// a successful zero-byte allocation may legitimately return.
package alloc
