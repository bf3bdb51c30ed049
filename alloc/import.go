package alloc

import (
	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/native"
)

type imported struct {
	t *native.Allocator
}

// Import exposes an engine allocator table as a physfs.Allocator, for
// callers that want memory from the engine's own allocator. Init and Close
// do nothing: the engine manages that allocator's lifecycle.
func Import(t *native.Allocator) physfs.Allocator {
	return imported{t: t}
}

func (imported) Init() error  { return nil }
func (imported) Close() error { return nil }

func (a imported) Allocate(size uint64) uintptr {
	return a.t.Malloc(size)
}

func (a imported) Reallocate(ptr uintptr, size uint64) uintptr {
	return a.t.Realloc(ptr, size)
}

func (a imported) Release(ptr uintptr) {
	a.t.Free(ptr)
}
