package alloc

import (
	"runtime"
	"sync"
	"unsafe"

	physfs "github.com/wippyai/physfs-bridge"
)

// MaxBlock is the largest block Heap hands out.
const MaxBlock = 1 << 32

type block struct {
	buf []byte
	pin runtime.Pinner
}

// Heap allocates pinned blocks from the Go heap. Addresses stay valid until
// the block is released or the heap is closed.
type Heap struct {
	blocks map[uintptr]*block
	mu     sync.Mutex
}

// NewHeap returns an uninitialized heap.
func NewHeap() *Heap {
	return &Heap{}
}

// HeapFactory builds a new Heap for every engine initialization.
var HeapFactory physfs.AllocatorFactory = physfs.AllocatorFunc(func() (physfs.Allocator, error) {
	return NewHeap(), nil
})

func (h *Heap) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.blocks = make(map[uintptr]*block)
	return nil
}

// Allocate returns a zeroed block of size bytes. A zero size still gets a
// distinct address.
func (h *Heap) Allocate(size uint64) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocate(size)
}

func (h *Heap) allocate(size uint64) uintptr {
	if h.blocks == nil || size > MaxBlock {
		return 0
	}
	b := &block{buf: make([]byte, max(size, 1))}
	b.pin.Pin(&b.buf[0])
	ptr := uintptr(unsafe.Pointer(&b.buf[0]))
	h.blocks[ptr] = b
	return ptr
}

// Reallocate moves the block at ptr into a block of size bytes, keeping
// the common prefix. A zero ptr allocates.
func (h *Heap) Reallocate(ptr uintptr, size uint64) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ptr == 0 {
		return h.allocate(size)
	}
	old, ok := h.blocks[ptr]
	if !ok {
		return 0
	}
	moved := h.allocate(size)
	if moved == 0 {
		return 0
	}
	copy(h.blocks[moved].buf, old.buf)
	h.release(ptr)
	return moved
}

func (h *Heap) Release(ptr uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release(ptr)
}

func (h *Heap) release(ptr uintptr) {
	b, ok := h.blocks[ptr]
	if !ok {
		return
	}
	b.pin.Unpin()
	delete(h.blocks, ptr)
}

// Close releases every block still allocated.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ptr := range h.blocks {
		h.release(ptr)
	}
	h.blocks = nil
	return nil
}

// Bytes returns the memory of the block at ptr, or nil.
func (h *Heap) Bytes(ptr uintptr) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.blocks[ptr]; ok {
		return b.buf
	}
	return nil
}

// InUse returns the number of live blocks.
func (h *Heap) InUse() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}
