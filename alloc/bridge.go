package alloc

import (
	"sync"

	"go.uber.org/zap"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/internal/log"
	"github.com/wippyai/physfs-bridge/native"
)

// Bridge serves the engine's allocator table from an AllocatorFactory.
// Each engine initialization builds one allocator instance; it lives until
// the engine deinitializes.
type Bridge struct {
	factory physfs.AllocatorFactory
	active  physfs.Allocator
	table   *native.Allocator
	mu      sync.RWMutex
}

// NewBridge creates a bridge with no factory installed.
func NewBridge() *Bridge {
	b := &Bridge{}
	b.table = &native.Allocator{
		Init:    b.init,
		Deinit:  b.deinit,
		Malloc:  b.malloc,
		Realloc: b.realloc,
		Free:    b.free,
	}
	return b
}

// SetFactory installs f. nil removes the factory so the engine falls back
// to its built-in allocator. It fails while an allocator is active.
func (b *Bridge) SetFactory(f physfs.AllocatorFactory) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil {
		return errors.Busy(errors.PhaseAlloc, "cannot replace the allocator while the engine is using it")
	}
	b.factory = f
	return nil
}

// Table returns the call table to hand the engine, or nil if no factory is
// installed.
func (b *Bridge) Table() *native.Allocator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.factory == nil {
		return nil
	}
	return b.table
}

// Current returns the active allocator instance.
func (b *Bridge) Current() (physfs.Allocator, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active, b.active != nil
}

func (b *Bridge) init() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil {
		panic(errors.Protocol(errors.PhaseAlloc, "allocator initialized twice without deinit"))
	}
	if b.factory == nil {
		fault.Capture(errors.New(errors.PhaseAlloc, errors.KindNotReady).
			Detail("no allocator factory installed").
			Build())
		return 0
	}

	a, err := b.factory.NewAllocator()
	if err == nil && a == nil {
		err = errors.Internal(errors.PhaseAlloc, "allocator factory returned nil")
	}
	if err != nil {
		fault.Capture(err)
		return 0
	}
	if err := a.Init(); err != nil {
		shutdown(a)
		fault.Capture(err)
		return 0
	}
	b.active = a
	return 1
}

func (b *Bridge) deinit() {
	b.mu.Lock()
	a := b.active
	b.active = nil
	b.mu.Unlock()
	if a == nil {
		return
	}
	shutdown(a)
}

// shutdown closes a. Close failures and panics are logged, never raised.
func shutdown(a physfs.Allocator) {
	defer recovered("close", nil)
	if err := a.Close(); err != nil {
		log.Logger().Warn("allocator close failed", zap.Error(err))
	}
}

func (b *Bridge) current() physfs.Allocator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

func (b *Bridge) malloc(size uint64) (ptr uintptr) {
	a := b.current()
	if a == nil {
		return 0
	}
	defer recovered("malloc", &ptr)
	return a.Allocate(size)
}

func (b *Bridge) realloc(old uintptr, size uint64) (ptr uintptr) {
	a := b.current()
	if a == nil {
		return 0
	}
	defer recovered("realloc", &ptr)
	return a.Reallocate(old, size)
}

func (b *Bridge) free(ptr uintptr) {
	a := b.current()
	if a == nil {
		return
	}
	defer recovered("free", nil)
	a.Release(ptr)
}

// recovered turns a panic in an allocator call into a zero result.
func recovered(op string, ptr *uintptr) {
	r := recover()
	if r == nil {
		return
	}
	if ptr != nil {
		*ptr = 0
	}
	log.Logger().Warn("allocator call panicked",
		zap.String("op", op),
		zap.Any("panic", r))
}

// Default is the process-wide bridge.
var Default = NewBridge()

// SetFactory installs f on the default bridge.
func SetFactory(f physfs.AllocatorFactory) error {
	return Default.SetFactory(f)
}

// Table returns the default bridge's call table.
func Table() *native.Allocator {
	return Default.Table()
}

// Current returns the default bridge's active allocator.
func Current() (physfs.Allocator, bool) {
	return Default.Current()
}
