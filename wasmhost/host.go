package wasmhost

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/archiver"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/internal/log"
	"github.com/wippyai/physfs-bridge/internal/thread"
	"github.com/wippyai/physfs-bridge/native"
	"github.com/wippyai/physfs-bridge/stream"
)

// DefaultModuleName is the import module name guests link against.
const DefaultModuleName = "physfs_bridge"

// Host exposes Go streams and archivers to a WebAssembly build of the
// engine.
//
// Guest calls must run on a goroutine locked to its OS thread: faults
// raised during a host call are parked for that thread and replayed by
// LastError.
type Host struct {
	runtime   wazero.Runtime
	name      string
	archivers []*native.Archiver
	owners    map[native.Token]*native.Archiver
	calls     sync.Map // thread.ID -> context.Context
	mu        sync.Mutex
}

// Option configures a Host.
type Option func(*Host)

// WithModuleName sets the import module name. Defaults to DefaultModuleName.
func WithModuleName(name string) Option {
	return func(h *Host) { h.name = name }
}

// New creates a host bound to rt.
func New(rt wazero.Runtime, opts ...Option) *Host {
	h := &Host{
		runtime: rt,
		name:    DefaultModuleName,
		owners:  make(map[native.Token]*native.Archiver),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Name returns the import module name.
func (h *Host) Name() string {
	return h.name
}

// RegisterArchiver makes a available to the guest and returns its index.
func (h *Host) RegisterArchiver(a physfs.Archiver) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.archivers = append(h.archivers, archiver.New(a))
	return len(h.archivers) - 1
}

// Archivers returns the number of registered archivers.
func (h *Host) Archivers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.archivers)
}

func (h *Host) archiver(idx int32) *native.Archiver {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || int(idx) >= len(h.archivers) {
		panic(errors.Protocol(errors.PhaseHost, "archiver index %d out of range", idx))
	}
	return h.archivers[idx]
}

func (h *Host) own(tok native.Token, a *native.Archiver) {
	h.mu.Lock()
	h.owners[tok] = a
	h.mu.Unlock()
}

func (h *Host) owner(tok native.Token) *native.Archiver {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.owners[tok]
	if !ok {
		panic(errors.UnknownToken(errors.PhaseHost, tok))
	}
	return a
}

func (h *Host) disown(tok native.Token) {
	h.mu.Lock()
	delete(h.owners, tok)
	h.mu.Unlock()
}

// Instantiate builds the host module in the runtime.
func (h *Host) Instantiate(ctx context.Context) (api.Module, error) {
	b := h.runtime.NewHostModuleBuilder(h.name)
	for _, fn := range h.functions() {
		b.NewFunctionBuilder().
			WithGoModuleFunction(h.wrap(fn.fn), fn.params, fn.results).
			WithName(fn.name).
			Export(fn.name)
	}
	mod, err := b.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInternal, err, "instantiate host module "+h.name)
	}
	log.Logger().Debug("host module instantiated",
		zap.String("module", h.name),
		zap.Int("archivers", h.Archivers()))
	return mod, nil
}

// wrap tracks the call context for nested guest calls and forwards the
// engine code raised by fn to the guest's error slot.
func (h *Host) wrap(fn api.GoModuleFunc) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		id := thread.Current()
		prev, nested := h.calls.Load(id)
		h.calls.Store(id, ctx)
		defer func() {
			if nested {
				h.calls.Store(id, prev)
			} else {
				h.calls.Delete(id)
			}
		}()

		fn(ctx, mod, stack)

		if code := fault.Default.State().LastErrorCode(); code != native.ErrOK {
			h.guest(mod).setErrorCode(code)
		}
	}
}

// guest returns mod bound to the context of the host call running on this
// thread.
func (h *Host) guest(mod api.Module) guest {
	ctx := context.Background()
	if v, ok := h.calls.Load(thread.Current()); ok {
		ctx = v.(context.Context)
	}
	return guest{ctx: ctx, mod: mod}
}

// ExportStream hands s to the guest and returns the token it passes to the
// io_* imports. The guest releases it with io_destroy.
func (h *Host) ExportStream(s physfs.Stream) native.Token {
	return stream.Export(s).Opaque
}

// LastError reads and clears the guest engine's error code on this thread
// and converts it, replaying a parked fault when the code is the sentinel.
func (h *Host) LastError(ctx context.Context, mod api.Module) error {
	return fault.Check(guest{ctx: ctx, mod: mod}.lastErrorCode())
}
