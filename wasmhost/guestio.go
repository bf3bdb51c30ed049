package wasmhost

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/native"
)

// guestStream builds an engine table over a stream the guest owns. Buffers
// are staged through guest malloc since the guest can only address its own
// memory.
func (h *Host) guestStream(mod api.Module, handle uint64) *native.Io {
	g := func() guest { return h.guest(mod) }

	return &native.Io{
		Version: native.Version,
		Opaque:  native.Token(handle),
		Read: func(_ *native.Io, buf []byte) int64 {
			gg := g()
			ptr := gg.reserve(uint32(len(buf)))
			defer gg.free(ptr)
			n := int64(gg.call1(ExportIoRead, handle, api.EncodeU32(ptr), api.EncodeU32(uint32(len(buf)))))
			if n > 0 {
				copy(buf, gg.bytes(ptr, uint32(min(n, int64(len(buf))))))
			}
			if n < int64(len(buf)) {
				gg.pullCode()
			}
			return n
		},
		Write: func(_ *native.Io, buf []byte) int64 {
			gg := g()
			ptr := gg.alloc(string(buf))
			defer gg.free(ptr)
			n := int64(gg.call1(ExportIoWrite, handle, api.EncodeU32(ptr), api.EncodeU32(uint32(len(buf)))))
			if n < int64(len(buf)) {
				gg.pullCode()
			}
			return n
		},
		Seek: func(_ *native.Io, off uint64) int32 {
			gg := g()
			r := api.DecodeI32(gg.call1(ExportIoSeek, handle, off))
			if r == 0 {
				gg.pullCode()
			}
			return r
		},
		Tell: func(*native.Io) int64 {
			gg := g()
			n := int64(gg.call1(ExportIoTell, handle))
			if n < 0 {
				gg.pullCode()
			}
			return n
		},
		Length: func(*native.Io) int64 {
			gg := g()
			n := int64(gg.call1(ExportIoLength, handle))
			if n < 0 {
				gg.pullCode()
			}
			return n
		},
		Duplicate: func(*native.Io) *native.Io {
			gg := g()
			dup := gg.call1(ExportIoDuplicate, handle)
			if dup == 0 {
				gg.pullCode()
				return nil
			}
			return h.guestStream(mod, dup)
		},
		Flush: func(*native.Io) int32 {
			gg := g()
			r := api.DecodeI32(gg.call1(ExportIoFlush, handle))
			if r == 0 {
				gg.pullCode()
			}
			return r
		},
		Destroy: func(*native.Io) {
			g().call(ExportIoDestroy, handle)
		},
	}
}

// pullCode moves the guest's error code into the calling thread's slot so
// the stream adapter sees it.
func (g guest) pullCode() {
	if code := g.lastErrorCode(); code != native.ErrOK {
		fault.Report(code)
	}
}
