package wasmhost

import (
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
)

// Guest exports the host calls back into.
const (
	ExportMalloc       = "malloc"
	ExportFree         = "free"
	ExportSetErrorCode = "PHYSFS_setErrorCode"
	ExportGetErrorCode = "PHYSFS_getLastErrorCode"
	ExportEnumCallback = "physfs_enum_callback"

	ExportIoRead      = "physfs_io_read"
	ExportIoWrite     = "physfs_io_write"
	ExportIoSeek      = "physfs_io_seek"
	ExportIoTell      = "physfs_io_tell"
	ExportIoLength    = "physfs_io_length"
	ExportIoDuplicate = "physfs_io_duplicate"
	ExportIoFlush     = "physfs_io_flush"
	ExportIoDestroy   = "physfs_io_destroy"
)

// StatSize is the byte size of the stat record written into guest memory:
// four little-endian int64 (size, mtime, ctime, atime) then two int32
// (type, read-only).
const StatSize = 40

// guest wraps the calling module for one host call.
type guest struct {
	ctx context.Context
	mod api.Module
}

func oob(what string, ptr, n uint32) *errors.Error {
	return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
		Detail("%s out of guest memory bounds: offset=%d, length=%d", what, ptr, n).
		Build()
}

// bytes returns a view of guest memory. Out-of-bounds ranges are a guest
// defect and panic.
func (g guest) bytes(ptr, n uint32) []byte {
	if n == 0 {
		return nil
	}
	b, ok := g.mod.Memory().Read(ptr, n)
	if !ok {
		panic(oob("buffer", ptr, n))
	}
	return b
}

func (g guest) string(ptr, n uint32) string {
	return string(g.bytes(ptr, n))
}

func (g guest) writeBool(ptr uint32, v bool) {
	if ptr == 0 {
		return
	}
	var u uint32
	if v {
		u = 1
	}
	if !g.mod.Memory().WriteUint32Le(ptr, u) {
		panic(oob("flag", ptr, 4))
	}
}

func (g guest) writeStat(ptr uint32, st native.Stat) {
	var rec [StatSize]byte
	binary.LittleEndian.PutUint64(rec[0:], uint64(st.FileSize))
	binary.LittleEndian.PutUint64(rec[8:], uint64(st.ModTime))
	binary.LittleEndian.PutUint64(rec[16:], uint64(st.CreateTime))
	binary.LittleEndian.PutUint64(rec[24:], uint64(st.AccessTime))
	binary.LittleEndian.PutUint32(rec[32:], uint32(st.FileType))
	binary.LittleEndian.PutUint32(rec[36:], uint32(st.ReadOnly))
	if !g.mod.Memory().Write(ptr, rec[:]) {
		panic(oob("stat", ptr, StatSize))
	}
}

// call invokes a guest export. A missing export or a trap is a host defect
// the engine cannot report, so it panics.
func (g guest) call(name string, params ...uint64) []uint64 {
	fn := g.mod.ExportedFunction(name)
	if fn == nil {
		panic(errors.New(errors.PhaseHost, errors.KindNotReady).
			Detail("guest does not export %s", name).
			Build())
	}
	res, err := fn.Call(g.ctx, params...)
	if err != nil {
		panic(errors.Wrap(errors.PhaseHost, errors.KindEngine, err, "guest call "+name))
	}
	return res
}

func (g guest) call1(name string, params ...uint64) uint64 {
	res := g.call(name, params...)
	if len(res) == 0 {
		panic(errors.Protocol(errors.PhaseHost, "guest %s returned no result", name))
	}
	return res[0]
}

// reserve allocates n bytes of guest memory. The caller frees it.
func (g guest) reserve(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	ptr := api.DecodeU32(g.call1(ExportMalloc, api.EncodeU32(n)))
	if ptr == 0 {
		panic(errors.New(errors.PhaseHost, errors.KindEngine).
			Code(native.ErrOutOfMemory).
			Detail("guest malloc(%d) failed", n).
			Build())
	}
	return ptr
}

// alloc copies s into a fresh guest block. The caller frees it.
func (g guest) alloc(s string) uint32 {
	ptr := g.reserve(uint32(len(s)))
	if ptr != 0 && !g.mod.Memory().WriteString(ptr, s) {
		panic(oob("string", ptr, uint32(len(s))))
	}
	return ptr
}

func (g guest) free(ptr uint32) {
	if ptr != 0 {
		g.call(ExportFree, api.EncodeU32(ptr))
	}
}

// setErrorCode stores code in the guest engine's error slot.
func (g guest) setErrorCode(code native.ErrorCode) {
	g.call(ExportSetErrorCode, api.EncodeI32(int32(code)))
}

// lastErrorCode reads and clears the guest engine's error slot.
func (g guest) lastErrorCode() native.ErrorCode {
	return native.ErrorCode(api.DecodeI32(g.call1(ExportGetErrorCode)))
}
