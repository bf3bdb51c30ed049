package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/native"
	"github.com/wippyai/physfs-bridge/stream"
)

// Stream kinds accepted by archive_open.
const (
	StreamNone  = 0 // no stream, e.g. mounting a directory
	StreamGuest = 1 // a stream owned by the guest, driven through physfs_io_*
	StreamHost  = 2 // a token obtained from the host
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (h *Host) functions() []hostFunc {
	return []hostFunc{
		{h.ioRead, "io_read", []api.ValueType{i64, i32, i32}, []api.ValueType{i64}},
		{h.ioWrite, "io_write", []api.ValueType{i64, i32, i32}, []api.ValueType{i64}},
		{h.ioSeek, "io_seek", []api.ValueType{i64, i64}, []api.ValueType{i32}},
		{h.ioTell, "io_tell", []api.ValueType{i64}, []api.ValueType{i64}},
		{h.ioLength, "io_length", []api.ValueType{i64}, []api.ValueType{i64}},
		{h.ioDuplicate, "io_duplicate", []api.ValueType{i64}, []api.ValueType{i64}},
		{h.ioFlush, "io_flush", []api.ValueType{i64}, []api.ValueType{i32}},
		{h.ioDestroy, "io_destroy", []api.ValueType{i64}, nil},

		{h.archiverCount, "archiver_count", nil, []api.ValueType{i32}},
		{h.archiverExtension, "archiver_extension", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}},
		{h.archiveOpen, "archive_open", []api.ValueType{i32, i32, i64, i32, i32, i32, i32}, []api.ValueType{i64}},
		{h.archiveEnumerate, "archive_enumerate", []api.ValueType{i64, i32, i32, i32, i32, i64}, []api.ValueType{i32}},
		{h.archiveOpenRead, "archive_open_read", []api.ValueType{i64, i32, i32}, []api.ValueType{i64}},
		{h.archiveOpenWrite, "archive_open_write", []api.ValueType{i64, i32, i32}, []api.ValueType{i64}},
		{h.archiveOpenAppend, "archive_open_append", []api.ValueType{i64, i32, i32}, []api.ValueType{i64}},
		{h.archiveRemove, "archive_remove", []api.ValueType{i64, i32, i32}, []api.ValueType{i32}},
		{h.archiveMkdir, "archive_mkdir", []api.ValueType{i64, i32, i32}, []api.ValueType{i32}},
		{h.archiveStat, "archive_stat", []api.ValueType{i64, i32, i32, i32}, []api.ValueType{i32}},
		{h.archiveClose, "archive_close", []api.ValueType{i64}, nil},
	}
}

func table(stack []uint64) *native.Io {
	return stream.Resolve(native.Token(stack[0]))
}

func (h *Host) ioRead(_ context.Context, mod api.Module, stack []uint64) {
	t := table(stack)
	buf := h.guest(mod).bytes(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	stack[0] = uint64(t.Read(t, buf))
}

func (h *Host) ioWrite(_ context.Context, mod api.Module, stack []uint64) {
	t := table(stack)
	buf := h.guest(mod).bytes(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	stack[0] = uint64(t.Write(t, buf))
}

func (h *Host) ioSeek(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	stack[0] = api.EncodeI32(t.Seek(t, stack[1]))
}

func (h *Host) ioTell(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	stack[0] = uint64(t.Tell(t))
}

func (h *Host) ioLength(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	stack[0] = uint64(t.Length(t))
}

func (h *Host) ioDuplicate(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	stack[0] = uint64(token(t.Duplicate(t)))
}

func (h *Host) ioFlush(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	stack[0] = api.EncodeI32(t.Flush(t))
}

func (h *Host) ioDestroy(_ context.Context, _ api.Module, stack []uint64) {
	t := table(stack)
	t.Destroy(t)
}

func token(t *native.Io) native.Token {
	if t == nil {
		return 0
	}
	return t.Opaque
}

func (h *Host) archiverCount(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI32(int32(h.Archivers()))
}

// archiverExtension copies the extension of archiver idx into the guest
// buffer, truncated to its capacity, and returns the full length.
func (h *Host) archiverExtension(_ context.Context, mod api.Module, stack []uint64) {
	ext := h.archiver(api.DecodeI32(stack[0])).Info.Extension
	buf := h.guest(mod).bytes(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	copy(buf, ext)
	stack[0] = api.EncodeI32(int32(len(ext)))
}

func (h *Host) archiveOpen(_ context.Context, mod api.Module, stack []uint64) {
	arc := h.archiver(api.DecodeI32(stack[0]))
	g := h.guest(mod)

	var io *native.Io
	switch kind := api.DecodeI32(stack[1]); kind {
	case StreamGuest:
		io = h.guestStream(mod, stack[2])
	case StreamHost:
		io = stream.Resolve(native.Token(stack[2]))
	}
	name := g.string(api.DecodeU32(stack[3]), api.DecodeU32(stack[4]))
	forWrite := api.DecodeI32(stack[5]) != 0

	var claimed bool
	tok := arc.OpenArchive(io, name, forWrite, &claimed)
	g.writeBool(api.DecodeU32(stack[6]), claimed)
	if tok != 0 {
		h.own(tok, arc)
	}
	stack[0] = uint64(tok)
}

func (h *Host) archiveEnumerate(_ context.Context, mod api.Module, stack []uint64) {
	tok := native.Token(stack[0])
	arc := h.owner(tok)
	g := h.guest(mod)
	dir := g.string(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	origDir := g.string(api.DecodeU32(stack[3]), api.DecodeU32(stack[4]))

	cb := func(data any, origDir, name string) native.EnumResult {
		g := h.guest(mod)
		origPtr := g.alloc(origDir)
		defer g.free(origPtr)
		namePtr := g.alloc(name)
		defer g.free(namePtr)
		r := g.call1(ExportEnumCallback,
			data.(uint64),
			api.EncodeU32(origPtr), api.EncodeU32(uint32(len(origDir))),
			api.EncodeU32(namePtr), api.EncodeU32(uint32(len(name))))
		return native.EnumResult(api.DecodeI32(r))
	}
	stack[0] = api.EncodeI32(int32(arc.Enumerate(tok, dir, cb, origDir, stack[5])))
}

func (h *Host) openEntry(mod api.Module, stack []uint64, mode physfs.OpenMode) {
	tok := native.Token(stack[0])
	name := h.guest(mod).string(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))

	a := h.owner(tok)
	open := a.OpenRead
	switch mode {
	case physfs.ModeWrite:
		open = a.OpenWrite
	case physfs.ModeAppend:
		open = a.OpenAppend
	}
	stack[0] = uint64(token(open(tok, name)))
}

func (h *Host) archiveOpenRead(_ context.Context, mod api.Module, stack []uint64) {
	h.openEntry(mod, stack, physfs.ModeRead)
}

func (h *Host) archiveOpenWrite(_ context.Context, mod api.Module, stack []uint64) {
	h.openEntry(mod, stack, physfs.ModeWrite)
}

func (h *Host) archiveOpenAppend(_ context.Context, mod api.Module, stack []uint64) {
	h.openEntry(mod, stack, physfs.ModeAppend)
}

func (h *Host) archiveRemove(_ context.Context, mod api.Module, stack []uint64) {
	tok := native.Token(stack[0])
	name := h.guest(mod).string(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	stack[0] = api.EncodeI32(h.owner(tok).Remove(tok, name))
}

func (h *Host) archiveMkdir(_ context.Context, mod api.Module, stack []uint64) {
	tok := native.Token(stack[0])
	name := h.guest(mod).string(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	stack[0] = api.EncodeI32(h.owner(tok).Mkdir(tok, name))
}

func (h *Host) archiveStat(_ context.Context, mod api.Module, stack []uint64) {
	tok := native.Token(stack[0])
	g := h.guest(mod)
	name := g.string(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))

	var st native.Stat
	ok := h.owner(tok).Stat(tok, name, &st)
	if ok != 0 {
		g.writeStat(api.DecodeU32(stack[3]), st)
	}
	stack[0] = api.EncodeI32(ok)
}

func (h *Host) archiveClose(_ context.Context, _ api.Module, stack []uint64) {
	tok := native.Token(stack[0])
	h.owner(tok).CloseArchive(tok)
	h.disown(tok)
}
