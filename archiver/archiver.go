package archiver

import (
	stderrors "errors"
	"io/fs"
	"time"

	"go.uber.org/zap"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/handle"
	"github.com/wippyai/physfs-bridge/internal/log"
	"github.com/wippyai/physfs-bridge/native"
	"github.com/wippyai/physfs-bridge/stream"
)

var archives = handle.New[physfs.Archive](errors.PhaseArchive)

// OpenFunc opens an archive. See physfs.Archiver.OpenArchive.
type OpenFunc func(args physfs.ArchiveArgs) (physfs.Archive, error)

type funcArchiver struct {
	info physfs.ArchiverInfo
	open OpenFunc
}

func (f funcArchiver) Info() physfs.ArchiverInfo { return f.info }

func (f funcArchiver) OpenArchive(args physfs.ArchiveArgs) (physfs.Archive, error) {
	return f.open(args)
}

// Func builds a physfs.Archiver from a description and an open function.
func Func(info physfs.ArchiverInfo, open OpenFunc) physfs.Archiver {
	return funcArchiver{info: info, open: open}
}

// New returns the engine call table for format a.
func New(a physfs.Archiver) *native.Archiver {
	info := a.Info()
	return &native.Archiver{
		Version: native.Version,
		Info: native.ArchiveInfo{
			Extension:        info.Extension,
			Description:      info.Description,
			Author:           info.Author,
			URL:              info.URL,
			SupportsSymlinks: info.SupportsSymlinks,
		},
		OpenArchive: func(io *native.Io, name string, forWrite bool, claimed *bool) native.Token {
			return openArchive(a, io, name, forWrite, claimed)
		},
		Enumerate:    enumerate,
		OpenRead:     openRead,
		OpenWrite:    openWrite,
		OpenAppend:   openAppend,
		Remove:       remove,
		Mkdir:        mkdir,
		Stat:         stat,
		CloseArchive: closeArchive,
	}
}

// Lookup returns the open archive tok refers to.
func Lookup(tok native.Token) (physfs.Archive, bool) {
	return archives.Lookup(tok)
}

// Live returns the number of archives the engine has not closed.
func Live() int {
	return archives.Len()
}

func openArchive(a physfs.Archiver, io *native.Io, name string, forWrite bool, claimed *bool) native.Token {
	claim := func(v bool) {
		if claimed != nil {
			*claimed = v
		}
	}

	arc, err := a.OpenArchive(physfs.ArchiveArgs{
		Stream:   stream.Import(io),
		Name:     name,
		ForWrite: forWrite,
	})
	switch {
	case err == nil && arc != nil:
		claim(true)
		// The archive owns the stream now.
		stream.Disown(io)
		return archives.Register(arc)
	case stderrors.Is(err, physfs.ErrUnrecognized):
		claim(false)
		return 0
	case err == nil:
		err = errors.New(errors.PhaseArchive, errors.KindInternal).
			Path(name).
			Detail("archiver %q returned no archive", a.Info().Extension).
			Build()
	}
	claim(true)
	fault.Capture(err)
	return 0
}

func enumerate(tok native.Token, dir string, cb native.EnumerateCallback, origDir string, data any) native.EnumResult {
	arc := archives.Resolve(tok)
	for name, err := range arc.ListFiles(dir, origDir) {
		if err != nil {
			fault.Capture(err)
			return native.EnumError
		}
		switch r := cb(data, origDir, name); r {
		case native.EnumOK:
		case native.EnumStop:
			return native.EnumStop
		case native.EnumError:
			fault.Capture(errors.Callback(errors.PhaseArchive, "enumerate callback failed on "+name))
			return native.EnumError
		default:
			panic(errors.Protocol(errors.PhaseArchive, "enumerate callback returned %d", int32(r)))
		}
	}
	return native.EnumOK
}

func openRead(tok native.Token, name string) *native.Io {
	return open(tok, name, physfs.ModeRead)
}

func openWrite(tok native.Token, name string) *native.Io {
	return open(tok, name, physfs.ModeWrite)
}

func openAppend(tok native.Token, name string) *native.Io {
	return open(tok, name, physfs.ModeAppend)
}

func open(tok native.Token, name string, mode physfs.OpenMode) *native.Io {
	s, err := archives.Resolve(tok).Open(name, mode)
	if err != nil {
		fail(err)
		return nil
	}
	if s == nil {
		fault.Report(native.ErrNotFound)
		return nil
	}
	return stream.Export(s)
}

func remove(tok native.Token, name string) int32 {
	if err := archives.Resolve(tok).Remove(name); err != nil {
		fail(err)
		return 0
	}
	return 1
}

func mkdir(tok native.Token, name string) int32 {
	if err := archives.Resolve(tok).Mkdir(name); err != nil {
		fail(err)
		return 0
	}
	return 1
}

// fail reports conditions the engine has a code for directly and parks
// everything else in the fault channel.
func fail(err error) {
	switch {
	case stderrors.Is(err, physfs.ErrModeUnsupported):
		fault.Report(native.ErrUnsupported)
	case stderrors.Is(err, fs.ErrNotExist):
		fault.Report(native.ErrNotFound)
	default:
		fault.Capture(err)
	}
}

func stat(tok native.Token, name string, st *native.Stat) int32 {
	info, err := archives.Resolve(tok).Stat(name)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		fault.Capture(err)
		return 0
	}
	if info == nil {
		fault.Report(native.ErrNotFound)
		return 0
	}
	if st != nil {
		*st = Encode(info)
	}
	return 1
}

// Encode converts info to the engine's stat record.
func Encode(info *physfs.FileInfo) native.Stat {
	st := native.Stat{
		FileSize:   info.Size,
		ModTime:    epoch(info.ModTime),
		CreateTime: epoch(info.CreateTime),
		AccessTime: epoch(info.AccessTime),
		FileType:   fileType(info.Type),
	}
	if st.FileSize < 0 {
		st.FileSize = native.UnknownSize
	}
	if info.ReadOnly {
		st.ReadOnly = 1
	}
	return st
}

func epoch(t time.Time) int64 {
	if t.IsZero() || t.Unix() < 0 {
		return native.UnknownTime
	}
	return t.Unix()
}

func fileType(t physfs.FileType) native.FileType {
	switch t {
	case physfs.FileTypeRegular:
		return native.FileTypeRegular
	case physfs.FileTypeDirectory:
		return native.FileTypeDirectory
	case physfs.FileTypeSymlink:
		return native.FileTypeSymlink
	default:
		return native.FileTypeOther
	}
}

func closeArchive(tok native.Token) {
	arc := archives.Resolve(tok)
	defer archives.Release(tok)
	defer func() {
		if r := recover(); r != nil {
			log.Logger().Warn("archive close panicked",
				zap.Uint64("token", uint64(tok)),
				zap.Any("panic", r))
		}
	}()

	if err := arc.Close(); err != nil {
		log.Logger().Warn("archive close failed",
			zap.Uint64("token", uint64(tok)),
			zap.Error(err))
	}
}
