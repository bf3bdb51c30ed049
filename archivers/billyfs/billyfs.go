package billyfs

import (
	stderrors "errors"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
	"github.com/wippyai/physfs-bridge/stream"
)

// Archiver mounts directories of a billy filesystem. The engine's archive
// name is taken as a directory path in that filesystem.
type Archiver struct {
	fs       billy.Filesystem
	desc     string
	readOnly bool
}

// Option configures an Archiver.
type Option func(*Archiver)

// ReadOnly refuses writes, removals and directory creation.
func ReadOnly() Option {
	return func(a *Archiver) { a.readOnly = true }
}

// Description overrides the format description reported to the engine.
func Description(d string) Option {
	return func(a *Archiver) { a.desc = d }
}

// New returns an archiver over fsys.
func New(fsys billy.Filesystem, opts ...Option) *Archiver {
	a := &Archiver{fs: fsys, desc: "billy filesystem directory"}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewOS returns an archiver over the host directory root.
func NewOS(root string, opts ...Option) *Archiver {
	return New(osfs.New(root), opts...)
}

func (a *Archiver) Info() physfs.ArchiverInfo {
	return physfs.ArchiverInfo{
		Description:      a.desc,
		Author:           "physfs-bridge",
		URL:              "https://github.com/go-git/go-billy",
		SupportsSymlinks: true,
	}
}

// OpenArchive claims args.Name when it names a directory.
func (a *Archiver) OpenArchive(args physfs.ArchiveArgs) (physfs.Archive, error) {
	if args.ForWrite && a.readOnly {
		return nil, physfs.ErrUnrecognized
	}
	dir := clean(args.Name)
	if dir == "." {
		return &Archive{fs: a.fs, src: args.Stream, readOnly: a.readOnly}, nil
	}
	info, err := a.fs.Stat(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, physfs.ErrUnrecognized
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, physfs.ErrUnrecognized
	}

	root, err := a.fs.Chroot(dir)
	if err != nil {
		return nil, err
	}
	return &Archive{fs: root, src: args.Stream, readOnly: a.readOnly}, nil
}

func clean(name string) string {
	name = strings.Trim(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}

// Archive is a mounted directory.
type Archive struct {
	fs       billy.Filesystem
	src      physfs.Stream
	readOnly bool
}

func (a *Archive) ListFiles(dir, origDir string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		entries, err := a.fs.ReadDir(clean(dir))
		if err != nil {
			if !stderrors.Is(err, fs.ErrNotExist) {
				yield("", err)
			}
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		slices.Sort(names)
		for _, n := range names {
			if !yield(n, nil) {
				return
			}
		}
	}
}

func (a *Archive) Open(name string, mode physfs.OpenMode) (physfs.Stream, error) {
	if mode != physfs.ModeRead && a.readOnly {
		return nil, physfs.ErrModeUnsupported
	}
	f, err := stream.OpenFile(a.fs, clean(name), mode)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (a *Archive) Remove(p string) error {
	if a.readOnly {
		return readOnly(p)
	}
	return a.fs.Remove(clean(p))
}

func (a *Archive) Mkdir(p string) error {
	if a.readOnly {
		return readOnly(p)
	}
	return a.fs.MkdirAll(clean(p), 0o755)
}

func readOnly(p string) error {
	return errors.New(errors.PhaseArchive, errors.KindUnsupported).
		Code(native.ErrReadOnly).
		Path(p).
		Build()
}

func (a *Archive) Stat(p string) (*physfs.FileInfo, error) {
	info, err := a.fs.Lstat(clean(p))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	fi := &physfs.FileInfo{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		ReadOnly: a.readOnly || info.Mode().Perm()&0o200 == 0,
	}
	switch mode := info.Mode(); {
	case mode.IsRegular():
		fi.Type = physfs.FileTypeRegular
	case mode.IsDir():
		fi.Type = physfs.FileTypeDirectory
		fi.Size = 0
	case mode&fs.ModeSymlink != 0:
		fi.Type = physfs.FileTypeSymlink
	default:
		fi.Type = physfs.FileTypeOther
	}
	return fi, nil
}

// Close releases the stream the engine handed over when mounting.
func (a *Archive) Close() error {
	if a.src == nil {
		return nil
	}
	return a.src.Close()
}
