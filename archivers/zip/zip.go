package zip

import (
	"bytes"
	stdio "io"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"
	"sync"

	kzip "github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
)

var (
	localHeader = []byte("PK\x03\x04")
	emptyEnd    = []byte("PK\x05\x06")
)

// Archiver opens ZIP files read-only.
type Archiver struct{}

// New returns the ZIP archiver.
func New() *Archiver {
	return &Archiver{}
}

func (*Archiver) Info() physfs.ArchiverInfo {
	return physfs.ArchiverInfo{
		Extension:        "ZIP",
		Description:      "PkZip/WinZip/Info-Zip compatible",
		Author:           "physfs-bridge",
		URL:              "https://github.com/klauspost/compress",
		SupportsSymlinks: true,
	}
}

// OpenArchive reads the central directory of args.Stream. Data that does
// not start with a ZIP signature is unrecognized; a ZIP signature followed
// by an unreadable directory is corrupt.
func (*Archiver) OpenArchive(args physfs.ArchiveArgs) (physfs.Archive, error) {
	src := args.Stream
	if src == nil {
		return nil, physfs.ErrUnrecognized
	}

	magic := make([]byte, 4)
	if err := src.Seek(0); err != nil {
		return nil, err
	}
	if _, err := stdio.ReadFull(src, magic); err != nil {
		if err == stdio.EOF || err == stdio.ErrUnexpectedEOF {
			return nil, physfs.ErrUnrecognized
		}
		return nil, err
	}
	if !bytes.Equal(magic, localHeader) && !bytes.Equal(magic, emptyEnd) {
		return nil, physfs.ErrUnrecognized
	}

	if args.ForWrite {
		return nil, errors.New(errors.PhaseArchive, errors.KindUnsupported).
			Code(native.ErrReadOnly).
			Path(args.Name).
			Detail("zip archives are read-only").
			Build()
	}

	size, err := src.Length()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, errors.New(errors.PhaseArchive, errors.KindInvalidData).
			Code(native.ErrUnsupported).
			Path(args.Name).
			Detail("zip archive length unknown").
			Build()
	}

	ra := &readerAt{s: src}
	zr, err := kzip.NewReader(ra, size)
	if err != nil {
		return nil, errors.New(errors.PhaseArchive, errors.KindInvalidData).
			Code(native.ErrCorrupt).
			Path(args.Name).
			Detail("bad central directory").
			Cause(err).
			Build()
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	return newArchive(args.Name, zr, src), nil
}

// readerAt serves random access over a stream. Entry streams share it, so
// every seek+read pair holds the lock.
type readerAt struct {
	s  physfs.Stream
	mu sync.Mutex
}

func (r *readerAt) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.s.Seek(off); err != nil {
		return 0, err
	}
	n, err := stdio.ReadFull(r.s, p)
	if err == stdio.ErrUnexpectedEOF {
		err = stdio.EOF
	}
	return n, err
}

type node struct {
	file     *kzip.File
	children []string
}

// Archive is an opened ZIP file.
type Archive struct {
	src   physfs.Stream
	nodes map[string]*node
	name  string
}

func newArchive(name string, zr *kzip.Reader, src physfs.Stream) *Archive {
	a := &Archive{
		src:   src,
		name:  name,
		nodes: map[string]*node{"": {}},
	}
	for _, f := range zr.File {
		p := clean(f.Name)
		if p == "" {
			continue
		}
		n := a.ensure(p)
		if !strings.HasSuffix(f.Name, "/") {
			n.file = f
		}
	}
	for _, n := range a.nodes {
		slices.Sort(n.children)
	}
	return a
}

// ensure adds p and its missing parents.
func (a *Archive) ensure(p string) *node {
	if n, ok := a.nodes[p]; ok {
		return n
	}
	n := &node{}
	a.nodes[p] = n
	dir, base := path.Split(p)
	parent := a.ensure(strings.TrimSuffix(dir, "/"))
	parent.children = append(parent.children, base)
	return n
}

func clean(name string) string {
	name = strings.Trim(name, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}

func (a *Archive) ListFiles(dir, origDir string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		n, ok := a.nodes[clean(dir)]
		if !ok || n.file != nil {
			return
		}
		for _, c := range n.children {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (a *Archive) Open(name string, mode physfs.OpenMode) (physfs.Stream, error) {
	if mode != physfs.ModeRead {
		return nil, physfs.ErrModeUnsupported
	}
	n, ok := a.nodes[clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if n.file == nil {
		return nil, errors.New(errors.PhaseArchive, errors.KindInvalidInput).
			Code(native.ErrNotAFile).
			Path(name).
			Build()
	}
	e, err := openEntry(n.file)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (a *Archive) Remove(p string) error {
	return a.readOnly(p)
}

func (a *Archive) Mkdir(p string) error {
	return a.readOnly(p)
}

func (a *Archive) readOnly(p string) error {
	return errors.New(errors.PhaseArchive, errors.KindUnsupported).
		Code(native.ErrReadOnly).
		Path(p).
		Detail("zip archive %s is read-only", a.name).
		Build()
}

func (a *Archive) Stat(p string) (*physfs.FileInfo, error) {
	n, ok := a.nodes[clean(p)]
	if !ok {
		return nil, nil
	}
	if n.file == nil {
		return &physfs.FileInfo{Type: physfs.FileTypeDirectory, ReadOnly: true}, nil
	}

	info := &physfs.FileInfo{
		Size:     int64(n.file.UncompressedSize64),
		Type:     physfs.FileTypeRegular,
		ModTime:  n.file.Modified,
		ReadOnly: true,
	}
	if n.file.Mode()&fs.ModeSymlink != 0 {
		info.Type = physfs.FileTypeSymlink
	}
	return info, nil
}

// Close closes the archive's source stream.
func (a *Archive) Close() error {
	return a.src.Close()
}
