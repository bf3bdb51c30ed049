package physfs

import (
	"errors"
	"io"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/physfs-bridge/internal/log"
)

// Stream is a seekable byte stream the engine can read, write and clone.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// Position returns the current offset. -1 with a nil error means the
	// position is unknown.
	Position() (int64, error)

	// Seek moves to an absolute offset.
	Seek(pos int64) error

	// Length returns the total size. -1 with a nil error means the size
	// cannot be determined.
	Length() (int64, error)

	Flush() error

	// Duplicate returns an independent stream over the same data, positioned
	// at the start. nil with a nil error means the stream cannot be cloned.
	Duplicate() (Stream, error)
}

// OpenMode selects how Archive.Open opens an entry.
type OpenMode int

const (
	ModeRead OpenMode = iota
	ModeWrite
	ModeAppend
)

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// FileType classifies an archive entry.
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
	FileTypeOther
)

// FileInfo describes an archive entry. A negative Size means unknown; a zero
// time means the archive does not track that timestamp.
type FileInfo struct {
	ModTime    time.Time
	CreateTime time.Time
	AccessTime time.Time
	Size       int64
	Type       FileType
	ReadOnly   bool
}

// Archive is one opened archive file.
type Archive interface {
	// ListFiles yields the names of the entries directly inside dir. origDir
	// is the directory the application asked for and is informational.
	ListFiles(dir, origDir string) iter.Seq2[string, error]

	// Open opens an entry. Archives that cannot honour a mode return an
	// error matching ErrModeUnsupported.
	Open(name string, mode OpenMode) (Stream, error)

	Remove(path string) error
	Mkdir(path string) error

	// Stat returns nil and a nil error, or an error matching fs.ErrNotExist,
	// when path does not exist.
	Stat(path string) (*FileInfo, error)

	Close() error
}

// ArchiveArgs are passed to an archiver when the engine probes a file.
type ArchiveArgs struct {
	Stream   Stream
	Name     string
	ForWrite bool
}

// ArchiverInfo describes an archive format.
type ArchiverInfo struct {
	Extension        string
	Description      string
	Author           string
	URL              string
	SupportsSymlinks bool
}

// Archiver opens archives of one format.
type Archiver interface {
	Info() ArchiverInfo

	// OpenArchive opens args.Stream as an archive. It returns an error
	// matching ErrUnrecognized when the data is not in this format. On
	// success the archive owns args.Stream and closes it in Close; on
	// failure the stream is left open for the engine.
	OpenArchive(args ArchiveArgs) (Archive, error)
}

// Allocator serves the engine's memory requests. A zero address means
// failure.
type Allocator interface {
	Init() error
	Allocate(size uint64) uintptr
	Reallocate(ptr uintptr, size uint64) uintptr
	Release(ptr uintptr)
	Close() error
}

// AllocatorFactory builds the allocator instance for each engine
// initialization.
type AllocatorFactory interface {
	NewAllocator() (Allocator, error)
}

// AllocatorFunc adapts a constructor function to AllocatorFactory.
type AllocatorFunc func() (Allocator, error)

func (f AllocatorFunc) NewAllocator() (Allocator, error) {
	return f()
}

var (
	// ErrUnrecognized is returned by an archiver that does not handle the
	// probed file's format. The engine moves on to the next archiver.
	ErrUnrecognized = errors.New("physfs: archive format not recognized")

	// ErrModeUnsupported is returned by Archive.Open for modes the archive
	// cannot serve, such as writing into a read-only format.
	ErrModeUnsupported = errors.New("physfs: open mode not supported")
)

// SetLogger installs the logger used to report failures the engine gives
// the bridge no way to return. nil disables logging.
func SetLogger(l *zap.Logger) {
	log.SetLogger(l)
}

// Logger returns the installed logger.
func Logger() *zap.Logger {
	return log.Logger()
}
