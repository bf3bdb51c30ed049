package native

// Token is the opaque fixed-width value the engine stores in place of a
// managed object. Token 0 is the null token.
type Token uint64

// Version is the call-table revision understood by this package.
const Version uint32 = 0

// EnumResult is returned by enumerate callbacks.
type EnumResult int32

const (
	EnumError EnumResult = -1 // stop enumerating, report error to the application
	EnumStop  EnumResult = 0  // stop enumerating, report success
	EnumOK    EnumResult = 1  // keep enumerating
)

// FileType is the engine's file-type enumeration.
type FileType int32

const (
	FileTypeRegular   FileType = 0
	FileTypeDirectory FileType = 1
	FileTypeSymlink   FileType = 2
	FileTypeOther     FileType = 3
)

// UnknownTime marks a timestamp the archive cannot provide. Zero is a valid
// timestamp and never means unknown.
const UnknownTime int64 = -1

// UnknownSize marks a size the archive cannot provide.
const UnknownSize int64 = -1

// Stat mirrors the engine's stat record.
type Stat struct {
	FileSize   int64
	ModTime    int64
	CreateTime int64
	AccessTime int64
	FileType   FileType
	ReadOnly   int32
}

// Io is the engine's byte-stream call table. The engine stores only Opaque
// and calls the function fields with the table itself.
type Io struct {
	Version   uint32
	Opaque    Token
	Read      func(io *Io, buf []byte) int64
	Write     func(io *Io, buf []byte) int64
	Seek      func(io *Io, offset uint64) int32
	Tell      func(io *Io) int64
	Length    func(io *Io) int64
	Duplicate func(io *Io) *Io
	Flush     func(io *Io) int32
	Destroy   func(io *Io)
}

// EnumerateCallback is the engine's per-entry callback handed to an
// archiver's Enumerate entry point.
type EnumerateCallback func(data any, origDir, name string) EnumResult

// ArchiveInfo describes an archive format to the engine.
type ArchiveInfo struct {
	Extension        string
	Description      string
	Author           string
	URL              string
	SupportsSymlinks bool
}

// Archiver is the engine's archive-format call table.
type Archiver struct {
	Version      uint32
	Info         ArchiveInfo
	OpenArchive  func(io *Io, name string, forWrite bool, claimed *bool) Token
	Enumerate    func(opaque Token, dir string, cb EnumerateCallback, origDir string, data any) EnumResult
	OpenRead     func(opaque Token, name string) *Io
	OpenWrite    func(opaque Token, name string) *Io
	OpenAppend   func(opaque Token, name string) *Io
	Remove       func(opaque Token, name string) int32
	Mkdir        func(opaque Token, name string) int32
	Stat         func(opaque Token, name string, stat *Stat) int32
	CloseArchive func(opaque Token)
}

// Allocator is the engine's allocator call table. Pointer-sized values are
// opaque to the engine beyond being zero or non-zero.
type Allocator struct {
	Init    func() int32
	Deinit  func()
	Malloc  func(size uint64) uintptr
	Realloc func(ptr uintptr, size uint64) uintptr
	Free    func(ptr uintptr)
}
