package stream

import (
	stdio "io"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
)

// File is a stream over a file in a billy filesystem. Duplicates reopen the
// file by name: read streams reopen for reading, write and append streams
// reopen for appending.
type File struct {
	fs   billy.Filesystem
	file billy.File
	name string
	mode physfs.OpenMode
	mu   sync.Mutex
}

// OpenFile opens name in fs with the given mode.
func OpenFile(fs billy.Filesystem, name string, mode physfs.OpenMode) (*File, error) {
	var flag int
	switch mode {
	case physfs.ModeRead:
		flag = os.O_RDONLY
	case physfs.ModeWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case physfs.ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return nil, errors.InvalidInput(errors.PhaseStream, "unknown open mode "+mode.String())
	}

	f, err := fs.OpenFile(name, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, file: f, name: name, mode: mode}, nil
}

func (f *File) use() (billy.File, error) {
	if f.file == nil {
		return nil, errors.Disposed(errors.PhaseStream, "file stream "+f.name)
	}
	return f.file, nil
}

func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := f.use()
	if err != nil {
		return 0, err
	}
	return file.Read(p)
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := f.use()
	if err != nil {
		return 0, err
	}
	return file.Write(p)
}

func (f *File) Seek(pos int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := f.use()
	if err != nil {
		return err
	}
	_, err = file.Seek(pos, stdio.SeekStart)
	return err
}

func (f *File) Position() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := f.use()
	if err != nil {
		return -1, err
	}
	return file.Seek(0, stdio.SeekCurrent)
}

func (f *File) Length() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.use(); err != nil {
		return -1, err
	}
	info, err := f.fs.Stat(f.name)
	if err != nil {
		return -1, err
	}
	return info.Size(), nil
}

// Flush syncs the file if the filesystem supports it.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := f.use()
	if err != nil {
		return err
	}
	if s, ok := file.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func (f *File) Duplicate() (physfs.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.use(); err != nil {
		return nil, err
	}
	mode := f.mode
	if mode == physfs.ModeWrite {
		mode = physfs.ModeAppend
	}
	dup, err := OpenFile(f.fs, f.name, mode)
	if err != nil {
		return nil, err
	}
	return dup, nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Name returns the file's path within its filesystem.
func (f *File) Name() string {
	return f.name
}
