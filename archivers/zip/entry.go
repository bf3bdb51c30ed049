package zip

import (
	stdio "io"

	kzip "github.com/klauspost/compress/zip"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
)

// entry streams one decompressed file. Seeking backwards restarts
// decompression from the beginning of the entry.
type entry struct {
	f   *kzip.File
	rc  stdio.ReadCloser
	pos int64
}

func openEntry(f *kzip.File) (*entry, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, corrupt(f, err)
	}
	return &entry{f: f, rc: rc}, nil
}

func corrupt(f *kzip.File, err error) error {
	return errors.New(errors.PhaseArchive, errors.KindInvalidData).
		Code(native.ErrCorrupt).
		Path(f.Name).
		Cause(err).
		Build()
}

func (e *entry) check() error {
	if e.rc == nil {
		return errors.Disposed(errors.PhaseArchive, "zip entry "+e.f.Name)
	}
	return nil
}

func (e *entry) Read(p []byte) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	n, err := e.rc.Read(p)
	e.pos += int64(n)
	if err != nil && err != stdio.EOF {
		return n, corrupt(e.f, err)
	}
	return n, err
}

func (e *entry) Write([]byte) (int, error) {
	return 0, errors.New(errors.PhaseArchive, errors.KindUnsupported).
		Code(native.ErrOpenForReading).
		Path(e.f.Name).
		Build()
}

func (e *entry) Seek(pos int64) error {
	if err := e.check(); err != nil {
		return err
	}
	if pos < 0 || uint64(pos) > e.f.UncompressedSize64 {
		return errors.New(errors.PhaseArchive, errors.KindOutOfBounds).
			Code(native.ErrPastEOF).
			Path(e.f.Name).
			Detail("seek to %d", pos).
			Build()
	}
	if pos < e.pos {
		rc, err := e.f.Open()
		if err != nil {
			return corrupt(e.f, err)
		}
		_ = e.rc.Close()
		e.rc = rc
		e.pos = 0
	}
	if skip := pos - e.pos; skip > 0 {
		n, err := stdio.CopyN(stdio.Discard, e.rc, skip)
		e.pos += n
		if err != nil {
			return corrupt(e.f, err)
		}
	}
	return nil
}

func (e *entry) Position() (int64, error) {
	if err := e.check(); err != nil {
		return -1, err
	}
	return e.pos, nil
}

func (e *entry) Length() (int64, error) {
	return int64(e.f.UncompressedSize64), nil
}

func (e *entry) Flush() error {
	return nil
}

func (e *entry) Duplicate() (physfs.Stream, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	dup, err := openEntry(e.f)
	if err != nil {
		return nil, err
	}
	return dup, nil
}

func (e *entry) Close() error {
	if e.rc == nil {
		return nil
	}
	err := e.rc.Close()
	e.rc = nil
	return err
}
