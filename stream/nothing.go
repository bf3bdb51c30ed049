package stream

import (
	stdio "io"

	physfs "github.com/wippyai/physfs-bridge"
)

type nothing struct{}

// Nothing returns the empty placeholder stream. Reads return end of file,
// writes report every byte as written, the length is 0 and duplicates are
// further placeholders.
func Nothing() physfs.Stream {
	return nothing{}
}

func (nothing) Read([]byte) (int, error)          { return 0, stdio.EOF }
func (nothing) Write(p []byte) (int, error)       { return len(p), nil }
func (nothing) Close() error                      { return nil }
func (nothing) Position() (int64, error)          { return 0, nil }
func (nothing) Seek(int64) error                  { return nil }
func (nothing) Length() (int64, error)            { return 0, nil }
func (nothing) Flush() error                      { return nil }
func (nothing) Duplicate() (physfs.Stream, error) { return nothing{}, nil }
