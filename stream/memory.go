package stream

import (
	stdio "io"
	"sync"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
)

// Memory is a growable in-memory stream.
type Memory struct {
	data     []byte
	pos      int64
	mu       sync.Mutex
	readOnly bool
	closed   bool
}

// NewMemory returns a writable stream positioned at the start of data. The
// stream takes ownership of data.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// NewReader returns a read-only stream over data.
func NewReader(data []byte) *Memory {
	return &Memory{data: data, readOnly: true}
}

func (m *Memory) check() error {
	if m.closed {
		return errors.Disposed(errors.PhaseStream, "memory stream")
	}
	return nil
}

func (m *Memory) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	if m.pos >= int64(len(m.data)) {
		return 0, stdio.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	if m.readOnly {
		return 0, errors.New(errors.PhaseStream, errors.KindUnsupported).
			Code(native.ErrOpenForReading).
			Detail("memory stream is read-only").
			Build()
	}
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		if end > int64(cap(m.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.data))))
			copy(grown, m.data)
			m.data = grown
		} else {
			m.data = m.data[:end]
		}
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *Memory) Seek(pos int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if pos < 0 || pos > int64(len(m.data)) {
		return errors.New(errors.PhaseStream, errors.KindOutOfBounds).
			Code(native.ErrPastEOF).
			Detail("seek to %d in %d bytes", pos, len(m.data)).
			Build()
	}
	m.pos = pos
	return nil
}

func (m *Memory) Position() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return -1, err
	}
	return m.pos, nil
}

func (m *Memory) Length() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return -1, err
	}
	return int64(len(m.data)), nil
}

func (m *Memory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check()
}

// Duplicate returns a stream over a copy of the current contents,
// positioned at the start.
func (m *Memory) Duplicate() (physfs.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	data := make([]byte, len(m.data))
	copy(data, m.data)
	return &Memory{data: data, readOnly: m.readOnly}, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Bytes returns a copy of the stream contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}
