package stream

import (
	stdio "io"
	"sync"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/native"
)

// Import returns t as a Go stream. A table produced by Export yields the
// stream that was exported; any other table is wrapped in a *Native, which
// takes ownership of it.
func Import(t *native.Io) physfs.Stream {
	if t == nil {
		return nil
	}
	if a, ok := registry.Lookup(t.Opaque); ok && a.io == t {
		return a.stream
	}
	return &Native{io: t}
}

// Native drives a stream owned by the engine.
type Native struct {
	io *native.Io
	mu sync.Mutex
}

// do runs fn on the locked calling thread so that fn's status check sees
// the code the engine set for this call.
func (n *Native) do(fn func(t *native.Io) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.io == nil {
		return errors.Disposed(errors.PhaseStream, "native stream")
	}
	return fault.Locked(func() error { return fn(n.io) })
}

// failed returns the engine's error for a call that reported failure.
func failed(op string) error {
	if err := fault.Last(); err != nil {
		return err
	}
	return errors.New(errors.PhaseStream, errors.KindEngine).
		Code(native.ErrOtherError).
		Detail("%s failed", op).
		Build()
}

func (n *Native) Read(p []byte) (int, error) {
	var read int
	err := n.do(func(t *native.Io) error {
		if len(p) == 0 {
			return nil
		}
		r := t.Read(t, p)
		switch {
		case r < 0:
			return failed("read")
		case r == 0:
			if err := fault.Last(); err != nil {
				return err
			}
			return stdio.EOF
		}
		read = int(r)
		if read < len(p) {
			return fault.Last()
		}
		return nil
	})
	return read, err
}

func (n *Native) Write(p []byte) (int, error) {
	var written int
	err := n.do(func(t *native.Io) error {
		if len(p) == 0 {
			return nil
		}
		w := t.Write(t, p)
		if w < 0 {
			return failed("write")
		}
		written = int(w)
		if written < len(p) {
			if err := fault.Last(); err != nil {
				return err
			}
			return stdio.ErrShortWrite
		}
		return nil
	})
	return written, err
}

func (n *Native) Seek(pos int64) error {
	if pos < 0 {
		return errors.InvalidInput(errors.PhaseStream, "negative seek position")
	}
	return n.do(func(t *native.Io) error {
		if t.Seek(t, uint64(pos)) == 0 {
			return failed("seek")
		}
		return nil
	})
}

func (n *Native) Position() (int64, error) {
	var pos int64
	err := n.do(func(t *native.Io) error {
		pos = t.Tell(t)
		if pos < 0 {
			return fault.Last()
		}
		return nil
	})
	return pos, err
}

func (n *Native) Length() (int64, error) {
	var size int64
	err := n.do(func(t *native.Io) error {
		size = t.Length(t)
		if size < 0 {
			return fault.Last()
		}
		return nil
	})
	return size, err
}

func (n *Native) Flush() error {
	return n.do(func(t *native.Io) error {
		if t.Flush(t) == 0 {
			return failed("flush")
		}
		return nil
	})
}

// Duplicate asks the engine for a clone. nil with a nil error means the
// engine stream cannot be cloned.
func (n *Native) Duplicate() (physfs.Stream, error) {
	var dup *native.Io
	err := n.do(func(t *native.Io) error {
		dup = t.Duplicate(t)
		if dup == nil {
			return fault.Last()
		}
		return nil
	})
	if err != nil || dup == nil {
		return nil, err
	}
	return Import(dup), nil
}

// Close destroys the engine stream. Later calls return nil.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.io == nil {
		return nil
	}
	t := n.io
	n.io = nil
	t.Destroy(t)
	return nil
}

// Detach gives up ownership of the engine table and returns it. The Native
// behaves as closed afterwards. It returns nil if already closed.
func (n *Native) Detach() *native.Io {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := n.io
	n.io = nil
	return t
}
