package stream

import (
	stdio "io"
	"math"

	"go.uber.org/zap"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/handle"
	"github.com/wippyai/physfs-bridge/internal/log"
	"github.com/wippyai/physfs-bridge/native"
)

// adapter pairs an exported stream with the table handed to the engine.
type adapter struct {
	stream physfs.Stream
	io     *native.Io
}

var registry = handle.New[*adapter](errors.PhaseStream)

// Export hands s to the engine. The returned table stays valid until the
// engine calls its Destroy entry point, which closes s.
//
// A nil s exports a placeholder that reads nothing and discards writes.
// Exporting a stream obtained from Import returns its original table and
// transfers ownership of it back to the engine.
func Export(s physfs.Stream) *native.Io {
	if s == nil {
		s = Nothing()
	}
	if n, ok := s.(*Native); ok {
		if t := n.Detach(); t != nil {
			return t
		}
	}

	a := &adapter{stream: s}
	a.io = &native.Io{
		Version:   native.Version,
		Read:      ioRead,
		Write:     ioWrite,
		Seek:      ioSeek,
		Tell:      ioTell,
		Length:    ioLength,
		Duplicate: ioDuplicate,
		Flush:     ioFlush,
		Destroy:   ioDestroy,
	}
	a.io.Opaque = registry.Register(a)
	return a.io
}

// Resolve returns the table of the exported stream tok refers to. It panics
// if tok is not live.
func Resolve(tok native.Token) *native.Io {
	return registry.Resolve(tok).io
}

// Live returns the number of exported streams the engine has not destroyed.
func Live() int {
	return registry.Len()
}

// Disown drops the registration of an exported table without closing its
// stream. It is used when the stream Import returned for t has a new owner,
// so the engine will never call t's Destroy. Tables Export did not produce
// are ignored.
func Disown(t *native.Io) {
	if t == nil {
		return
	}
	if a, ok := registry.Lookup(t.Opaque); ok && a.io == t {
		registry.Release(t.Opaque)
	}
}

// Watch subscribes o to export and destroy events.
func Watch(o handle.Observer) (unwatch func()) {
	registry.Subscribe(o)
	return func() { registry.Unsubscribe(o) }
}

func resolve(t *native.Io) physfs.Stream {
	return registry.Resolve(t.Opaque).stream
}

func ioRead(t *native.Io, buf []byte) int64 {
	n, err := fill(resolve(t), buf)
	if err != nil {
		fault.Capture(err)
		return -1
	}
	return int64(n)
}

// fill reads into buf until it is full or the stream ends. A read that
// returns no bytes and no error counts as the end of the data.
func fill(r stdio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err == stdio.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

func ioWrite(t *native.Io, buf []byte) int64 {
	s := resolve(t)
	n, err := s.Write(buf)
	if err != nil {
		fault.Capture(err)
		return -1
	}
	return int64(n)
}

func ioSeek(t *native.Io, offset uint64) int32 {
	s := resolve(t)
	if offset > math.MaxInt64 {
		fault.Capture(errors.InvalidInput(errors.PhaseStream, "seek offset out of range"))
		return 0
	}
	if err := s.Seek(int64(offset)); err != nil {
		fault.Capture(err)
		return 0
	}
	return 1
}

func ioTell(t *native.Io) int64 {
	pos, err := resolve(t).Position()
	if err != nil {
		fault.Capture(err)
		return -1
	}
	return pos
}

func ioLength(t *native.Io) int64 {
	n, err := resolve(t).Length()
	if err != nil {
		fault.Capture(err)
		return -1
	}
	return n
}

func ioDuplicate(t *native.Io) *native.Io {
	d, err := resolve(t).Duplicate()
	if err != nil {
		fault.Capture(err)
		return nil
	}
	if d == nil {
		fault.Report(native.ErrUnsupported)
		return nil
	}
	return Export(d)
}

func ioFlush(t *native.Io) int32 {
	if err := resolve(t).Flush(); err != nil {
		fault.Capture(err)
		return 0
	}
	return 1
}

func ioDestroy(t *native.Io) {
	tok := t.Opaque
	s := resolve(t)
	defer registry.Release(tok)
	defer func() {
		if r := recover(); r != nil {
			log.Logger().Warn("stream close panicked during destroy",
				zap.Uint64("token", uint64(tok)),
				zap.Any("panic", r))
		}
	}()

	if err := s.Close(); err != nil {
		log.Logger().Warn("stream close failed during destroy",
			zap.Uint64("token", uint64(tok)),
			zap.Error(err))
	}
}
