package native

import (
	"sync"

	"github.com/wippyai/physfs-bridge/internal/thread"
)

// ErrorState is the engine's per-thread error-code slot. LastErrorCode
// returns the current code and resets it to ErrOK, as the engine does.
type ErrorState interface {
	SetErrorCode(code ErrorCode)
	LastErrorCode() ErrorCode
}

// ThreadErrors keeps one error code per OS thread. It is the in-process
// stand-in for the engine's own slot and the default target of the fault
// channel.
type ThreadErrors struct {
	codes sync.Map // thread.ID -> ErrorCode
}

// NewThreadErrors creates an empty per-thread error slot.
func NewThreadErrors() *ThreadErrors {
	return &ThreadErrors{}
}

// SetErrorCode records code for the calling thread. ErrOK clears it.
func (s *ThreadErrors) SetErrorCode(code ErrorCode) {
	id := thread.Current()
	if code == ErrOK {
		s.codes.Delete(id)
		return
	}
	s.codes.Store(id, code)
}

// LastErrorCode returns and clears the calling thread's code.
func (s *ThreadErrors) LastErrorCode() ErrorCode {
	v, ok := s.codes.LoadAndDelete(thread.Current())
	if !ok {
		return ErrOK
	}
	return v.(ErrorCode)
}

// Peek returns the calling thread's code without clearing it.
func (s *ThreadErrors) Peek() ErrorCode {
	v, ok := s.codes.Load(thread.Current())
	if !ok {
		return ErrOK
	}
	return v.(ErrorCode)
}

// Errors is the process-wide default error slot.
var Errors = NewThreadErrors()
