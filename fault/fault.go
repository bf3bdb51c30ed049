package fault

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/internal/thread"
	"github.com/wippyai/physfs-bridge/native"
)

// Channel holds at most one pending failure per OS thread and flags it
// through the engine's error slot.
type Channel struct {
	state   atomic.Pointer[stateBox]
	pending sync.Map // thread.ID -> error
}

type stateBox struct {
	s native.ErrorState
}

// New creates a channel that reports captures through state.
func New(state native.ErrorState) *Channel {
	c := &Channel{}
	c.Bind(state)
	return c
}

// Bind replaces the engine error slot the channel writes the sentinel to.
func (c *Channel) Bind(state native.ErrorState) {
	if state == nil {
		state = native.Errors
	}
	c.state.Store(&stateBox{s: state})
}

// State returns the engine error slot the channel is bound to.
func (c *Channel) State() native.ErrorState {
	return c.state.Load().s
}

// Capture stores err for the calling thread, replacing any fault not yet
// retrieved, and sets the thread's engine code to native.ErrFault.
func (c *Channel) Capture(err error) {
	if err == nil {
		err = errors.Internal(errors.PhaseFault, "nil fault captured")
	}
	c.pending.Store(thread.Current(), err)
	c.State().SetErrorCode(native.ErrFault)
}

// Report sets the calling thread's engine code without storing a fault.
// Used for conditions the engine has its own code for.
func (c *Channel) Report(code native.ErrorCode) {
	c.State().SetErrorCode(code)
}

// RetrieveAndClear returns and clears the calling thread's pending fault.
func (c *Channel) RetrieveAndClear() error {
	v, ok := c.pending.LoadAndDelete(thread.Current())
	if !ok {
		return nil
	}
	return v.(error)
}

// Pending reports whether the calling thread has a fault waiting.
func (c *Channel) Pending() bool {
	_, ok := c.pending.Load(thread.Current())
	return ok
}

// Check converts an engine status code into an error. native.ErrFault
// replays the captured fault verbatim; other non-zero codes become
// *errors.Error values carrying the code.
func (c *Channel) Check(code native.ErrorCode) error {
	switch code {
	case native.ErrOK:
		return nil
	case native.ErrFault:
		if err := c.RetrieveAndClear(); err != nil {
			return err
		}
		return errors.Internal(errors.PhaseFault, "fault code reported but no fault pending")
	default:
		return errors.FromCode(code)
	}
}

// Last reads and clears the calling thread's engine code and converts it
// with Check.
func (c *Channel) Last() error {
	return c.Check(c.State().LastErrorCode())
}

// Default is the channel used by the adapter entry points.
var Default = New(native.Errors)

// Capture records err on the default channel.
func Capture(err error) {
	Default.Capture(err)
}

// Report sets the calling thread's engine code on the default channel.
func Report(code native.ErrorCode) {
	Default.Report(code)
}

// RetrieveAndClear takes the calling thread's fault from the default channel.
func RetrieveAndClear() error {
	return Default.RetrieveAndClear()
}

// Check converts code using the default channel.
func Check(code native.ErrorCode) error {
	return Default.Check(code)
}

// Last converts the calling thread's engine code using the default channel.
func Last() error {
	return Default.Last()
}

// Locked runs fn with the goroutine locked to its OS thread, so a failing
// engine call, the status check and the fault retrieval all observe the
// same thread-scoped state.
func Locked(fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return fn()
}
