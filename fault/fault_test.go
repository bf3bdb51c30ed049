package fault

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/internal/thread"
	"github.com/wippyai/physfs-bridge/native"
)

type customErr struct {
	msg string
}

func (e *customErr) Error() string { return e.msg }

func TestChannel_CaptureSetsSentinel(t *testing.T) {
	state := native.NewThreadErrors()
	c := New(state)

	thread.Locked(func() {
		c.Capture(fs.ErrPermission)
		assert.Equal(t, native.ErrFault, state.Peek())
		assert.True(t, c.Pending())
	})
}

func TestChannel_RetrieveAndClear(t *testing.T) {
	c := New(native.NewThreadErrors())

	thread.Locked(func() {
		want := &customErr{msg: "disk on fire"}
		c.Capture(want)

		got := c.RetrieveAndClear()
		assert.Same(t, want, got)
		assert.False(t, c.Pending())
		assert.NoError(t, c.RetrieveAndClear())
	})
}

func TestChannel_LastWriteWins(t *testing.T) {
	c := New(native.NewThreadErrors())

	thread.Locked(func() {
		c.Capture(fs.ErrClosed)
		c.Capture(fs.ErrInvalid)
		assert.ErrorIs(t, c.RetrieveAndClear(), fs.ErrInvalid)
		assert.NoError(t, c.RetrieveAndClear())
	})
}

func TestChannel_NilCapture(t *testing.T) {
	c := New(native.NewThreadErrors())

	thread.Locked(func() {
		c.Capture(nil)
		err := c.RetrieveAndClear()
		require.Error(t, err)
		assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseFault, Kind: errors.KindInternal})
	})
}

func TestChannel_Check(t *testing.T) {
	c := New(native.NewThreadErrors())

	thread.Locked(func() {
		assert.NoError(t, c.Check(native.ErrOK))

		err := c.Check(native.ErrNotFound)
		var e *errors.Error
		require.True(t, stderrors.As(err, &e))
		assert.Equal(t, native.ErrNotFound, e.Code)
		assert.Equal(t, errors.KindNotFound, e.Kind)

		want := &customErr{msg: "boom"}
		c.Capture(want)
		assert.Same(t, want, c.Check(native.ErrFault))

		err = c.Check(native.ErrFault)
		assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseFault, Kind: errors.KindInternal})
	})
}

func TestChannel_LastReadsAndClearsEngineCode(t *testing.T) {
	state := native.NewThreadErrors()
	c := New(state)

	thread.Locked(func() {
		want := &customErr{msg: "late"}
		c.Capture(want)
		assert.Same(t, want, c.Last())
		assert.Equal(t, native.ErrOK, state.Peek())

		state.SetErrorCode(native.ErrBusy)
		assert.ErrorIs(t, c.Last(), &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindBusy})
		assert.NoError(t, c.Last())
	})
}

func TestChannel_FaultsAreThreadScoped(t *testing.T) {
	if thread.Shared {
		t.Skip("thread ids are not available on this platform")
	}

	state := native.NewThreadErrors()
	c := New(state)

	thread.Locked(func() {
		c.Capture(fs.ErrPermission)

		done := make(chan struct{})
		var (
			otherPending bool
			otherCode    native.ErrorCode
			otherErr     error
		)
		go func() {
			defer close(done)
			thread.Locked(func() {
				otherPending = c.Pending()
				otherCode = state.Peek()
				otherErr = c.RetrieveAndClear()
			})
		}()
		<-done

		assert.False(t, otherPending)
		assert.Equal(t, native.ErrOK, otherCode)
		assert.NoError(t, otherErr)

		assert.ErrorIs(t, c.RetrieveAndClear(), fs.ErrPermission)
	})
}

func TestLocked_ReturnsResult(t *testing.T) {
	want := stderrors.New("x")
	assert.Same(t, want, Locked(func() error { return want }))
	assert.NoError(t, Locked(func() error { return nil }))
}

func TestDefault_BindsGlobalErrors(t *testing.T) {
	assert.Same(t, native.Errors, Default.State())

	_ = Locked(func() error {
		Capture(fs.ErrExist)
		assert.Equal(t, native.ErrFault, native.Errors.Peek())
		assert.ErrorIs(t, Last(), fs.ErrExist)
		return nil
	})
}

func TestBind_NilRestoresGlobal(t *testing.T) {
	c := New(native.NewThreadErrors())
	c.Bind(nil)
	assert.Same(t, native.Errors, c.State())
}

func TestChannel_ReportLeavesNoFault(t *testing.T) {
	state := native.NewThreadErrors()
	c := New(state)

	thread.Locked(func() {
		c.Report(native.ErrNotFound)
		assert.False(t, c.Pending())
		assert.Equal(t, native.ErrNotFound, state.Peek())
		assert.ErrorIs(t, c.Last(), &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNotFound})
	})
}
