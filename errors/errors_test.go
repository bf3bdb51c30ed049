package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/physfs-bridge/native"
)

func TestError_Format(t *testing.T) {
	err := New(PhaseArchive, KindInvalidData).
		Path("maps/e1m1.bsp").
		Detail("bad header %d", 7).
		Cause(fs.ErrClosed).
		Build()

	assert.Equal(t, "[archive] invalid_data at maps/e1m1.bsp: bad header 7 (caused by: file already closed)", err.Error())
}

func TestError_FormatWithCode(t *testing.T) {
	err := NotFound(PhaseArchive, "a/b")
	assert.Contains(t, err.Error(), "(code 11)")
}

func TestError_IsMatchesPhaseAndKind(t *testing.T) {
	err := Disposed(PhaseStream, "stream")

	assert.True(t, stderrors.Is(err, &Error{Phase: PhaseStream, Kind: KindDisposed}))
	assert.False(t, stderrors.Is(err, &Error{Phase: PhaseArchive, Kind: KindDisposed}))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	err := Wrap(PhaseStream, KindInternal, fs.ErrPermission, "read")
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestFromCode_Kinds(t *testing.T) {
	tests := []struct {
		code native.ErrorCode
		kind Kind
	}{
		{native.ErrNotFound, KindNotFound},
		{native.ErrUnsupported, KindUnsupported},
		{native.ErrBusy, KindBusy},
		{native.ErrCorrupt, KindInvalidData},
		{native.ErrBadFilename, KindInvalidInput},
		{native.ErrNoWriteDir, KindNotReady},
		{native.ErrPastEOF, KindOutOfBounds},
		{native.ErrAppCallback, KindCallback},
		{native.ErrIO, KindEngine},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := FromCode(tt.code)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, PhaseEngine, err.Phase)
		})
	}
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, native.ErrNotFound, CodeOf(NotFound(PhaseArchive, "x")))

	wrapped := Wrap(PhaseArchive, KindInternal, Unsupported(PhaseArchive, "write"), "open")
	require.Equal(t, native.ErrUnsupported, CodeOf(wrapped))

	require.Equal(t, native.ErrOtherError, CodeOf(fs.ErrClosed))
	require.Equal(t, native.ErrOtherError, CodeOf(nil))
}
