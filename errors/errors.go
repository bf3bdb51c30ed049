package errors

import (
	"fmt"
	"strings"

	"github.com/wippyai/physfs-bridge/native"
)

// Phase indicates which part of the bridge produced the error
type Phase string

const (
	PhaseStream   Phase = "stream"   // stream adapters
	PhaseArchive  Phase = "archive"  // archiver adapter
	PhaseAlloc    Phase = "alloc"    // allocator bridge
	PhaseRegistry Phase = "registry" // handle registry
	PhaseFault    Phase = "fault"    // fault channel
	PhaseEngine   Phase = "engine"   // status reported by the engine
	PhaseHost     Phase = "host"     // WebAssembly host module
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindEngine       Kind = "engine"
	KindDisposed     Kind = "disposed"
	KindUnsupported  Kind = "unsupported"
	KindNotFound     Kind = "not_found"
	KindProtocol     Kind = "protocol"
	KindCallback     Kind = "callback"
	KindBusy         Kind = "busy"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidData  Kind = "invalid_data"
	KindInternal     Kind = "internal"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindNotReady     Kind = "not_ready"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   string
	Code   native.ErrorCode
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != native.ErrOK {
		fmt.Fprintf(&b, " (code %d)", int32(e.Code))
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the archive or file path the error refers to
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Code sets the engine status code
func (b *Builder) Code(code native.ErrorCode) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Disposed creates an error for an operation on an already destroyed object
func Disposed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisposed,
		Detail: fmt.Sprintf("%s already disposed", what),
	}
}

// Protocol creates a contract-violation error. These are raised as panics.
func Protocol(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProtocol,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnknownToken creates the protocol violation raised when a token does not resolve
func UnknownToken(phase Phase, token native.Token) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProtocol,
		Detail: fmt.Sprintf("unknown token %#x", uint64(token)),
	}
}

// Callback creates the fault recorded when an application callback asks to stop with an error
func Callback(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCallback,
		Code:   native.ErrAppCallback,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Code:   native.ErrUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, path string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Code:   native.ErrNotFound,
		Path:   path,
		Detail: "no such file or directory",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Code:   native.ErrInvalidArgument,
		Detail: detail,
	}
}

// Busy creates an error for state that cannot change while in use
func Busy(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBusy,
		Code:   native.ErrBusy,
		Detail: detail,
	}
}

// Internal creates an internal consistency error
func Internal(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// FromCode builds the error for a negotiated engine status code.
// The kind follows the category of the code.
func FromCode(code native.ErrorCode) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   kindOf(code),
		Code:   code,
		Detail: code.String(),
	}
}

func kindOf(code native.ErrorCode) Kind {
	switch code {
	case native.ErrNotFound, native.ErrNotMounted:
		return KindNotFound
	case native.ErrUnsupported:
		return KindUnsupported
	case native.ErrBusy, native.ErrFilesStillOpen:
		return KindBusy
	case native.ErrInvalidArgument, native.ErrBadFilename, native.ErrNotAFile:
		return KindInvalidInput
	case native.ErrCorrupt:
		return KindInvalidData
	case native.ErrNotInitialized, native.ErrIsInitialized, native.ErrNoWriteDir,
		native.ErrOpenForReading, native.ErrOpenForWriting, native.ErrSymlinkForbidden:
		return KindNotReady
	case native.ErrPastEOF:
		return KindOutOfBounds
	case native.ErrAppCallback:
		return KindCallback
	default:
		return KindEngine
	}
}

// CodeOf returns the engine status code carried by err, or ErrOtherError
// when err carries none.
func CodeOf(err error) native.ErrorCode {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code != native.ErrOK {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return native.ErrOtherError
}
