package native

import "strconv"

// ErrorCode is an engine status code.
type ErrorCode int32

const (
	ErrOK               ErrorCode = 0
	ErrOtherError       ErrorCode = 1
	ErrOutOfMemory      ErrorCode = 2
	ErrNotInitialized   ErrorCode = 3
	ErrIsInitialized    ErrorCode = 4
	ErrArgv0IsNull      ErrorCode = 5
	ErrUnsupported      ErrorCode = 6
	ErrPastEOF          ErrorCode = 7
	ErrFilesStillOpen   ErrorCode = 8
	ErrInvalidArgument  ErrorCode = 9
	ErrNotMounted       ErrorCode = 10
	ErrNotFound         ErrorCode = 11
	ErrSymlinkForbidden ErrorCode = 12
	ErrNoWriteDir       ErrorCode = 13
	ErrOpenForReading   ErrorCode = 14
	ErrOpenForWriting   ErrorCode = 15
	ErrNotAFile         ErrorCode = 16
	ErrReadOnly         ErrorCode = 17
	ErrCorrupt          ErrorCode = 18
	ErrSymlinkLoop      ErrorCode = 19
	ErrIO               ErrorCode = 20
	ErrPermission       ErrorCode = 21
	ErrNoSpace          ErrorCode = 22
	ErrBadFilename      ErrorCode = 23
	ErrBusy             ErrorCode = 24
	ErrDirNotEmpty      ErrorCode = 25
	ErrOSError          ErrorCode = 26
	ErrDuplicate        ErrorCode = 27
	ErrBadPassword      ErrorCode = 28
	ErrAppCallback      ErrorCode = 29

	// ErrFault is reserved by the bridge. It is never produced by the engine
	// and means "a managed failure is pending in the fault channel".
	ErrFault ErrorCode = 0x7FFF
)

var codeMessages = [...]string{
	ErrOK:               "no error",
	ErrOtherError:       "unknown error",
	ErrOutOfMemory:      "out of memory",
	ErrNotInitialized:   "not initialized",
	ErrIsInitialized:    "already initialized",
	ErrArgv0IsNull:      "argv[0] is NULL",
	ErrUnsupported:      "unsupported",
	ErrPastEOF:          "past end of file",
	ErrFilesStillOpen:   "files still open",
	ErrInvalidArgument:  "invalid argument",
	ErrNotMounted:       "not mounted",
	ErrNotFound:         "not found",
	ErrSymlinkForbidden: "symlinks are forbidden",
	ErrNoWriteDir:       "write directory is not set",
	ErrOpenForReading:   "file open for reading",
	ErrOpenForWriting:   "file open for writing",
	ErrNotAFile:         "not a file",
	ErrReadOnly:         "read-only filesystem",
	ErrCorrupt:          "corrupted",
	ErrSymlinkLoop:      "infinite symbolic link loop",
	ErrIO:               "i/o error",
	ErrPermission:       "permission denied",
	ErrNoSpace:          "no space available for writing",
	ErrBadFilename:      "filename is illegal or insecure",
	ErrBusy:             "tried to modify a file the OS needs",
	ErrDirNotEmpty:      "directory isn't empty",
	ErrOSError:          "OS reported an error",
	ErrDuplicate:        "duplicate resource",
	ErrBadPassword:      "bad password",
	ErrAppCallback:      "app callback reported error",
}

// String returns the engine's message for the code.
func (c ErrorCode) String() string {
	if c == ErrFault {
		return "managed fault pending"
	}
	if c >= 0 && int(c) < len(codeMessages) {
		return codeMessages[c]
	}
	return "error code " + strconv.Itoa(int(c))
}

// Valid reports whether c is a code the engine itself can produce.
func (c ErrorCode) Valid() bool {
	return c >= 0 && int(c) < len(codeMessages)
}
