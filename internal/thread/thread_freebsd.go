//go:build freebsd

package thread

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func current() ID {
	var id int64
	unix.Syscall(unix.SYS_THR_SELF, uintptr(unsafe.Pointer(&id)), 0, 0)
	return ID(id)
}
