//go:build windows

package thread

import "golang.org/x/sys/windows"

func current() ID {
	return ID(windows.GetCurrentThreadId())
}
