//go:build windows

package syserr

import (
	"strings"

	"golang.org/x/sys/windows"
)

// systemMessage asks the OS message tables for a description of status.
// NTSTATUS messages live in ntdll; HRESULTs are formatted from the system
// table.
func systemMessage(space Space, status int32) (string, bool) {
	var msg string
	switch space {
	case NTSTATUS:
		msg = windows.NTStatus(uint32(status)).Error()
	case HRESULT:
		msg = windows.Errno(uint32(status)).Error()
	default:
		return "", false
	}
	msg = strings.TrimSpace(msg)
	// x/sys falls back to "winapi error #N" / "NTSTATUS 0x..." when no
	// message exists.
	if msg == "" || strings.HasPrefix(msg, "winapi error") || strings.HasPrefix(msg, "NTSTATUS 0x") {
		return "", false
	}
	return msg, true
}
