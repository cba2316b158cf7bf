// Package syserr translates negative Windows status codes into structured
// errors.
//
// HRESULT and NTSTATUS are independent numeric spaces: the same 32-bit value
// can mean different things in each. The space is always passed explicitly
// and a code is only ever looked up in the table of its own space.
package syserr

import (
	"errors"
	"fmt"
)

// Space names the numeric space a status code belongs to.
type Space int

const (
	// HRESULT is used by COM and shell APIs such as shell32.
	HRESULT Space = iota + 1
	// NTSTATUS is used by native ntdll system calls.
	NTSTATUS
)

// String returns the name of the space.
func (s Space) String() string {
	switch s {
	case HRESULT:
		return "HRESULT"
	case NTSTATUS:
		return "NTSTATUS"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}

// CodeUnknown is the machine code of a status that no table resolves.
const CodeUnknown = "UNKNOWN"

// ErrSystemCall matches any *SystemCallError with errors.Is.
var ErrSystemCall = errors.New("syserr: system call failed")

// SystemCallError is a failed OS call.
type SystemCallError struct {
	Op      string // entry point that failed, e.g. "NtQueryWnfStateData"
	Space   Space
	Status  int32
	Message string
	Code    string
}

func (e *SystemCallError) Error() string {
	return fmt.Sprintf("%s: %s 0x%08X %s: %s", e.Op, e.Space, uint32(e.Status), e.Code, e.Message)
}

// Is reports whether target is ErrSystemCall or a SystemCallError with the
// same space and status.
func (e *SystemCallError) Is(target error) bool {
	if target == ErrSystemCall {
		return true
	}
	t, ok := target.(*SystemCallError)
	if !ok {
		return false
	}
	return t.Space == e.Space && t.Status == e.Status
}

// Failed reports whether status denotes failure. Both spaces encode failure
// in the sign bit.
func Failed(status int32) bool {
	return status < 0
}

// Translate builds the error for a failed status in the given space.
func Translate(space Space, status int32, op string) *SystemCallError {
	e := &SystemCallError{
		Op:     op,
		Space:  space,
		Status: status,
		Code:   CodeUnknown,
	}
	if code, msg, ok := Lookup(space, status); ok {
		e.Code = code
		e.Message = msg
		return e
	}
	if msg, ok := systemMessage(space, status); ok {
		e.Message = msg
		return e
	}
	e.Message = fmt.Sprintf("unknown %s 0x%08X", space, uint32(status))
	return e
}

// Check returns nil for a successful status and the translated error
// otherwise.
func Check(space Space, status int32, op string) error {
	if !Failed(status) {
		return nil
	}
	return Translate(space, status, op)
}

// Lookup resolves a status in the table of its space.
func Lookup(space Space, status int32) (code, message string, ok bool) {
	var table map[uint32]entry
	switch space {
	case HRESULT:
		table = hresults
	case NTSTATUS:
		table = ntstatuses
	default:
		return "", "", false
	}
	ent, ok := table[uint32(status)]
	if !ok {
		return "", "", false
	}
	return ent.code, ent.message, true
}

// Status converts an unsigned code as written in Windows headers into the
// signed value returned by the OS.
func Status(code uint32) int32 {
	return int32(code)
}
