package nativecall

import (
	"errors"
	"fmt"

	"winquiet/internal/wnf"
)

// ErrMissingEntryPoint matches any *MissingEntryPointError with errors.Is.
var ErrMissingEntryPoint = errors.New("nativecall: missing entry point")

// ErrUnsupportedPlatform is the cause recorded for every entry point on
// non-Windows builds.
var ErrUnsupportedPlatform = errors.New("nativecall: unsupported platform")

// MissingEntryPointError reports that a symbol could not be bound, usually
// because the OS build is older or newer than the one it exists on.
type MissingEntryPointError struct {
	Library string
	Symbol  string
	// Silent is set when the gateway was opened with SilentFail. Query-style
	// callers resolve to a sentinel instead of failing.
	Silent bool
	Err    error
}

func (e *MissingEntryPointError) Error() string {
	msg := fmt.Sprintf("nativecall: missing %s in %s", e.Symbol, e.Library)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingEntryPointError) Unwrap() error { return e.Err }

func (e *MissingEntryPointError) Is(target error) bool {
	return target == ErrMissingEntryPoint
}

// AsMissing extracts a *MissingEntryPointError from err.
func AsMissing(err error) (*MissingEntryPointError, bool) {
	var me *MissingEntryPointError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// Gateway is the typed view of the bound entry points. Status values are the
// raw signed results of the OS call; the error return is reserved for
// binding problems and is a *MissingEntryPointError when the symbol is
// absent.
//
// Implementations are immutable and safe for concurrent use. A call blocks
// only the calling goroutine.
type Gateway interface {
	// QueryUserNotificationState calls shell32!SHQueryUserNotificationState.
	QueryUserNotificationState() (state int32, hr int32, err error)

	// QueryWnfStateData calls ntdll!NtQueryWnfStateData with null type ID and
	// scope, reading into buf. size is the byte count the OS reported.
	QueryWnfStateData(name wnf.StateName, buf []byte) (size uint32, status int32, err error)

	// UpdateWnfStateData calls ntdll!NtUpdateWnfStateData with null type ID,
	// scope and change-stamp arguments.
	UpdateWnfStateData(name wnf.StateName, data []byte) (status int32, err error)

	// Missing lists the signatures that could not be bound.
	Missing() []Signature
}

// Options controls how a Gateway is opened.
type Options struct {
	// SilentFail marks missing-symbol errors as silent.
	SilentFail bool
}

func missing(sig Signature, opts Options, cause error) *MissingEntryPointError {
	return &MissingEntryPointError{
		Library: sig.Library,
		Symbol:  sig.Symbol,
		Silent:  opts.SilentFail,
		Err:     cause,
	}
}
