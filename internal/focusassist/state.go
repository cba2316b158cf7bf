// Package focusassist queries and toggles Windows focus assist (quiet hours)
// through the undocumented WNF shell states.
//
// Reader reads QuietHoursProfileChanged, Writer writes
// QuietMomentShellModeChanged, and Toggler combines both into an idempotent
// set-mode operation that verifies its effect after a settle delay, since the
// OS gives no synchronous confirmation.
package focusassist

import (
	"errors"
	"fmt"
	"strconv"
)

// State is the raw focus assist level published by the shell.
type State int32

// Known levels. Negative values are sentinels, not OS levels.
const (
	StateNotSupported State = -2
	StateFailed       State = -1
	StateOff          State = 0
	StatePriorityOnly State = 1
	StateAlarmsOnly   State = 2
)

var stateNames = map[State]string{
	StateNotSupported: "NOT_SUPPORTED",
	StateFailed:       "FAILED",
	StateOff:          "OFF",
	StatePriorityOnly: "PRIORITY_ONLY",
	StateAlarmsOnly:   "ALARMS_ONLY",
}

// Name returns the symbolic name of s when one is known.
func (s State) Name() (string, bool) {
	name, ok := stateNames[s]
	return name, ok
}

// String returns the symbolic name or the decimal value.
func (s State) String() string {
	if name, ok := s.Name(); ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// Enabled reports whether s is an active focus assist level.
func (s State) Enabled() bool {
	return s > 0
}

// Value is a query result. Name is set only when translation was requested
// and s has a known name.
type Value struct {
	State State  `json:"state" yaml:"state"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// String returns Name, or the decimal state when there is no name.
func (v Value) String() string {
	if v.Name != "" {
		return v.Name
	}
	return strconv.Itoa(int(v.State))
}

func translate(s State, enabled bool) Value {
	v := Value{State: s}
	if enabled {
		v.Name, _ = s.Name()
	}
	return v
}

// Errors.
var (
	ErrNotSupported       = errors.New("focusassist: not supported")
	ErrUnexpectedState    = errors.New("focusassist: unexpected state")
	ErrVerificationFailed = errors.New("focusassist: mode change had no effect")
)

// StateAssertionError is returned in strict mode when the decoded state is
// negative.
type StateAssertionError struct {
	State State
}

func (e *StateAssertionError) Error() string {
	return fmt.Sprintf("%v (state %d)", e.Unwrap(), int32(e.State))
}

// Unwrap returns ErrNotSupported for -2 and ErrUnexpectedState otherwise.
func (e *StateAssertionError) Unwrap() error {
	if e.State == StateNotSupported {
		return ErrNotSupported
	}
	return ErrUnexpectedState
}

// VerificationFailedError is returned when a mode write was accepted but the
// state read back after the settle delay does not reflect it.
type VerificationFailedError struct {
	Enable   bool
	Observed State
}

func (e *VerificationFailedError) Error() string {
	want := "off"
	if e.Enable {
		want = "on"
	}
	return fmt.Sprintf("%v: wanted %s, observed %s", ErrVerificationFailed, want, e.Observed)
}

func (e *VerificationFailedError) Unwrap() error {
	return ErrVerificationFailed
}
