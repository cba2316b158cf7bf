// Package wnf describes Windows Notification Facility state names and the
// payloads written to them.
//
// WNF is undocumented. The two state names below and the two payloads are
// the only ones with empirically confirmed behavior; other names and payloads
// are accepted but their effect is unspecified.
package wnf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned when parsing state names and payloads.
var (
	ErrInvalidStateName = errors.New("wnf: invalid state name")
	ErrInvalidPayload   = errors.New("wnf: invalid payload")
)

// StateName identifies a WNF state. Its layout matches WNF_STATE_NAME
// (ULONG Data[2]) so a pointer to it can be handed to ntdll directly.
type StateName struct {
	Data [2]uint32
}

// Well-known shell state names.
var (
	// QuietHoursProfileChanged is signaled whenever the active quiet hours
	// profile changes. Its data is the restrictive level of the profile.
	QuietHoursProfileChanged = StateName{Data: [2]uint32{0xA3BF1C75, 0x0D83063E}}

	// QuietMomentShellModeChanged drives the shell's quiet moment mode.
	QuietMomentShellModeChanged = StateName{Data: [2]uint32{0xA3BF5075, 0x0D83063E}}
)

var knownNames = map[StateName]string{
	QuietHoursProfileChanged:    "WNF_SHEL_QUIETHOURS_ACTIVE_PROFILE_CHANGED",
	QuietMomentShellModeChanged: "WNF_SHEL_QUIET_MOMENT_SHELL_MODE_CHANGED",
}

// Uint64 returns the name in the conventional 64-bit form, Data[1] being the
// high word.
func (n StateName) Uint64() uint64 {
	return uint64(n.Data[1])<<32 | uint64(n.Data[0])
}

// String returns the 64-bit hex form, e.g. 0x0D83063EA3BF1C75.
func (n StateName) String() string {
	return fmt.Sprintf("0x%016X", n.Uint64())
}

// Name returns the symbolic WNF name for well-known states.
func (n StateName) Name() (string, bool) {
	name, ok := knownNames[n]
	return name, ok
}

// StateNameFromUint64 splits a 64-bit state name into its two words.
func StateNameFromUint64(v uint64) StateName {
	return StateName{Data: [2]uint32{uint32(v), uint32(v >> 32)}}
}

// ParseStateName parses either the 64-bit form ("0x0D83063EA3BF1C75") or the
// two-word form ("0xA3BF1C75,0x0D83063E"). Symbolic names of well-known
// states are accepted as well.
func ParseStateName(s string) (StateName, error) {
	s = strings.TrimSpace(s)
	for n, name := range knownNames {
		if strings.EqualFold(s, name) {
			return n, nil
		}
	}

	if lo, hi, ok := strings.Cut(s, ","); ok {
		w0, err := parseWord(lo, 32)
		if err != nil {
			return StateName{}, fmt.Errorf("%w: %q: %v", ErrInvalidStateName, s, err)
		}
		w1, err := parseWord(hi, 32)
		if err != nil {
			return StateName{}, fmt.Errorf("%w: %q: %v", ErrInvalidStateName, s, err)
		}
		return StateName{Data: [2]uint32{uint32(w0), uint32(w1)}}, nil
	}

	v, err := parseWord(s, 64)
	if err != nil {
		return StateName{}, fmt.Errorf("%w: %q: %v", ErrInvalidStateName, s, err)
	}
	return StateNameFromUint64(v), nil
}

func parseWord(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, errors.New("empty word")
	}
	return strconv.ParseUint(s, 16, bits)
}
