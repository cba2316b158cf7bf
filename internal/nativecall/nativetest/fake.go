// Package nativetest provides an in-memory stand-in for the OS behind a
// nativecall.Gateway.
//
// The fake models the observed shell behavior: a write to
// QuietMomentShellModeChanged changes the level published on
// QuietHoursProfileChanged. Writes can be made to have no effect to exercise
// verification failures.
package nativetest

import (
	"encoding/binary"
	"errors"
	"sync"

	"winquiet/internal/nativecall"
	"winquiet/internal/wnf"
)

// Write records one UpdateWnfStateData call.
type Write struct {
	Name wnf.StateName
	Data []byte
}

// Fake implements nativecall.Gateway. The zero value is not usable; use New.
type Fake struct {
	mu sync.Mutex

	notificationState int32
	notificationHR    int32
	queryStatus       int32
	updateStatus      int32
	enabledLevel      int32
	stuck             bool
	silent            bool
	missing           map[string]bool
	states            map[wnf.StateName][]byte

	writes  []Write
	queries int
}

var _ nativecall.Gateway = (*Fake)(nil)

// New returns a fake with focus assist off, notifications accepted, and
// PRIORITY_ONLY as the level enabling selects.
func New() *Fake {
	f := &Fake{
		notificationState: 5,
		enabledLevel:      1,
		missing:           make(map[string]bool),
		states:            make(map[wnf.StateName][]byte),
	}
	f.states[wnf.QuietHoursProfileChanged] = encode(0)
	return f
}

func encode(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// SetFocusAssist sets the raw level published on QuietHoursProfileChanged.
func (f *Fake) SetFocusAssist(level int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[wnf.QuietHoursProfileChanged] = encode(level)
}

// FocusAssist returns the raw level published on QuietHoursProfileChanged.
func (f *Fake) FocusAssist() int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int32(binary.LittleEndian.Uint32(f.states[wnf.QuietHoursProfileChanged]))
}

// SetEnabledLevel sets the level a non-zero mode payload switches to.
func (f *Fake) SetEnabledLevel(level int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabledLevel = level
}

// SetStuck makes writes succeed at the API level without changing state.
func (f *Fake) SetStuck(stuck bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stuck = stuck
}

// SetNotificationState sets the value SHQueryUserNotificationState reports.
func (f *Fake) SetNotificationState(state int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notificationState = state
}

// SetNotificationHRESULT makes SHQueryUserNotificationState return hr.
func (f *Fake) SetNotificationHRESULT(hr int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notificationHR = hr
}

// SetQueryStatus makes NtQueryWnfStateData return status.
func (f *Fake) SetQueryStatus(status int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryStatus = status
}

// SetUpdateStatus makes NtUpdateWnfStateData return status.
func (f *Fake) SetUpdateStatus(status int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateStatus = status
}

// SetMissing marks entry points as unbound. silent mirrors
// nativecall.Options.SilentFail.
func (f *Fake) SetMissing(silent bool, symbols ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silent = silent
	for _, s := range symbols {
		f.missing[s] = true
	}
}

// Writes returns a copy of every successful update so far.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Queries returns how many WNF queries were issued.
func (f *Fake) Queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func (f *Fake) missingErr(sig nativecall.Signature) error {
	if !f.missing[sig.Symbol] {
		return nil
	}
	return &nativecall.MissingEntryPointError{
		Library: sig.Library,
		Symbol:  sig.Symbol,
		Silent:  f.silent,
		Err:     errors.New("nativetest: symbol removed"),
	}
}

func (f *Fake) QueryUserNotificationState() (int32, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.missingErr(nativecall.SigQueryUserNotificationState); err != nil {
		return 0, 0, err
	}
	if f.notificationHR < 0 {
		return 0, f.notificationHR, nil
	}
	return f.notificationState, f.notificationHR, nil
}

func (f *Fake) QueryWnfStateData(name wnf.StateName, buf []byte) (uint32, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.missingErr(nativecall.SigQueryWnfStateData); err != nil {
		return 0, 0, err
	}
	f.queries++
	if f.queryStatus < 0 {
		return 0, f.queryStatus, nil
	}
	data := f.states[name]
	if len(data) > len(buf) {
		// STATUS_BUFFER_TOO_SMALL
		return uint32(len(data)), int32(-1073741789), nil
	}
	n := copy(buf, data)
	return uint32(n), f.queryStatus, nil
}

func (f *Fake) UpdateWnfStateData(name wnf.StateName, data []byte) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.missingErr(nativecall.SigUpdateWnfStateData); err != nil {
		return 0, err
	}
	if f.updateStatus < 0 {
		return f.updateStatus, nil
	}
	f.writes = append(f.writes, Write{Name: name, Data: append([]byte(nil), data...)})
	f.states[name] = append([]byte(nil), data...)

	if name == wnf.QuietMomentShellModeChanged && !f.stuck {
		level := int32(0)
		for _, b := range data {
			if b != 0 {
				level = f.enabledLevel
				break
			}
		}
		f.states[wnf.QuietHoursProfileChanged] = encode(level)
	}
	return f.updateStatus, nil
}

func (f *Fake) Missing() []nativecall.Signature {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []nativecall.Signature
	for _, sig := range nativecall.Signatures() {
		if f.missing[sig.Symbol] {
			out = append(out, sig)
		}
	}
	return out
}
