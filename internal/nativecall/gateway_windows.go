//go:build windows

package nativecall

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"winquiet/internal/wnf"
)

// boundProc is an entry point resolved at Open time.
type boundProc struct {
	sig  Signature
	proc *windows.LazyProc
	err  *MissingEntryPointError
}

// call invokes the entry point and returns its result as a signed status.
//
//go:uintptrescapes
func (b *boundProc) call(args ...uintptr) (int32, error) {
	if b.err != nil {
		return 0, b.err
	}
	if err := b.sig.CheckArgs(len(args)); err != nil {
		return 0, err
	}
	r1, _, _ := b.proc.Call(args...)
	return int32(uint32(r1)), nil
}

// System is the Gateway backed by the running OS.
type System struct {
	quns   *boundProc
	query  *boundProc
	update *boundProc
}

var _ Gateway = (*System)(nil)

// Open loads shell32 and ntdll from the system directory and resolves every
// declared entry point. Absent symbols are recorded, not fatal; calling one
// returns a *MissingEntryPointError.
func Open(opts Options) *System {
	libs := map[string]*windows.LazyDLL{
		Shell32: windows.NewLazySystemDLL(Shell32),
		Ntdll:   windows.NewLazySystemDLL(Ntdll),
	}
	bind := func(sig Signature) *boundProc {
		p := libs[sig.Library].NewProc(sig.Symbol)
		b := &boundProc{sig: sig, proc: p}
		if err := p.Find(); err != nil {
			b.err = missing(sig, opts, err)
		}
		return b
	}
	return &System{
		quns:   bind(SigQueryUserNotificationState),
		query:  bind(SigQueryWnfStateData),
		update: bind(SigUpdateWnfStateData),
	}
}

func (s *System) QueryUserNotificationState() (int32, int32, error) {
	var state int32
	hr, err := s.quns.call(uintptr(unsafe.Pointer(&state)))
	return state, hr, err
}

func (s *System) QueryWnfStateData(name wnf.StateName, buf []byte) (uint32, int32, error) {
	var stamp uint32
	size := uint32(len(buf))
	var data unsafe.Pointer
	if len(buf) > 0 {
		data = unsafe.Pointer(&buf[0])
	}
	status, err := s.query.call(
		uintptr(unsafe.Pointer(&name)),
		0, // TypeId
		0, // ExplicitScope
		uintptr(unsafe.Pointer(&stamp)),
		uintptr(data),
		uintptr(unsafe.Pointer(&size)),
	)
	return size, status, err
}

func (s *System) UpdateWnfStateData(name wnf.StateName, data []byte) (int32, error) {
	var p unsafe.Pointer
	if len(data) > 0 {
		p = unsafe.Pointer(&data[0])
	}
	return s.update.call(
		uintptr(unsafe.Pointer(&name)),
		uintptr(p),
		uintptr(len(data)),
		0, // TypeId
		0, // ExplicitScope
		0, // MatchingChangeStamp
		0, // CheckStamp
	)
}

func (s *System) Missing() []Signature {
	var out []Signature
	for _, b := range []*boundProc{s.quns, s.query, s.update} {
		if b.err != nil {
			out = append(out, b.sig)
		}
	}
	return out
}
