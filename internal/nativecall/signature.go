// Package nativecall binds the shell32 and ntdll entry points used by
// winquiet and exposes them behind a typed Gateway.
//
// Every entry point is described by a Signature: the library it lives in,
// the width and space of its result, and an ordered parameter list. All
// entry points use the stdcall convention. Invocations are checked against
// the signature before the call is made.
package nativecall

import (
	"fmt"
	"strings"

	"winquiet/internal/syserr"
)

// Library names.
const (
	Shell32 = "shell32.dll"
	Ntdll   = "ntdll.dll"
)

// ResultKind is the declared return type of an entry point.
type ResultKind int

const (
	// ResultHRESULT is a signed 32-bit HRESULT.
	ResultHRESULT ResultKind = iota + 1
	// ResultNTSTATUS is a signed 32-bit NTSTATUS.
	ResultNTSTATUS
)

// Space returns the error space failures of this result are translated in.
func (k ResultKind) Space() syserr.Space {
	switch k {
	case ResultHRESULT:
		return syserr.HRESULT
	case ResultNTSTATUS:
		return syserr.NTSTATUS
	default:
		return 0
	}
}

func (k ResultKind) String() string {
	return k.Space().String()
}

// ParamKind describes how a parameter is passed.
type ParamKind int

const (
	// ParamScalar is an integer passed by value.
	ParamScalar ParamKind = iota + 1
	// ParamOut is a pointer the callee writes through.
	ParamOut
	// ParamInOut is a pointer to a value the caller initializes (typically a
	// capacity) and the callee may rewrite.
	ParamInOut
	// ParamOpaque is an input pointer that may be null.
	ParamOpaque
)

func (k ParamKind) String() string {
	switch k {
	case ParamScalar:
		return "scalar"
	case ParamOut:
		return "out"
	case ParamInOut:
		return "inout"
	case ParamOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// Param is one entry of a parameter list.
type Param struct {
	Name string
	Kind ParamKind
}

// Signature declares a native entry point.
type Signature struct {
	Library string
	Symbol  string
	Result  ResultKind
	Params  []Param
}

// String renders the signature in a C-like form.
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Kind.String() + " " + p.Name
	}
	return fmt.Sprintf("%s %s!%s(%s)", s.Result, s.Library, s.Symbol, strings.Join(params, ", "))
}

// CheckArgs verifies an invocation supplies one argument per parameter.
func (s Signature) CheckArgs(n int) error {
	if n != len(s.Params) {
		return fmt.Errorf("nativecall: %s takes %d arguments, got %d", s.Symbol, len(s.Params), n)
	}
	return nil
}

// Declared entry points.
var (
	SigQueryUserNotificationState = Signature{
		Library: Shell32,
		Symbol:  "SHQueryUserNotificationState",
		Result:  ResultHRESULT,
		Params: []Param{
			{"pquns", ParamOut},
		},
	}

	SigQueryWnfStateData = Signature{
		Library: Ntdll,
		Symbol:  "NtQueryWnfStateData",
		Result:  ResultNTSTATUS,
		Params: []Param{
			{"StateName", ParamOpaque},
			{"TypeId", ParamOpaque},
			{"ExplicitScope", ParamOpaque},
			{"ChangeStamp", ParamOut},
			{"Buffer", ParamOut},
			{"BufferSize", ParamInOut},
		},
	}

	SigUpdateWnfStateData = Signature{
		Library: Ntdll,
		Symbol:  "NtUpdateWnfStateData",
		Result:  ResultNTSTATUS,
		Params: []Param{
			{"StateName", ParamOpaque},
			{"Buffer", ParamOpaque},
			{"Length", ParamScalar},
			{"TypeId", ParamOpaque},
			{"ExplicitScope", ParamOpaque},
			{"MatchingChangeStamp", ParamScalar},
			{"CheckStamp", ParamScalar},
		},
	}
)

// Signatures lists every entry point a Gateway binds.
func Signatures() []Signature {
	return []Signature{
		SigQueryUserNotificationState,
		SigQueryWnfStateData,
		SigUpdateWnfStateData,
	}
}
