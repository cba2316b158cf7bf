//go:build !windows

package nativecall

import "winquiet/internal/wnf"

// System reports every entry point as missing outside Windows.
type System struct {
	opts Options
}

var _ Gateway = (*System)(nil)

// Open returns a gateway whose entry points are all missing.
func Open(opts Options) *System {
	return &System{opts: opts}
}

func (s *System) QueryUserNotificationState() (int32, int32, error) {
	return 0, 0, missing(SigQueryUserNotificationState, s.opts, ErrUnsupportedPlatform)
}

func (s *System) QueryWnfStateData(wnf.StateName, []byte) (uint32, int32, error) {
	return 0, 0, missing(SigQueryWnfStateData, s.opts, ErrUnsupportedPlatform)
}

func (s *System) UpdateWnfStateData(wnf.StateName, []byte) (int32, error) {
	return 0, missing(SigUpdateWnfStateData, s.opts, ErrUnsupportedPlatform)
}

func (s *System) Missing() []Signature {
	return Signatures()
}
