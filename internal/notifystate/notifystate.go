// Package notifystate reports whether the user is in a state where
// interruptive notifications should be held back, using
// SHQueryUserNotificationState.
package notifystate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"winquiet/internal/logging"
	"winquiet/internal/metrics"
	"winquiet/internal/nativecall"
	"winquiet/internal/syserr"
)

// State is a QUERY_USER_NOTIFICATION_STATE value.
type State int32

const (
	// NotPresent: a screen saver is displayed, the machine is locked, or a
	// nonactive Fast User Switching session is in progress.
	NotPresent State = 1
	// Busy: a fullscreen application is running or Presentation Settings
	// are applied.
	Busy State = 2
	// RunningD3DFullScreen: a fullscreen exclusive-mode Direct3D
	// application is running.
	RunningD3DFullScreen State = 3
	// PresentationMode: the user turned on presentation settings.
	PresentationMode State = 4
	// AcceptsNotifications: none of the other states apply.
	AcceptsNotifications State = 5
	// QuietTime: the first hour after a new user's first login following an
	// OS upgrade or clean install.
	QuietTime State = 6
	// App: a Windows Store app is running fullscreen.
	App State = 7
)

var stateNames = map[State]string{
	NotPresent:           "QUNS_NOT_PRESENT",
	Busy:                 "QUNS_BUSY",
	RunningD3DFullScreen: "QUNS_RUNNING_D3D_FULL_SCREEN",
	PresentationMode:     "QUNS_PRESENTATION_MODE",
	AcceptsNotifications: "QUNS_ACCEPTS_NOTIFICATIONS",
	QuietTime:            "QUNS_QUIET_TIME",
	App:                  "QUNS_APP",
}

// Name returns the QUNS_ name of s when one is known.
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

// Fullscreen reports whether s means something is occupying the screen.
func (s State) Fullscreen() bool {
	switch s {
	case Busy, RunningD3DFullScreen, PresentationMode, App:
		return true
	}
	return false
}

// Value is a query result. Name is set only when translation was requested
// and the state has a known name.
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

// Options controls Query.
type Options struct {
	Translate bool
}

// DefaultOptions translates.
func DefaultOptions() Options {
	return Options{Translate: true}
}

// Reader queries the user notification state.
type Reader struct {
	gw      nativecall.Gateway
	log     *logging.Logger
	metrics *metrics.QuietMetrics
}

// NewReader returns a Reader issuing calls through gw. log and m may be nil.
func NewReader(gw nativecall.Gateway, log *logging.Logger, m *metrics.QuietMetrics) *Reader {
	if log == nil {
		log = logging.Discard()
	}
	return &Reader{gw: gw, log: log.WithComponent("notifystate"), metrics: m}
}

// Query calls SHQueryUserNotificationState.
//
// A negative HRESULT fails with a *syserr.SystemCallError. A missing entry
// point fails with a *nativecall.MissingEntryPointError unless it is silent,
// in which case state 0 is returned.
func (r *Reader) Query(ctx context.Context, opts Options) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	log := r.log.WithContext(ctx)
	sig := nativecall.SigQueryUserNotificationState

	start := time.Now()
	raw, hr, err := r.gw.QueryUserNotificationState()
	if err != nil {
		if me, ok := nativecall.AsMissing(err); ok {
			r.metrics.Missing()
			if me.Silent {
				log.Debug("entry point missing, reporting no state", "symbol", me.Symbol)
				return Value{}, nil
			}
		}
		return Value{}, fmt.Errorf("notifystate: %w", err)
	}
	r.metrics.ObserveCall(sig.Symbol, time.Since(start))

	if err := syserr.Check(sig.Result.Space(), hr, sig.Symbol); err != nil {
		r.metrics.CallFailed(sig.Symbol, sig.Result.Space().String())
		log.Warn("notification state query failed", "error", err)
		return Value{}, fmt.Errorf("notifystate: %w", err)
	}

	v := Value{State: State(raw)}
	if opts.Translate {
		v.Name, _ = v.State.Name()
	}
	return v, nil
}

// IsFullscreenAppRunning reports whether a fullscreen application,
// presentation mode, or exclusive Direct3D app is active. It never fails:
// any error is reported as false.
func (r *Reader) IsFullscreenAppRunning(ctx context.Context) bool {
	v, err := r.Query(ctx, Options{Translate: false})
	if err != nil {
		r.log.WithContext(ctx).Debug("fullscreen check failed", "error", err)
		return false
	}
	return v.State.Fullscreen()
}
