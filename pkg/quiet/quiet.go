// Package quiet reports the user's notification state and reads or toggles
// Windows focus assist (quiet hours).
//
// All operations run on the calling goroutine. A Client is safe for
// concurrent use; concurrent FocusAssist calls are not serialized.
//
//	c := quiet.New(quiet.WithSilentFail(true))
//	if !c.IsFullscreenAppRunning(ctx) {
//		err := c.FocusAssist(ctx, true)
//	}
package quiet

import (
	"context"
	"time"

	"winquiet/internal/config"
	"winquiet/internal/focusassist"
	"winquiet/internal/logging"
	"winquiet/internal/metrics"
	"winquiet/internal/nativecall"
	"winquiet/internal/notifystate"
	"winquiet/internal/syserr"
	"winquiet/internal/wnf"
)

// Re-exported so callers can branch on errors without importing internal
// packages.
var (
	ErrMissingEntryPoint  = nativecall.ErrMissingEntryPoint
	ErrSystemCall         = syserr.ErrSystemCall
	ErrNotSupported       = focusassist.ErrNotSupported
	ErrUnexpectedState    = focusassist.ErrUnexpectedState
	ErrVerificationFailed = focusassist.ErrVerificationFailed
)

type settings struct {
	log        *logging.Logger
	metrics    *metrics.QuietMetrics
	settle     time.Duration
	silentFail bool
	verify     bool
}

// Option configures a Client.
type Option func(*settings)

// WithLogger sets the logger. The default discards.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records native calls and toggles into m.
func WithMetrics(m *metrics.QuietMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithSettleDelay sets the wait between a mode write and its verification.
func WithSettleDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithSilentFail makes queries against missing entry points resolve to a
// sentinel state instead of failing. It only applies to New; an injected
// gateway decides this for itself.
func WithSilentFail(silent bool) Option {
	return func(s *settings) {
		s.silentFail = silent
	}
}

// WithConfig applies the focus assist and native sections of cfg. Options
// after it override its values.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		if cfg == nil {
			return
		}
		s.settle = cfg.FocusAssist.SettleDelay()
		s.verify = cfg.FocusAssist.CheckSuccess
		s.silentFail = cfg.Native.SilentFail
	}
}

func buildSettings(opts []Option) settings {
	s := settings{
		log:    logging.Discard(),
		settle: focusassist.DefaultSettleDelay,
		verify: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Client issues the notification and focus assist calls.
type Client struct {
	gw      nativecall.Gateway
	log     *logging.Logger
	metrics *metrics.QuietMetrics
	verify  bool

	notify  *notifystate.Reader
	focus   *focusassist.Reader
	writer  *focusassist.Writer
	toggler *focusassist.Toggler
}

// New binds the native entry points once and returns a Client. Missing entry
// points are not an error here; they surface on the first call that needs
// them.
func New(opts ...Option) *Client {
	s := buildSettings(opts)
	gw := nativecall.Open(nativecall.Options{SilentFail: s.silentFail})
	return newClient(gw, s)
}

// NewWithGateway returns a Client issuing calls through gw.
func NewWithGateway(gw nativecall.Gateway, opts ...Option) *Client {
	return newClient(gw, buildSettings(opts))
}

func newClient(gw nativecall.Gateway, s settings) *Client {
	log := s.log.WithComponent("quiet")
	faOpts := []focusassist.Option{
		focusassist.WithLogger(s.log),
		focusassist.WithMetrics(s.metrics),
		focusassist.WithSettleDelay(s.settle),
	}
	toggler := focusassist.NewToggler(gw, faOpts...)

	c := &Client{
		gw:      gw,
		log:     log,
		metrics: s.metrics,
		verify:  s.verify,
		notify:  notifystate.NewReader(gw, s.log, s.metrics),
		focus:   toggler.Reader(),
		writer:  focusassist.NewWriter(gw, faOpts...),
		toggler: toggler,
	}
	for _, sig := range gw.Missing() {
		log.Debug("native entry point unavailable", "signature", sig.String())
	}
	return c
}

// Metrics returns the metrics sink, or nil.
func (c *Client) Metrics() *metrics.QuietMetrics {
	return c.metrics
}

// SettleDelay returns the wait between a mode write and its verification.
func (c *Client) SettleDelay() time.Duration {
	return c.toggler.SettleDelay()
}

// Unavailable lists the native entry points that could not be bound.
func (c *Client) Unavailable() []nativecall.Signature {
	return c.gw.Missing()
}

// NotificationOption configures QueryUserNotificationState.
type NotificationOption func(*notifystate.Options)

// NotificationRaw leaves the state untranslated.
func NotificationRaw() NotificationOption {
	return func(o *notifystate.Options) {
		o.Translate = false
	}
}

// QueryUserNotificationState returns the current QUNS state. By default the
// value carries its QUNS_ name.
func (c *Client) QueryUserNotificationState(ctx context.Context, opts ...NotificationOption) (notifystate.Value, error) {
	o := notifystate.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx = logging.EnsureOperationID(ctx)
	return c.notify.Query(ctx, o)
}

// IsFullscreenAppRunning reports whether a fullscreen or presentation-mode
// application is active. Errors are reported as false.
func (c *Client) IsFullscreenAppRunning(ctx context.Context) bool {
	return c.notify.IsFullscreenAppRunning(logging.EnsureOperationID(ctx))
}

// FocusAssistOption configures QueryFocusAssistState.
type FocusAssistOption func(*focusassist.QueryOptions)

// FocusAssistRaw leaves the state untranslated.
func FocusAssistRaw() FocusAssistOption {
	return func(o *focusassist.QueryOptions) {
		o.Translate = false
	}
}

// FocusAssistStrict fails with a *focusassist.StateAssertionError when the
// state is negative.
func FocusAssistStrict() FocusAssistOption {
	return func(o *focusassist.QueryOptions) {
		o.StateError = true
	}
}

// QueryFocusAssistState returns the active quiet hours level. By default the
// value carries its name and negative states are returned, not raised.
func (c *Client) QueryFocusAssistState(ctx context.Context, opts ...FocusAssistOption) (focusassist.Value, error) {
	o := focusassist.DefaultQueryOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx = logging.EnsureOperationID(ctx)
	return c.focus.Query(ctx, o)
}

// ToggleOption configures FocusAssist.
type ToggleOption func(*focusassist.ToggleOptions)

// WithoutVerify skips the settle wait and post-write check.
func WithoutVerify() ToggleOption {
	return func(o *focusassist.ToggleOptions) {
		o.Verify = false
	}
}

// FocusAssist turns focus assist on or off. It writes nothing when the
// current state already satisfies the request.
func (c *Client) FocusAssist(ctx context.Context, enable bool, opts ...ToggleOption) error {
	o := focusassist.ToggleOptions{Verify: c.verify}
	for _, opt := range opts {
		opt(&o)
	}
	ctx = logging.EnsureOperationID(ctx)
	c.log.WithContext(ctx).Debug("focus assist requested", "enable", enable, "verify", o.Verify)
	return c.toggler.SetMode(ctx, enable, o)
}

// ReadState reads the first four bytes of an arbitrary WNF state as a signed
// level.
func (c *Client) ReadState(ctx context.Context, name wnf.StateName) (focusassist.State, error) {
	return c.focus.QueryState(logging.EnsureOperationID(ctx), name)
}

// WriteState publishes p to an arbitrary WNF state. Success only means the
// call did not fail.
func (c *Client) WriteState(ctx context.Context, name wnf.StateName, p wnf.Payload) error {
	return c.writer.Update(logging.EnsureOperationID(ctx), name, p)
}
