package metrics

import (
	"time"
)

// QuietMetrics holds the winquiet-specific metrics. A nil *QuietMetrics is
// valid and records nothing.
type QuietMetrics struct {
	registry *Registry

	MissingEntryPoints   *Counter
	ModeWrites           *Counter
	ModeNoops            *Counter
	VerificationFailures *Counter

	CallDuration *Histogram
}

// NewQuietMetrics creates and registers all winquiet metrics.
func NewQuietMetrics(registry *Registry) *QuietMetrics {
	if registry == nil {
		registry = NewRegistry("winquiet")
	}

	return &QuietMetrics{
		registry: registry,
		MissingEntryPoints: registry.RegisterCounter(
			"missing_entry_points_total",
			"Calls to entry points that could not be bound",
			nil,
		),
		ModeWrites: registry.RegisterCounter(
			"mode_writes_total",
			"Focus assist mode payloads written",
			nil,
		),
		ModeNoops: registry.RegisterCounter(
			"mode_noops_total",
			"Focus assist toggles skipped because the mode already held",
			nil,
		),
		VerificationFailures: registry.RegisterCounter(
			"verification_failures_total",
			"Mode writes with no observable effect after the settle delay",
			nil,
		),
		CallDuration: registry.RegisterHistogram(
			"native_call_duration_seconds",
			"Latency of native calls",
			nil,
			DurationBuckets,
		),
	}
}

// Registry returns the registry the metrics are registered in.
func (m *QuietMetrics) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveCall records one native call to symbol.
func (m *QuietMetrics) ObserveCall(symbol string, d time.Duration) {
	if m == nil {
		return
	}
	m.registry.RegisterCounter("native_calls_total", "Native calls issued", Labels{"symbol": symbol}).Inc()
	m.CallDuration.ObserveDuration(d)
}

// CallFailed records a negative status in the given space.
func (m *QuietMetrics) CallFailed(symbol, space string) {
	if m == nil {
		return
	}
	m.registry.RegisterCounter(
		"native_failures_total",
		"Native calls that returned a failure status",
		Labels{"symbol": symbol, "space": space},
	).Inc()
}

// Missing records a call to an unbound entry point.
func (m *QuietMetrics) Missing() {
	if m == nil {
		return
	}
	m.MissingEntryPoints.Inc()
}

// Write records a mode write.
func (m *QuietMetrics) Write() {
	if m == nil {
		return
	}
	m.ModeWrites.Inc()
}

// Noop records a skipped toggle.
func (m *QuietMetrics) Noop() {
	if m == nil {
		return
	}
	m.ModeNoops.Inc()
}

// VerificationFailed records a failed verification.
func (m *QuietMetrics) VerificationFailed() {
	if m == nil {
		return
	}
	m.VerificationFailures.Inc()
}
