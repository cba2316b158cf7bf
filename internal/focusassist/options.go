package focusassist

import (
	"time"

	"winquiet/internal/logging"
	"winquiet/internal/metrics"
)

// DefaultSettleDelay is the wait between a mode write and its verification.
// It was chosen empirically: shorter windows produce false verification
// failures on slower machines.
const DefaultSettleDelay = 100 * time.Millisecond

type options struct {
	log     *logging.Logger
	metrics *metrics.QuietMetrics
	settle  time.Duration
}

// Option configures a Reader, Writer, or Toggler.
type Option func(*options)

// WithLogger sets the logger. The default discards.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics sets the metrics sink. The default records nothing.
func WithMetrics(m *metrics.QuietMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.settle = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log:    logging.Discard(),
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.WithComponent("focusassist")
	return o
}
