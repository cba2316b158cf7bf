package focusassist

import (
	"context"
	"fmt"
	"time"

	"winquiet/internal/nativecall"
	"winquiet/internal/syserr"
	"winquiet/internal/wnf"
)

// Writer publishes raw data to WNF states.
type Writer struct {
	gw nativecall.Gateway
	o  options
}

// NewWriter returns a Writer issuing calls through gw.
func NewWriter(gw nativecall.Gateway, opts ...Option) *Writer {
	return &Writer{gw: gw, o: buildOptions(opts)}
}

// UpdateState writes payload to topic. payload must be exactly
// wnf.PayloadSize bytes.
//
// Success only means the call did not fail; the OS does not report what, if
// anything, changed. Missing entry points always fail, even with SilentFail.
func (w *Writer) UpdateState(ctx context.Context, topic wnf.StateName, payload []byte) error {
	if len(payload) != wnf.PayloadSize {
		return fmt.Errorf("%w: want %d bytes, got %d", wnf.ErrInvalidPayload, wnf.PayloadSize, len(payload))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log := w.o.log.WithContext(ctx)
	sig := nativecall.SigUpdateWnfStateData

	start := time.Now()
	status, err := w.gw.UpdateWnfStateData(topic, payload)
	if err != nil {
		if _, ok := nativecall.AsMissing(err); ok {
			w.o.metrics.Missing()
		}
		return fmt.Errorf("focusassist: update %s: %w", topic, err)
	}
	w.o.metrics.ObserveCall(sig.Symbol, time.Since(start))

	if err := syserr.Check(sig.Result.Space(), status, sig.Symbol); err != nil {
		w.o.metrics.CallFailed(sig.Symbol, sig.Result.Space().String())
		log.Warn("state update failed", "topic", topic.String(), "error", err)
		return fmt.Errorf("focusassist: update %s: %w", topic, err)
	}

	log.Debug("state updated", "topic", topic.String(), "bytes", len(payload))
	return nil
}

// Update writes a typed payload to topic.
func (w *Writer) Update(ctx context.Context, topic wnf.StateName, p wnf.Payload) error {
	return w.UpdateState(ctx, topic, p.Bytes())
}
