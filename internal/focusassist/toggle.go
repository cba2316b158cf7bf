package focusassist

import (
	"context"
	"fmt"
	"time"

	"winquiet/internal/nativecall"
	"winquiet/internal/wnf"
)

// ToggleOptions controls SetMode.
type ToggleOptions struct {
	// Verify re-reads the state after the settle delay and fails if the
	// write had no effect.
	Verify bool
}

// DefaultToggleOptions verifies.
func DefaultToggleOptions() ToggleOptions {
	return ToggleOptions{Verify: true}
}

// Toggler turns focus assist on or off.
//
// Concurrent SetMode calls are not serialized; the OS is the only shared
// state and interleaved toggles may observe each other's writes.
type Toggler struct {
	reader *Reader
	writer *Writer
	o      options
}

// NewToggler returns a Toggler issuing calls through gw.
func NewToggler(gw nativecall.Gateway, opts ...Option) *Toggler {
	return &Toggler{
		reader: NewReader(gw, opts...),
		writer: NewWriter(gw, opts...),
		o:      buildOptions(opts),
	}
}

// Reader returns the Reader used for the pre- and post-write queries.
func (t *Toggler) Reader() *Reader {
	return t.reader
}

// SettleDelay returns the wait between a write and its verification.
func (t *Toggler) SettleDelay() time.Duration {
	return t.o.settle
}

// SetMode enables or disables focus assist.
//
// Nothing is written when the current state already satisfies the request
// (enabled means any positive level). Otherwise PayloadEnable or
// PayloadDisable is written to QuietMomentShellModeChanged. With Verify, the
// state is read again after the settle delay; if it did not change as
// requested the call fails with a *VerificationFailedError. There is exactly
// one verify cycle and no retry.
func (t *Toggler) SetMode(ctx context.Context, enable bool, opts ToggleOptions) error {
	log := t.o.log.WithContext(ctx)
	strict := QueryOptions{StateError: true}

	current, err := t.reader.Query(ctx, strict)
	if err != nil {
		return fmt.Errorf("focusassist: read current state: %w", err)
	}
	if satisfied(enable, current.State) {
		t.o.metrics.Noop()
		log.Debug("focus assist already in requested mode", "enable", enable, "state", current.State.String())
		return nil
	}

	payload := wnf.PayloadDisable
	if enable {
		payload = wnf.PayloadEnable
	}
	if err := t.writer.Update(ctx, wnf.QuietMomentShellModeChanged, payload); err != nil {
		return err
	}
	t.o.metrics.Write()
	log.Info("focus assist mode written", "enable", enable, "previous", current.State.String())

	if !opts.Verify {
		return nil
	}

	// The settle wait is not interruptible once the write has been issued.
	time.Sleep(t.o.settle)

	after, err := t.reader.Query(ctx, strict)
	if err != nil {
		return fmt.Errorf("focusassist: verify mode change: %w", err)
	}
	if !satisfied(enable, after.State) {
		t.o.metrics.VerificationFailed()
		log.Warn("focus assist mode change not observed", "enable", enable, "state", after.State.String(), "settle", t.o.settle)
		return &VerificationFailedError{Enable: enable, Observed: after.State}
	}

	log.Debug("focus assist mode verified", "enable", enable, "state", after.State.String())
	return nil
}

func satisfied(enable bool, s State) bool {
	if enable {
		return s.Enabled()
	}
	return s == StateOff
}
