package focusassist

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"winquiet/internal/nativecall"
	"winquiet/internal/syserr"
	"winquiet/internal/wnf"
)

// stateSize is the width of the level published on QuietHoursProfileChanged:
// one native DWORD.
const stateSize = 4

// QueryOptions controls how a query result is reported.
type QueryOptions struct {
	// Translate maps known states to their names.
	Translate bool
	// StateError turns negative states into a *StateAssertionError.
	StateError bool
}

// DefaultQueryOptions translates and does not assert.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Translate: true}
}

// Reader reads focus assist state from the OS.
type Reader struct {
	gw nativecall.Gateway
	o  options
}

// NewReader returns a Reader issuing calls through gw.
func NewReader(gw nativecall.Gateway, opts ...Option) *Reader {
	return &Reader{gw: gw, o: buildOptions(opts)}
}

// QueryState reads topic and decodes it as a signed 32-bit state.
//
// A negative NTSTATUS fails with a *syserr.SystemCallError. A missing entry
// point fails with a *nativecall.MissingEntryPointError unless the gateway
// was opened with SilentFail, in which case StateNotSupported is returned.
func (r *Reader) QueryState(ctx context.Context, topic wnf.StateName) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFailed, err
	}
	log := r.o.log.WithContext(ctx)
	sig := nativecall.SigQueryWnfStateData

	buf := make([]byte, stateSize)
	start := time.Now()
	size, status, err := r.gw.QueryWnfStateData(topic, buf)
	if err != nil {
		if me, ok := nativecall.AsMissing(err); ok {
			r.o.metrics.Missing()
			if me.Silent {
				log.Debug("entry point missing, reporting not supported", "symbol", me.Symbol)
				return StateNotSupported, nil
			}
		}
		return StateFailed, fmt.Errorf("focusassist: query %s: %w", topic, err)
	}
	r.o.metrics.ObserveCall(sig.Symbol, time.Since(start))

	if err := syserr.Check(sig.Result.Space(), status, sig.Symbol); err != nil {
		r.o.metrics.CallFailed(sig.Symbol, sig.Result.Space().String())
		log.Warn("state query failed", "topic", topic.String(), "error", err)
		return StateFailed, fmt.Errorf("focusassist: query %s: %w", topic, err)
	}

	state := State(int32(binary.LittleEndian.Uint32(buf)))
	log.Debug("state queried", "topic", topic.String(), "state", int32(state), "size", size)
	return state, nil
}

// Query reads the active quiet hours level.
func (r *Reader) Query(ctx context.Context, opts QueryOptions) (Value, error) {
	state, err := r.QueryState(ctx, wnf.QuietHoursProfileChanged)
	if err != nil {
		return Value{State: state}, err
	}
	if opts.StateError && state < 0 {
		return Value{State: state}, &StateAssertionError{State: state}
	}
	return translate(state, opts.Translate), nil
}
