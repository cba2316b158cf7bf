package focusassist

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"winquiet/internal/logging"
	"winquiet/internal/metrics"
	"winquiet/internal/nativecall"
	"winquiet/internal/nativecall/nativetest"
	"winquiet/internal/syserr"
	"winquiet/internal/wnf"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Reader
// =============================================================================

func TestQuery_TranslatesKnownStates(t *testing.T) {
	tests := []struct {
		raw  int32
		name string
	}{
		{-2, "NOT_SUPPORTED"},
		{-1, "FAILED"},
		{0, "OFF"},
		{1, "PRIORITY_ONLY"},
		{2, "ALARMS_ONLY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := nativetest.New()
			fake.SetFocusAssist(tt.raw)

			v, err := NewReader(fake).Query(context.Background(), DefaultQueryOptions())
			require.NoError(t, err)
			assert.Equal(t, State(tt.raw), v.State)
			assert.Equal(t, tt.name, v.Name)
			assert.Equal(t, tt.name, v.String())
		})
	}
}

func TestQuery_UnknownStatesPassThrough(t *testing.T) {
	for _, raw := range []int32{-100, -3, 3, 7, 1 << 20} {
		fake := nativetest.New()
		fake.SetFocusAssist(raw)

		v, err := NewReader(fake).Query(context.Background(), DefaultQueryOptions())
		require.NoError(t, err)
		assert.Equal(t, State(raw), v.State)
		assert.Empty(t, v.Name)
	}
}

func TestQuery_NoTranslate(t *testing.T) {
	fake := nativetest.New()
	fake.SetFocusAssist(2)

	v, err := NewReader(fake).Query(context.Background(), QueryOptions{Translate: false})
	require.NoError(t, err)
	assert.Equal(t, StateAlarmsOnly, v.State)
	assert.Empty(t, v.Name)
	assert.Equal(t, "2", v.String())
}

func TestQuery_StateError(t *testing.T) {
	tests := []struct {
		raw  int32
		want error
	}{
		{-2, ErrNotSupported},
		{-1, ErrUnexpectedState},
		{-7, ErrUnexpectedState},
	}

	for _, tt := range tests {
		fake := nativetest.New()
		fake.SetFocusAssist(tt.raw)
		r := NewReader(fake)

		_, err := r.Query(context.Background(), QueryOptions{Translate: true, StateError: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.want)

		var sae *StateAssertionError
		require.ErrorAs(t, err, &sae)
		assert.Equal(t, State(tt.raw), sae.State)

		// Observe semantics for the same state.
		v, err := r.Query(context.Background(), DefaultQueryOptions())
		require.NoError(t, err)
		assert.Equal(t, State(tt.raw), v.State)
	}
}

func TestQuery_SystemCallFailure(t *testing.T) {
	fake := nativetest.New()
	fake.SetQueryStatus(syserr.Status(0xC0000022))

	m := metrics.NewQuietMetrics(nil)
	_, err := NewReader(fake, WithMetrics(m)).Query(context.Background(), DefaultQueryOptions())
	require.Error(t, err)

	var sce *syserr.SystemCallError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, syserr.NTSTATUS, sce.Space)
	assert.Equal(t, "STATUS_ACCESS_DENIED", sce.Code)
	assert.Equal(t, "NtQueryWnfStateData", sce.Op)
	assert.Equal(t, uint64(1), m.Registry().CounterValue("native_failures_total",
		metrics.Labels{"symbol": "NtQueryWnfStateData", "space": "NTSTATUS"}))
}

func TestQuery_MissingEntryPoint(t *testing.T) {
	fake := nativetest.New()
	fake.SetMissing(false, "NtQueryWnfStateData")

	_, err := NewReader(fake).Query(context.Background(), DefaultQueryOptions())
	assert.ErrorIs(t, err, nativecall.ErrMissingEntryPoint)
}

func TestQuery_MissingEntryPointSilent(t *testing.T) {
	fake := nativetest.New()
	fake.SetMissing(true, "NtQueryWnfStateData")
	r := NewReader(fake)

	v, err := r.Query(context.Background(), DefaultQueryOptions())
	require.NoError(t, err)
	assert.Equal(t, StateNotSupported, v.State)
	assert.Equal(t, "NOT_SUPPORTED", v.Name)

	_, err = r.Query(context.Background(), QueryOptions{StateError: true})
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestQuery_CanceledContext(t *testing.T) {
	fake := nativetest.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(fake).QueryState(ctx, wnf.QuietHoursProfileChanged)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fake.Queries())
}

// =============================================================================
// Writer
// =============================================================================

func TestUpdateState_ValidatesLength(t *testing.T) {
	fake := nativetest.New()
	w := NewWriter(fake)

	for _, p := range [][]byte{nil, {0}, {0, 0, 0}, {0, 0, 0, 0, 0}} {
		err := w.UpdateState(context.Background(), wnf.QuietMomentShellModeChanged, p)
		assert.ErrorIs(t, err, wnf.ErrInvalidPayload)
	}
	assert.Empty(t, fake.Writes())
}

func TestUpdateState_ArbitraryPayload(t *testing.T) {
	fake := nativetest.New()
	p, err := wnf.NewPayload([]int{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, NewWriter(fake).Update(context.Background(), wnf.QuietMomentShellModeChanged, p))

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, wnf.QuietMomentShellModeChanged, writes[0].Name)
	assert.Equal(t, []byte{1, 2, 3, 4}, writes[0].Data)
}

func TestUpdateState_SystemCallFailure(t *testing.T) {
	fake := nativetest.New()
	fake.SetUpdateStatus(syserr.Status(0xC000000D))

	err := NewWriter(fake).Update(context.Background(), wnf.QuietMomentShellModeChanged, wnf.PayloadEnable)
	var sce *syserr.SystemCallError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, syserr.NTSTATUS, sce.Space)
	assert.Equal(t, "STATUS_INVALID_PARAMETER", sce.Code)
}

func TestUpdateState_MissingAlwaysFails(t *testing.T) {
	fake := nativetest.New()
	fake.SetMissing(true, "NtUpdateWnfStateData")

	err := NewWriter(fake).Update(context.Background(), wnf.QuietMomentShellModeChanged, wnf.PayloadEnable)
	assert.ErrorIs(t, err, nativecall.ErrMissingEntryPoint)
}

// =============================================================================
// Toggler
// =============================================================================

func newToggler(fake *nativetest.Fake, opts ...Option) *Toggler {
	return NewToggler(fake, append([]Option{WithSettleDelay(0)}, opts...)...)
}

func TestSetMode_Idempotent(t *testing.T) {
	fake := nativetest.New()
	m := metrics.NewQuietMetrics(nil)
	tg := newToggler(fake, WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, tg.SetMode(ctx, true, DefaultToggleOptions()))
	require.NoError(t, tg.SetMode(ctx, true, DefaultToggleOptions()))

	assert.Len(t, fake.Writes(), 1)
	assert.Equal(t, uint64(1), m.ModeWrites.Value())
	assert.Equal(t, uint64(1), m.ModeNoops.Value())
}

func TestSetMode_AnyPositiveLevelCountsAsEnabled(t *testing.T) {
	fake := nativetest.New()
	fake.SetFocusAssist(2)

	require.NoError(t, newToggler(fake).SetMode(context.Background(), true, DefaultToggleOptions()))
	assert.Empty(t, fake.Writes())
}

func TestSetMode_DisableWhenOffIsNoop(t *testing.T) {
	fake := nativetest.New()

	require.NoError(t, newToggler(fake).SetMode(context.Background(), false, DefaultToggleOptions()))
	assert.Empty(t, fake.Writes())
}

func TestSetMode_Symmetry(t *testing.T) {
	ctx := context.Background()

	fake := nativetest.New()
	tg := newToggler(fake)
	require.NoError(t, tg.SetMode(ctx, true, DefaultToggleOptions()))
	require.NoError(t, tg.SetMode(ctx, false, DefaultToggleOptions()))
	assert.Equal(t, int32(0), fake.FocusAssist())

	fake = nativetest.New()
	tg = newToggler(fake)
	require.NoError(t, tg.SetMode(ctx, false, DefaultToggleOptions()))
	require.NoError(t, tg.SetMode(ctx, true, DefaultToggleOptions()))
	assert.Greater(t, fake.FocusAssist(), int32(0))
}

func TestSetMode_WritesConfirmedPayloads(t *testing.T) {
	ctx := context.Background()
	fake := nativetest.New()
	tg := newToggler(fake)

	require.NoError(t, tg.SetMode(ctx, true, DefaultToggleOptions()))
	require.NoError(t, tg.SetMode(ctx, false, DefaultToggleOptions()))

	writes := fake.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, wnf.QuietMomentShellModeChanged, writes[0].Name)
	assert.Equal(t, wnf.PayloadEnable.Bytes(), writes[0].Data)
	assert.Equal(t, wnf.PayloadDisable.Bytes(), writes[1].Data)
}

func TestSetMode_VerificationFailed(t *testing.T) {
	for _, enable := range []bool{true, false} {
		fake := nativetest.New()
		if !enable {
			fake.SetFocusAssist(1)
		}
		fake.SetStuck(true)
		m := metrics.NewQuietMetrics(nil)
		tg := newToggler(fake, WithMetrics(m))

		err := tg.SetMode(context.Background(), enable, DefaultToggleOptions())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVerificationFailed)

		var vfe *VerificationFailedError
		require.ErrorAs(t, err, &vfe)
		assert.Equal(t, enable, vfe.Enable)
		assert.Equal(t, uint64(1), m.VerificationFailures.Value())

		// Same mismatch without verification returns normally.
		require.NoError(t, tg.SetMode(context.Background(), enable, ToggleOptions{Verify: false}))
	}
}

func TestSetMode_NoVerifyDoesNotRequery(t *testing.T) {
	fake := nativetest.New()
	require.NoError(t, newToggler(fake).SetMode(context.Background(), true, ToggleOptions{Verify: false}))
	assert.Equal(t, 1, fake.Queries())
	assert.Len(t, fake.Writes(), 1)
}

func TestSetMode_WaitsSettleDelay(t *testing.T) {
	fake := nativetest.New()
	tg := NewToggler(fake, WithSettleDelay(20*time.Millisecond))
	assert.Equal(t, 20*time.Millisecond, tg.SettleDelay())

	start := time.Now()
	require.NoError(t, tg.SetMode(context.Background(), true, DefaultToggleOptions()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 2, fake.Queries())
}

func TestSetMode_DefaultSettleDelay(t *testing.T) {
	assert.Equal(t, DefaultSettleDelay, NewToggler(nativetest.New()).SettleDelay())
	assert.Equal(t, DefaultSettleDelay, NewToggler(nativetest.New(), WithSettleDelay(-1)).SettleDelay())
}

func TestSetMode_MissingWriteEntryPoint(t *testing.T) {
	fake := nativetest.New()
	fake.SetMissing(false, "NtUpdateWnfStateData")

	err := newToggler(fake).SetMode(context.Background(), true, DefaultToggleOptions())
	assert.ErrorIs(t, err, nativecall.ErrMissingEntryPoint)
	assert.Empty(t, fake.Writes())
}

func TestSetMode_NotSupportedState(t *testing.T) {
	fake := nativetest.New()
	fake.SetFocusAssist(-2)

	err := newToggler(fake).SetMode(context.Background(), true, DefaultToggleOptions())
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Empty(t, fake.Writes())
}

func TestSetMode_PropagatesQueryFailure(t *testing.T) {
	fake := nativetest.New()
	fake.SetQueryStatus(syserr.Status(0xC0000001))

	err := newToggler(fake).SetMode(context.Background(), false, DefaultToggleOptions())
	assert.ErrorIs(t, err, syserr.ErrSystemCall)
}

func TestSetMode_LogsOperationID(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&logging.Config{Level: logging.LevelDebug, Writer: &buf})
	require.NoError(t, err)

	ctx := logging.ContextWithOperationID(context.Background(), "op-123")
	require.NoError(t, newToggler(nativetest.New(), WithLogger(l)).SetMode(ctx, true, DefaultToggleOptions()))

	assert.Contains(t, buf.String(), "op_id=op-123")
	assert.Contains(t, buf.String(), "focus assist mode written")
}

func TestSetMode_Concurrent(t *testing.T) {
	fake := nativetest.New()
	tg := newToggler(fake)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tg.SetMode(context.Background(), true, ToggleOptions{Verify: true})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		// Interleaved togglers all want the same mode, so no one can see the
		// other undo its write.
		require.NoError(t, err)
	}
	assert.True(t, State(fake.FocusAssist()).Enabled())
	assert.NotEmpty(t, fake.Writes())
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "OFF", StateOff.String())
	assert.Equal(t, "9", State(9).String())
	assert.False(t, StateOff.Enabled())
	assert.True(t, StatePriorityOnly.Enabled())
	assert.False(t, StateNotSupported.Enabled())

	err := &VerificationFailedError{Enable: true, Observed: StateOff}
	assert.Contains(t, err.Error(), "wanted on, observed OFF")
	assert.True(t, errors.Is(err, ErrVerificationFailed))
}
