package quiet

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"winquiet/internal/config"
	"winquiet/internal/focusassist"
	"winquiet/internal/logging"
	"winquiet/internal/metrics"
	"winquiet/internal/nativecall/nativetest"
	"winquiet/internal/notifystate"
	"winquiet/internal/syserr"
	"winquiet/internal/wnf"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(fake *nativetest.Fake, opts ...Option) *Client {
	return NewWithGateway(fake, append([]Option{WithSettleDelay(0)}, opts...)...)
}

func TestQueryUserNotificationState(t *testing.T) {
	fake := nativetest.New()
	fake.SetNotificationState(4)
	c := newTestClient(fake)

	v, err := c.QueryUserNotificationState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notifystate.PresentationMode, v.State)
	assert.Equal(t, "QUNS_PRESENTATION_MODE", v.Name)

	v, err = c.QueryUserNotificationState(context.Background(), NotificationRaw())
	require.NoError(t, err)
	assert.Equal(t, notifystate.PresentationMode, v.State)
	assert.Empty(t, v.Name)
}

func TestQueryUserNotificationState_Error(t *testing.T) {
	fake := nativetest.New()
	fake.SetNotificationHRESULT(syserr.Status(0x80070005))

	_, err := newTestClient(fake).QueryUserNotificationState(context.Background())
	require.ErrorIs(t, err, ErrSystemCall)
	var sce *syserr.SystemCallError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, "E_ACCESSDENIED", sce.Code)
}

func TestIsFullscreenAppRunning(t *testing.T) {
	fake := nativetest.New()
	c := newTestClient(fake)
	assert.False(t, c.IsFullscreenAppRunning(context.Background()))

	fake.SetNotificationState(7)
	assert.True(t, c.IsFullscreenAppRunning(context.Background()))

	fake.SetMissing(false, "SHQueryUserNotificationState")
	assert.False(t, c.IsFullscreenAppRunning(context.Background()))
}

func TestQueryFocusAssistState(t *testing.T) {
	fake := nativetest.New()
	fake.SetFocusAssist(2)
	c := newTestClient(fake)

	v, err := c.QueryFocusAssistState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, focusassist.StateAlarmsOnly, v.State)
	assert.Equal(t, "ALARMS_ONLY", v.Name)

	v, err = c.QueryFocusAssistState(context.Background(), FocusAssistRaw())
	require.NoError(t, err)
	assert.Empty(t, v.Name)

	fake.SetFocusAssist(-2)
	_, err = c.QueryFocusAssistState(context.Background(), FocusAssistStrict())
	assert.ErrorIs(t, err, ErrNotSupported)

	fake.SetFocusAssist(-9)
	_, err = c.QueryFocusAssistState(context.Background(), FocusAssistStrict())
	assert.ErrorIs(t, err, ErrUnexpectedState)
}

func TestFocusAssist_OnOff(t *testing.T) {
	fake := nativetest.New()
	m := metrics.NewQuietMetrics(nil)
	c := newTestClient(fake, WithMetrics(m))

	require.NoError(t, c.FocusAssist(context.Background(), true))
	assert.Equal(t, int32(1), fake.FocusAssist())

	require.NoError(t, c.FocusAssist(context.Background(), true))
	require.Len(t, fake.Writes(), 1)
	assert.Equal(t, wnf.QuietMomentShellModeChanged, fake.Writes()[0].Name)

	require.NoError(t, c.FocusAssist(context.Background(), false))
	assert.Equal(t, int32(0), fake.FocusAssist())
	assert.Len(t, fake.Writes(), 2)

	assert.Equal(t, uint64(2), m.Registry().CounterValue("mode_writes_total", nil))
	assert.Equal(t, uint64(1), m.Registry().CounterValue("mode_noops_total", nil))
	assert.Same(t, m, c.Metrics())
}

func TestFocusAssist_Verification(t *testing.T) {
	fake := nativetest.New()
	fake.SetStuck(true)
	c := newTestClient(fake)

	err := c.FocusAssist(context.Background(), true)
	require.ErrorIs(t, err, ErrVerificationFailed)
	var vfe *focusassist.VerificationFailedError
	require.ErrorAs(t, err, &vfe)
	assert.True(t, vfe.Enable)

	assert.NoError(t, c.FocusAssist(context.Background(), true, WithoutVerify()))
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FocusAssist.SettleDelayMs = 5
	cfg.FocusAssist.CheckSuccess = false

	fake := nativetest.New()
	fake.SetStuck(true)
	c := NewWithGateway(fake, WithConfig(cfg))
	assert.Equal(t, 5*time.Millisecond, c.SettleDelay())

	// CheckSuccess=false disables verification by default.
	assert.NoError(t, c.FocusAssist(context.Background(), true))

	c = NewWithGateway(fake, WithConfig(cfg), WithSettleDelay(0))
	assert.Equal(t, time.Duration(0), c.SettleDelay())

	c = NewWithGateway(fake, WithConfig(nil))
	assert.Equal(t, focusassist.DefaultSettleDelay, c.SettleDelay())
}

func TestUnavailable(t *testing.T) {
	fake := nativetest.New()
	fake.SetMissing(true, "NtUpdateWnfStateData")
	c := newTestClient(fake)

	missing := c.Unavailable()
	require.Len(t, missing, 1)
	assert.Equal(t, "NtUpdateWnfStateData", missing[0].Symbol)

	err := c.FocusAssist(context.Background(), true)
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestOperationIDLogged(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatJSON,
		Writer: &buf,
	})
	require.NoError(t, err)

	c := newTestClient(nativetest.New(), WithLogger(log))
	ctx := logging.ContextWithOperationID(context.Background(), "op-123")
	require.NoError(t, c.FocusAssist(ctx, true))

	assert.Contains(t, buf.String(), `"op_id":"op-123"`)
	assert.Contains(t, buf.String(), `"component":"quiet"`)
}

func TestErrorsReexported(t *testing.T) {
	assert.True(t, errors.Is(&focusassist.StateAssertionError{State: -2}, ErrNotSupported))
	assert.True(t, errors.Is(syserr.Check(syserr.NTSTATUS, syserr.Status(0xC0000022), "op"), ErrSystemCall))
}

func TestReadWriteState(t *testing.T) {
	fake := nativetest.New()
	c := newTestClient(fake)

	require.NoError(t, c.WriteState(context.Background(), wnf.QuietMomentShellModeChanged, wnf.Payload{0, 0, 1, 0}))
	s, err := c.ReadState(context.Background(), wnf.QuietHoursProfileChanged)
	require.NoError(t, err)
	assert.Equal(t, focusassist.StatePriorityOnly, s)

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, []byte{0, 0, 1, 0}, writes[0].Data)
}
