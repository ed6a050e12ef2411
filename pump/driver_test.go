package pump

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPump(t *testing.T, opts ...Option) (*Pump, *SimTransport) {
	t.Helper()
	opts = append([]Option{
		WithReadTimeout(10 * time.Millisecond),
		WithPollInterval(time.Millisecond),
		WithRunTimeout(time.Second),
	}, opts...)
	cfg, err := NewConfig("sim", 26.7, opts...)
	require.NoError(t, err)

	sim := NewSimTransport(cfg.Address(), cfg.SafeMode())
	return NewPump(cfg, sim), sim
}

func TestPump_ConnectProgramsSyringe(t *testing.T) {
	p, sim := testPump(t)
	require.NoError(t, p.Connect())

	requests := sim.Requests()
	assert.Contains(t, requests, "0DIA26.7")
	assert.Contains(t, requests, "0VOLUL")
}

func TestPump_ConnectAbsorbsPowerResetAlarm(t *testing.T) {
	p, _ := testPump(t)
	require.NoError(t, p.Connect(), "the reset alarm on first contact is expected")

	status, err := p.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, status)
	assert.Equal(t, uint64(1), p.Metrics().AlarmCount.Load())
}

func TestPump_WithdrawReportsMovedVolume(t *testing.T) {
	p, sim := testPump(t)
	require.NoError(t, p.Connect())

	moved, err := p.Withdraw(200, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 200.0, moved)

	requests := sim.Requests()
	assert.Contains(t, requests, "0DIRWDR")
	assert.Contains(t, requests, "0RAT0.5MM")
	assert.Contains(t, requests, "0VOL200")
	assert.Contains(t, requests, "0RUN")
	assert.Contains(t, requests, "0DIS")
	assert.Contains(t, requests, "0CLDWDR", "counters are cleared after each operation")
}

func TestPump_InfuseThenCountersCleared(t *testing.T) {
	p, _ := testPump(t)
	require.NoError(t, p.Connect())

	moved, err := p.Infuse(150.5, 1)
	require.NoError(t, err)
	assert.Equal(t, 150.5, moved)

	infused, withdrawn, err := p.Dispensed()
	require.NoError(t, err)
	assert.Zero(t, infused, "no programmed state survives between operations")
	assert.Zero(t, withdrawn)
}

func TestPump_ArgumentValidation(t *testing.T) {
	p, _ := testPump(t)
	require.NoError(t, p.Connect())

	_, err := p.Withdraw(0, 0.5)
	assert.Error(t, err)

	_, err = p.Withdraw(10000, 0.5)
	assert.ErrorIs(t, err, ErrVolumeTooLarge)

	_, err = p.Withdraw(100, 0)
	assert.Error(t, err)
}

func TestPump_MaxRateEnforced(t *testing.T) {
	p, _ := testPump(t, WithMaxRate(2))
	require.NoError(t, p.Connect())

	_, err := p.Infuse(100, 2.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestPump_BasicModeRoundTrip(t *testing.T) {
	p, sim := testPump(t, WithSafeMode(false))
	require.NoError(t, p.Connect())

	moved, err := p.Withdraw(50, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 50.0, moved)
	assert.Contains(t, sim.Requests(), "0VOL50")
}

func TestPump_NotConnected(t *testing.T) {
	p, _ := testPump(t)

	_, err := p.Status()
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = p.Infuse(10, 0.5)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPump_CloseRejectsFurtherRequests(t *testing.T) {
	p, _ := testPump(t)
	require.NoError(t, p.Connect())
	require.NoError(t, p.Close())

	_, err := p.Status()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, p.Close(), "closing twice is harmless")
}

func TestConfig_Validation(t *testing.T) {
	_, err := NewConfig("sim", 0)
	assert.Error(t, err, "diameter must be positive")

	_, err = NewConfig("sim", 26.7, WithAddress(100))
	assert.Error(t, err)

	_, err = NewConfig("sim", 26.7, WithAddress(99))
	assert.NoError(t, err)
}
