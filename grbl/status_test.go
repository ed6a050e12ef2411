package grbl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
)

func TestParseStatus_IdleReport(t *testing.T) {
	status, err := ParseStatus("<Idle|MPos:12.000000,-5.000000,0.000000|Bf:15,127|FS:0,0>")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, status.State)
	assert.Equal(t, deck.Coordinates{X: 12, Y: -5, Z: 0}, status.Position)
}

func TestParseStatus_States(t *testing.T) {
	tests := []struct {
		raw  string
		want State
	}{
		{"<Run|MPos:1.000,2.000,3.000|FS:500,0>", StateRun},
		{"<Home|MPos:0.000,0.000,0.000>", StateHome},
		{"<Hold:0|MPos:0.000,0.000,0.000>", StateHold},
		{"<Alarm|MPos:0.000,0.000,0.000>", StateAlarm},
		{"<Check|MPos:0.000,0.000,0.000>", StateCheck},
		{"<Door:1|MPos:0.000,0.000,0.000>", StateDoor},
	}
	for _, tt := range tests {
		status, err := ParseStatus(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, status.State, tt.raw)
	}
}

func TestParseStatus_WPosReport(t *testing.T) {
	status, err := ParseStatus("<Idle|WPos:-1.500,2.250,-3.000>")
	require.NoError(t, err)
	assert.Equal(t, deck.Coordinates{X: -1.5, Y: 2.25, Z: -3}, status.Position)
}

func TestParseStatus_UnknownStateToken(t *testing.T) {
	status, err := ParseStatus("<Jog|MPos:1.000,2.000,3.000>")
	require.NoError(t, err, "unrecognized states decode, they do not fail")
	assert.Equal(t, StateUnknown, status.State)
	assert.Equal(t, deck.Coordinates{X: 1, Y: 2, Z: 3}, status.Position)
}

func TestParseStatus_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"ok",
		"Idle|MPos:1,2,3",
		"<Idle|MPos:1.0,2.0>",
		"<Idle|MPos:a,b,c>",
	} {
		status, err := ParseStatus(raw)
		assert.ErrorIs(t, err, ErrUnparsableStatus, "raw=%q", raw)
		assert.Equal(t, StateUnknown, status.State, "raw=%q", raw)
		assert.Equal(t, raw, status.Raw)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Alarm", StateAlarm.String())
	assert.Equal(t, "Unknown", StateUnknown.String())
}
