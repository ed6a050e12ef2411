package pump

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC16_CheckValue(t *testing.T) {
	// Standard CCITT/XMODEM check value.
	assert.Equal(t, uint16(0x31C3), crc16([]byte("123456789")))
	assert.Equal(t, uint16(0), crc16(nil))
}

func TestEncodeRequest_Basic(t *testing.T) {
	frame := EncodeRequest(0, "RUN", false)
	assert.Equal(t, []byte("0RUN\r"), frame)
}

func TestEncodeRequest_SafeFraming(t *testing.T) {
	frame := EncodeRequest(0, "RUN", true)
	payload := []byte("0RUN")

	require.Len(t, frame, len(payload)+5)
	assert.Equal(t, byte(stx), frame[0], "frame starts with STX")
	assert.Equal(t, byte(etx), frame[len(frame)-1], "frame ends with ETX")
	assert.Equal(t, byte(len(payload)+4), frame[1],
		"length byte counts payload plus length, CRC and ETX")
	assert.Equal(t, payload, frame[2:2+len(payload)])

	sum := crc16(payload)
	assert.Equal(t, byte(sum>>8), frame[len(frame)-3], "CRC high byte precedes ETX")
	assert.Equal(t, byte(sum), frame[len(frame)-2], "CRC low byte precedes ETX")
}

func TestParseReply_StatusAndResult(t *testing.T) {
	status, result, err := ParseReply(0, "00S")
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, status)
	assert.Empty(t, result)

	status, result, err = ParseReply(0, "00I1.234W0UL")
	require.NoError(t, err)
	assert.Equal(t, StatusInfusing, status)
	assert.Equal(t, "1.234W0UL", result)
}

func TestParseReply_AddressMismatch(t *testing.T) {
	_, _, err := ParseReply(0, "01S")
	var addrErr *AddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, 0, addrErr.Want)
	assert.Equal(t, 1, addrErr.Got)
}

func TestParseReply_Alarm(t *testing.T) {
	status, _, err := ParseReply(0, "00A?S")
	var alarm *AlarmError
	require.ErrorAs(t, err, &alarm)
	assert.Equal(t, byte('S'), alarm.Code)
	assert.Contains(t, alarm.Description, "stalled")
	assert.Equal(t, StatusStopped, status)
}

func TestParseReply_CommandRejected(t *testing.T) {
	_, _, err := ParseReply(0, "00S?OOR")
	var rejected *CommandRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "OOR", rejected.Code)
	assert.Contains(t, rejected.Description, "out of range")
}

func TestParseReply_Malformed(t *testing.T) {
	for _, payload := range []string{"", "0", "00", "xxS", "00A?", "00Z"} {
		_, _, err := ParseReply(0, payload)
		assert.ErrorIs(t, err, ErrMalformedReply, "payload=%q", payload)
	}
}

func TestReadReply_SafeChecksumVerified(t *testing.T) {
	sim := NewSimTransport(0, true)
	require.NoError(t, sim.Write(EncodeRequest(0, "", true)))

	payload, err := readReply(sim, true, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "00A?R", payload, "fresh pump reports the power-reset alarm")
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "200", formatFloat(200))
	assert.Equal(t, "0.5", formatFloat(0.5))
	assert.Equal(t, "12.34", formatFloat(12.3446), "truncated to the 5-character field")
}
