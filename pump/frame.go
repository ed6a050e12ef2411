package pump

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	stx = 0x02
	etx = 0x03

	// frameOverhead is the length byte's accounting for everything after
	// the payload plus itself: length, 2 CRC bytes, ETX.
	frameOverhead = 4
)

// crc16 computes the CCITT CRC (polynomial 0x1021, initial value 0) that
// safe-mode frames carry over their payload bytes.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// EncodeRequest frames "{address}{command}" for the wire. Basic mode
// appends a carriage return; safe mode wraps the payload in STX, length,
// CRC-16 and ETX.
func EncodeRequest(address int, command string, safe bool) []byte {
	payload := []byte(strconv.Itoa(address) + command)
	if !safe {
		return append(payload, '\r')
	}

	frame := make([]byte, 0, len(payload)+frameOverhead+1)
	frame = append(frame, stx, byte(len(payload)+frameOverhead))
	frame = append(frame, payload...)
	sum := crc16(payload)
	frame = append(frame, byte(sum>>8), byte(sum))
	frame = append(frame, etx)
	return frame
}

// readReply reads one STX/ETX-framed reply payload from the transport. In
// safe mode the frame's length byte drives the read and the CRC is
// verified; in basic mode bytes accumulate until ETX.
func readReply(t Transport, safe bool, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)

	// Skip noise until start of frame.
	for {
		b, err := readByteDeadline(t, deadline)
		if err != nil {
			return "", err
		}
		if b == stx {
			break
		}
	}

	if !safe {
		var payload []byte
		for {
			b, err := readByteDeadline(t, deadline)
			if err != nil {
				return "", err
			}
			if b == etx {
				return string(payload), nil
			}
			payload = append(payload, b)
		}
	}

	length, err := readByteDeadline(t, deadline)
	if err != nil {
		return "", err
	}
	if length <= frameOverhead-1 {
		return "", fmt.Errorf("%w: frame length %d", ErrMalformedReply, length)
	}
	body := make([]byte, int(length)-1)
	for i := range body {
		body[i], err = readByteDeadline(t, deadline)
		if err != nil {
			return "", err
		}
	}
	if body[len(body)-1] != etx {
		return "", fmt.Errorf("%w: missing ETX", ErrMalformedReply)
	}

	payload := body[:len(body)-3]
	got := uint16(body[len(body)-3])<<8 | uint16(body[len(body)-2])
	if want := crc16(payload); got != want {
		return "", &ChecksumError{Want: want, Got: got}
	}
	return string(payload), nil
}

func readByteDeadline(t Transport, deadline time.Time) (byte, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, ErrReadTimeout
	}
	return t.ReadByte(remaining)
}

// ParseReply splits a reply payload into pump status and result data.
// Device alarms and command rejections come back as typed errors.
func ParseReply(address int, payload string) (Status, string, error) {
	if len(payload) < 3 {
		return StatusUnknown, "", fmt.Errorf("%w: %q", ErrMalformedReply, payload)
	}

	got, err := strconv.Atoi(payload[:2])
	if err != nil {
		return StatusUnknown, "", fmt.Errorf("%w: address %q", ErrMalformedReply, payload[:2])
	}
	if got != address {
		return StatusUnknown, "", &AddressError{Want: address, Got: got}
	}

	if payload[2] == 'A' {
		if len(payload) < 5 || payload[3] != '?' {
			return StatusUnknown, "", fmt.Errorf("%w: alarm %q", ErrMalformedReply, payload)
		}
		code := payload[4]
		return StatusStopped, "", &AlarmError{Code: code, Description: alarmDescription(code)}
	}

	status, ok := statusChars[payload[2]]
	if !ok {
		return StatusUnknown, "", fmt.Errorf("%w: status %q", ErrMalformedReply, payload[2:3])
	}

	result := payload[3:]
	if len(result) > 0 && result[0] == '?' {
		code := result[1:]
		return status, "", &CommandRejectedError{Code: code, Description: commandErrorDescription(code)}
	}
	return status, result, nil
}

// formatFloat renders a float per the protocol limits: at most 4 digits
// plus one decimal point, at most 3 decimals.
func formatFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}
