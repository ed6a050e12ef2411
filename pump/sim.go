package pump

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SimTransport is an in-memory pump for offline use and tests. It decodes
// the frames it receives, models direction, rate, volume and the dispensed
// counters, and answers with properly framed replies. A fresh simulator
// reports the power-reset alarm on first contact, as real hardware does.
type SimTransport struct {
	mu     sync.Mutex
	addr   int
	safe   bool
	queue  []byte
	closed bool

	alarm     byte
	diameter  float64
	direction Direction
	rate      float64
	volume    float64
	units     string
	infused   float64
	withdrawn float64

	// runningPolls is how many status queries still report the plunger
	// moving after a RUN.
	runningPolls int

	// requests records every decoded request payload, oldest first.
	requests []string
}

var _ Transport = (*SimTransport)(nil)

// NewSimTransport creates a simulated pump at the given bus address.
// safe selects whether it expects and emits CRC-framed traffic.
func NewSimTransport(addr int, safe bool) *SimTransport {
	return &SimTransport{
		addr:  addr,
		safe:  safe,
		alarm: alarmResetCode,
		units: "UL",
	}
}

// Requests returns every decoded request payload received so far.
func (t *SimTransport) Requests() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.requests))
	copy(out, t.requests)
	return out
}

func (t *SimTransport) Write(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrNotConnected
	}

	payload, err := t.decodeRequest(p)
	if err != nil {
		return err
	}
	t.requests = append(t.requests, payload)

	command := strings.TrimPrefix(payload, strconv.Itoa(t.addr))
	t.reply(t.handle(command))
	return nil
}

func (t *SimTransport) ReadByte(timeout time.Duration) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, ErrNotConnected
	}
	if len(t.queue) == 0 {
		return 0, ErrReadTimeout
	}
	b := t.queue[0]
	t.queue = t.queue[1:]
	return b, nil
}

func (t *SimTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *SimTransport) decodeRequest(p []byte) (string, error) {
	if !t.safe {
		return strings.TrimSuffix(string(p), "\r"), nil
	}
	if len(p) < frameOverhead+1 || p[0] != stx || p[len(p)-1] != etx {
		return "", fmt.Errorf("%w: request framing", ErrMalformedReply)
	}
	payload := p[2 : len(p)-3]
	got := uint16(p[len(p)-3])<<8 | uint16(p[len(p)-2])
	if want := crc16(payload); got != want {
		return "", &ChecksumError{Want: want, Got: got}
	}
	return string(payload), nil
}

// handle mutates the model and returns the reply's result data.
func (t *SimTransport) handle(command string) string {
	switch {
	case command == "":
		// Bare status query.
		return ""
	case command == "RUN":
		switch t.direction {
		case DirectionWithdraw:
			t.withdrawn += t.volume
		default:
			t.infused += t.volume
		}
		t.runningPolls = 1
		return ""
	case command == "STP":
		t.runningPolls = 0
		return ""
	case command == "DIS":
		return fmt.Sprintf("I%sW%s%s",
			formatFloat(t.infused), formatFloat(t.withdrawn), t.units)
	case command == "CLDINF":
		t.infused = 0
		return ""
	case command == "CLDWDR":
		t.withdrawn = 0
		return ""
	case command == "DIRINF":
		t.direction = DirectionInfuse
		return ""
	case command == "DIRWDR":
		t.direction = DirectionWithdraw
		return ""
	case command == "VOLUL" || command == "VOLML":
		t.units = command[3:]
		return ""
	case strings.HasPrefix(command, "DIA"):
		t.diameter, _ = strconv.ParseFloat(command[3:], 64)
		return ""
	case strings.HasPrefix(command, "RAT"):
		value := strings.TrimSuffix(command[3:], "MM")
		t.rate, _ = strconv.ParseFloat(value, 64)
		return ""
	case strings.HasPrefix(command, "VOL"):
		t.volume, _ = strconv.ParseFloat(command[3:], 64)
		return ""
	default:
		return "?"
	}
}

func (t *SimTransport) reply(result string) {
	payload := fmt.Sprintf("%02d", t.addr)
	if t.alarm != 0 {
		payload += "A?" + string(t.alarm)
		t.alarm = 0
	} else {
		payload += string(t.statusChar()) + result
	}

	raw := []byte(payload)
	frame := make([]byte, 0, len(raw)+frameOverhead+1)
	if t.safe {
		frame = append(frame, stx, byte(len(raw)+frameOverhead))
		frame = append(frame, raw...)
		sum := crc16(raw)
		frame = append(frame, byte(sum>>8), byte(sum), etx)
	} else {
		frame = append(frame, stx)
		frame = append(frame, raw...)
		frame = append(frame, etx)
	}
	t.queue = append(t.queue, frame...)
}

func (t *SimTransport) statusChar() byte {
	if t.runningPolls > 0 {
		t.runningPolls--
		if t.direction == DirectionWithdraw {
			return 'W'
		}
		return 'I'
	}
	return 'S'
}
