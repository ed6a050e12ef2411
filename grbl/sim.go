package grbl

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
)

// SimTransport is an in-memory motion controller for offline use and tests.
// It tracks machine position from the G0/G01 lines it receives and answers
// realtime status queries with a synthetic Idle report, so code driving a
// Controller behaves identically against hardware and the simulator.
type SimTransport struct {
	mu      sync.Mutex
	pos     deck.Coordinates
	feedSet bool
	replies []string
	closed  bool

	// lines records every command line received, oldest first.
	lines []string
}

var _ Transport = (*SimTransport)(nil)

// NewSimTransport creates a simulated controller at machine zero with its
// boot banner pending.
func NewSimTransport() *SimTransport {
	return &SimTransport{
		replies: []string{"Grbl 1.1h ['$' for help]"},
	}
}

// Position returns the simulated machine position.
func (t *SimTransport) Position() deck.Coordinates {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// Lines returns every command line received so far.
func (t *SimTransport) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *SimTransport) WriteLine(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrNotConnected
	}
	t.lines = append(t.lines, line)

	switch {
	case line == cmdStatus:
		t.replies = append(t.replies, fmt.Sprintf("<Idle|MPos:%.3f,%.3f,%.3f|Bf:15,127|FS:0,0>",
			t.pos.X, t.pos.Y, t.pos.Z))
	case line == cmdHome:
		t.pos = deck.Coordinates{}
		t.replies = append(t.replies, "ok")
	case line == cmdUnlock:
		t.replies = append(t.replies, "[MSG:Caution: Unlocked]", "ok")
	case line == cmdFeedHold:
		// Realtime command, no reply.
	case line == cmdSettings:
		t.replies = append(t.replies,
			"$110=800.000", "$111=800.000", "$112=800.000", "ok")
	case strings.HasPrefix(line, "F"):
		t.feedSet = true
		t.replies = append(t.replies, "ok")
	case strings.HasPrefix(line, "G01") || strings.HasPrefix(line, "G1"):
		if !t.feedSet {
			t.replies = append(t.replies, fmt.Sprintf("error:%d", codeFeedRateNotSet))
			return nil
		}
		t.applyMove(line)
		t.replies = append(t.replies, "ok")
	case strings.HasPrefix(line, "G0"):
		t.applyMove(line)
		t.replies = append(t.replies, "ok")
	default:
		t.replies = append(t.replies, "ok")
	}
	return nil
}

func (t *SimTransport) WriteByte(b byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrNotConnected
	}
	if b == softResetByte {
		t.feedSet = false
		t.replies = append(t.replies, "", "Grbl 1.1h ['$' for help]")
	}
	return nil
}

func (t *SimTransport) ReadLine(timeout time.Duration) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrNotConnected
	}
	if len(t.replies) == 0 {
		return "", ErrReadTimeout
	}
	reply := t.replies[0]
	t.replies = t.replies[1:]
	return reply, nil
}

func (t *SimTransport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = nil
	return nil
}

func (t *SimTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *SimTransport) applyMove(line string) {
	for _, word := range strings.Fields(line) {
		if len(word) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			continue
		}
		switch word[0] {
		case 'X':
			t.pos.X = value
		case 'Y':
			t.pos.Y = value
		case 'Z':
			t.pos.Z = value
		}
	}
}
