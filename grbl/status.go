package grbl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/deck"
)

// State is the controller's machine state from a realtime status report.
type State int8

const (
	// StateUnknown marks a report whose state token was not recognized.
	// It is an explicit value, never the absence of one.
	StateUnknown State = iota
	StateIdle
	StateRun
	StateHome
	StateHold
	StateAlarm
	StateCheck
	StateDoor
)

var stateNames = map[string]State{
	"Idle":  StateIdle,
	"Run":   StateRun,
	"Home":  StateHome,
	"Hold":  StateHold,
	"Alarm": StateAlarm,
	"Check": StateCheck,
	"Door":  StateDoor,
}

func (s State) String() string {
	for name, state := range stateNames {
		if state == s {
			return name
		}
	}
	return "Unknown"
}

// Status is one decoded realtime report.
type Status struct {
	State    State
	Position deck.Coordinates
	// Raw is the report line as received, kept for error context.
	Raw string
}

// ParseStatus decodes a realtime report like
//
//	<Idle|MPos:12.000,-5.000,0.000|Bf:15,127|FS:0,0>
//
// The position triple may arrive as MPos or WPos. Reports that are not
// angle-bracket framed or whose position triple does not parse return
// ErrUnparsableStatus together with a StateUnknown status.
func ParseStatus(raw string) (Status, error) {
	status := Status{State: StateUnknown, Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 || trimmed[0] != '<' || trimmed[len(trimmed)-1] != '>' {
		return status, fmt.Errorf("%w: %q", ErrUnparsableStatus, raw)
	}

	fields := strings.Split(trimmed[1:len(trimmed)-1], "|")
	// Hold and Door states carry a sub-state suffix, e.g. "Hold:0".
	stateToken, _, _ := strings.Cut(fields[0], ":")
	if state, ok := stateNames[stateToken]; ok {
		status.State = state
	}

	for _, field := range fields[1:] {
		if !strings.HasPrefix(field, "MPos:") && !strings.HasPrefix(field, "WPos:") {
			continue
		}
		pos, err := parseTriple(field[len("MPos:"):])
		if err != nil {
			return Status{State: StateUnknown, Raw: raw},
				fmt.Errorf("%w: %q: %v", ErrUnparsableStatus, raw, err)
		}
		status.Position = pos
	}

	return status, nil
}

func parseTriple(s string) (deck.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return deck.Coordinates{}, fmt.Errorf("want 3 axis values, got %d", len(parts))
	}
	vals := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return deck.Coordinates{}, err
		}
		vals[i] = v
	}
	return deck.Coordinates{X: vals[0], Y: vals[1], Z: vals[2]}.Round(), nil
}
