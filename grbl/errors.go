package grbl

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates an operation on a closed or unopened link.
	ErrNotConnected = errors.New("grbl: not connected")
	// ErrCommandTimeout indicates the controller did not return to Idle
	// within the command timeout.
	ErrCommandTimeout = errors.New("grbl: command timed out")
	// ErrReadTimeout indicates no reply line arrived within the read timeout.
	ErrReadTimeout = errors.New("grbl: read timed out")
	// ErrUnparsableStatus indicates a status report that could not be decoded.
	ErrUnparsableStatus = errors.New("grbl: unparsable status report")
)

// ConnectionError wraps a transport-level failure.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("grbl: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CommandError is a typed error:N reply to a command line.
type CommandError struct {
	Code        int
	Description string
	Line        string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("grbl: error %d on %q: %s", e.Code, e.Line, e.Description)
}

// Transient reports whether the error clears on its own once corrected,
// such as a move issued before any feed rate was set.
func (e *CommandError) Transient() bool {
	return e.Code == codeFeedRateNotSet
}

// AlarmError is a typed ALARM:N report. An alarm halts the controller but
// the serial link stays open, so the caller can query status and issue
// Unlock after clearing the physical cause.
type AlarmError struct {
	Code        int
	Description string
}

func (e *AlarmError) Error() string {
	return fmt.Sprintf("grbl: alarm %d: %s", e.Code, e.Description)
}
