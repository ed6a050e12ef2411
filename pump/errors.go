package pump

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates an operation on a closed or unopened link.
	ErrNotConnected = errors.New("pump: not connected")
	// ErrReadTimeout indicates no reply arrived within the read timeout.
	ErrReadTimeout = errors.New("pump: read timed out")
	// ErrRunTimeout indicates a pumping operation did not finish within the
	// run timeout.
	ErrRunTimeout = errors.New("pump: run timed out")
	// ErrMalformedReply indicates a reply that violates the wire framing.
	ErrMalformedReply = errors.New("pump: malformed reply")
	// ErrVolumeTooLarge indicates a volume that cannot be encoded in the
	// protocol's 4-digit field.
	ErrVolumeTooLarge = errors.New("pump: volume exceeds 4-digit protocol field")
)

// AddressError indicates a reply from a different pump address than the one
// addressed, pointing at a bus misconfiguration.
type AddressError struct {
	Want int
	Got  int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("pump: reply from address %02d, want %02d", e.Got, e.Want)
}

// ChecksumError indicates a safe-mode reply whose CRC did not verify.
type ChecksumError struct {
	Want uint16
	Got  uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("pump: reply checksum %#04x, want %#04x", e.Got, e.Want)
}

// AlarmError is a device alarm report. The pump stops pumping when it
// raises one.
type AlarmError struct {
	Code        byte
	Description string
}

func (e *AlarmError) Error() string {
	return fmt.Sprintf("pump: alarm %c: %s", e.Code, e.Description)
}

// CommandRejectedError is the pump refusing a command, with the protocol's
// error mnemonic.
type CommandRejectedError struct {
	Code        string
	Description string
}

func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("pump: command rejected (%s): %s", e.Code, e.Description)
}
