package grbl

import (
	"strings"
	"time"

	"go.bug.st/serial"
)

// Transport is a line-oriented link to a motion controller.
type Transport interface {
	// WriteLine sends one command line; the transport appends the newline.
	WriteLine(line string) error
	// WriteByte sends one realtime byte with no line termination.
	WriteByte(b byte) error
	// ReadLine returns the next newline-terminated reply, stripped of line
	// endings, or ErrReadTimeout when none arrives within timeout.
	ReadLine(timeout time.Duration) (string, error)
	// Flush discards any pending unread input.
	Flush() error
	Close() error
}

// SerialTransport implements Transport on a serial port with 8-N-1 framing.
type SerialTransport struct {
	port serial.Port
}

var _ Transport = (*SerialTransport)(nil)

// OpenSerial opens the named serial port at the given baud rate.
func OpenSerial(portName string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, &ConnectionError{Op: "open " + portName, Err: err}
	}
	// Short device-level timeout; ReadLine enforces the caller's deadline.
	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		port.Close()
		return nil, &ConnectionError{Op: "set read timeout", Err: err}
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) WriteLine(line string) error {
	if _, err := t.port.Write([]byte(line + "\n")); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

func (t *SerialTransport) WriteByte(b byte) error {
	if _, err := t.port.Write([]byte{b}); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

// ReadLine accumulates bytes until a newline. The serial layer returns
// zero bytes on its own timeout, so the loop spins on short device reads
// until the caller's deadline passes.
func (t *SerialTransport) ReadLine(timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return "", &ConnectionError{Op: "read", Err: err}
		}
		if n == 0 {
			if time.Now().After(deadline) {
				return "", ErrReadTimeout
			}
			continue
		}
		if buf[0] == '\n' {
			return strings.TrimRight(string(line), "\r"), nil
		}
		line = append(line, buf[0])
	}
}

func (t *SerialTransport) Flush() error {
	if err := t.port.ResetInputBuffer(); err != nil {
		return &ConnectionError{Op: "flush", Err: err}
	}
	return nil
}

func (t *SerialTransport) Close() error {
	if err := t.port.Close(); err != nil {
		return &ConnectionError{Op: "close", Err: err}
	}
	return nil
}
