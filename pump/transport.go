package pump

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Transport is a byte-stream link to a pump.
type Transport interface {
	Write(p []byte) error
	// ReadByte returns the next byte, or ErrReadTimeout when none arrives
	// within timeout.
	ReadByte(timeout time.Duration) (byte, error)
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
		return nil, fmt.Errorf("pump: open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("pump: set read timeout: %w", err)
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Write(p []byte) error {
	if _, err := t.port.Write(p); err != nil {
		return fmt.Errorf("pump: write: %w", err)
	}
	return nil
}

func (t *SerialTransport) ReadByte(timeout time.Duration) (byte, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return 0, fmt.Errorf("pump: read: %w", err)
		}
		if n > 0 {
			return buf[0], nil
		}
		if time.Now().After(deadline) {
			return 0, ErrReadTimeout
		}
	}
}

func (t *SerialTransport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("pump: close: %w", err)
	}
	return nil
}
