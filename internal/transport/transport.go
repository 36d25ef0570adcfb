package transport

import (
	"errors"
	"time"

	"go.bug.st/serial"
)

var (
	// ErrLinkUnavailable reports that the serial port could not be opened.
	ErrLinkUnavailable = errors.New("link unavailable")
	// ErrLinkWriteError reports a failed write to an open (or already closed) link.
	ErrLinkWriteError = errors.New("link write error")
)

// Port is the part of serial.Port the session relies on.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// Opener opens the physical port behind a session.
type Opener func(address string, baud int) (Port, error)

func openSerialPort(address string, baud int) (Port, error) {
	port, err := serial.Open(address, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}

	return port, nil
}
