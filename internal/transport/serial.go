package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const readChunkSize = 256

// Session owns one open serial link. It is not safe for concurrent use:
// a single owner opens it, exchanges through it and closes it.
type Session struct {
	address string
	logger  *slog.Logger

	port    Port
	pending []byte
	chunk   []byte
	closed  bool
}

// Open connects to the serial port at address and waits for the settle delay,
// giving boards that reset on connect time to boot. The wait is aborted by ctx.
func Open(ctx context.Context, address string, baud int, opts ...Option) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: serial port is empty", ErrLinkUnavailable)
	}
	if baud <= 0 {
		return nil, fmt.Errorf("%w: invalid serial baud rate: %d", ErrLinkUnavailable, baud)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = sessionLogger(address)
	}

	port, err := cfg.opener(address, baud)
	if err != nil {
		return nil, fmt.Errorf("%w: open serial port %q: %w", ErrLinkUnavailable, address, err)
	}
	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: set serial read timeout: %w", ErrLinkUnavailable, err)
	}

	s := &Session{
		address: address,
		logger:  logger,
		port:    port,
		chunk:   make([]byte, readChunkSize),
	}
	logger.Info("serial port opened", "baud", baud, "read_timeout", cfg.readTimeout)

	if cfg.settleDelay > 0 {
		logger.Debug("waiting for device to settle", "delay", cfg.settleDelay)
		timer := time.NewTimer(cfg.settleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			_ = s.Close()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return s, nil
}

func (s *Session) Address() string {
	return s.address
}

func (s *Session) Closed() bool {
	return s.closed
}

// WriteBytes writes the whole payload to the link.
func (s *Session) WriteBytes(payload []byte) error {
	if s.closed {
		return fmt.Errorf("%w: session is closed", ErrLinkWriteError)
	}

	written := 0
	for written < len(payload) {
		n, err := s.port.Write(payload[written:])
		if err != nil {
			return fmt.Errorf("%w: write %d bytes to %q: %w", ErrLinkWriteError, len(payload), s.address, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write to %q: %w", ErrLinkWriteError, s.address, io.ErrShortWrite)
		}
		written += n
	}
	s.logger.Debug("wrote bytes", "len", len(payload))

	return nil
}

// ReadLine blocks until a '\n' arrives or timeout elapses. A complete line is
// returned with its terminator. On timeout whatever partial bytes were buffered
// are returned (possibly none) and forgotten. ReadLine never fails: read errors
// are logged and treated like silence for the rest of the attempt.
func (s *Session) ReadLine(timeout time.Duration) []byte {
	if s.closed {
		return nil
	}

	deadline := time.Now().Add(timeout)
	for {
		if line, ok := s.takeLine(); ok {
			return line
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return s.takePending()
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			s.logger.Warn("set read timeout", "timeout", remaining, "error", err)
		}

		n, err := s.port.Read(s.chunk)
		if n > 0 {
			s.pending = append(s.pending, s.chunk[:n]...)
		}
		if err != nil {
			s.logger.Warn("read from serial port", "error", err)
			if wait := time.Until(deadline); wait > 0 {
				time.Sleep(wait)
			}
			if line, ok := s.takeLine(); ok {
				return line
			}
			return s.takePending()
		}
	}
}

// FlushInput discards bytes received but not yet consumed.
func (s *Session) FlushInput() error {
	if s.closed {
		return nil
	}
	s.DiscardPending()
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}

	return nil
}

// DiscardPending forgets bytes buffered by the session without touching the
// OS input buffer. Whatever the device sends later is still read.
func (s *Session) DiscardPending() {
	if dropped := len(s.pending); dropped > 0 {
		s.logger.Debug("discarding pending input", "len", dropped)
	}
	s.pending = nil
}

// FlushOutput discards bytes written but not yet transmitted.
func (s *Session) FlushOutput() error {
	if s.closed {
		return nil
	}
	if err := s.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("reset output buffer: %w", err)
	}

	return nil
}

// Close releases the port. Only the first call reaches the device.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("close serial port %q: %w", s.address, err)
	}
	s.logger.Info("serial port closed")

	return nil
}

func (s *Session) takeLine() ([]byte, bool) {
	idx := bytes.IndexByte(s.pending, '\n')
	if idx < 0 {
		return nil, false
	}

	line := make([]byte, idx+1)
	copy(line, s.pending[:idx+1])
	s.pending = s.pending[idx+1:]
	if len(s.pending) == 0 {
		s.pending = nil
	}

	return line, true
}

func (s *Session) takePending() []byte {
	partial := s.pending
	s.pending = nil

	return partial
}
