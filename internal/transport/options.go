package transport

import (
	"log/slog"
	"time"
)

const (
	DefaultReadTimeout = time.Second
	DefaultSettleDelay = 2 * time.Second
)

type sessionConfig struct {
	readTimeout time.Duration
	settleDelay time.Duration
	opener      Opener
	logger      *slog.Logger
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		readTimeout: DefaultReadTimeout,
		settleDelay: DefaultSettleDelay,
		opener:      openSerialPort,
	}
}

// Option customizes a Session at Open time.
type Option func(*sessionConfig)

// WithReadTimeout sets the per-attempt read timeout applied to the port after opening.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *sessionConfig) {
		if timeout > 0 {
			c.readTimeout = timeout
		}
	}
}

// WithSettleDelay sets how long Open waits for the device to finish its reset-on-connect.
// Zero disables the wait.
func WithSettleDelay(delay time.Duration) Option {
	return func(c *sessionConfig) {
		if delay >= 0 {
			c.settleDelay = delay
		}
	}
}

// WithOpener replaces the serial port opener, mostly for tests.
func WithOpener(opener Opener) Option {
	return func(c *sessionConfig) {
		if opener != nil {
			c.opener = opener
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
