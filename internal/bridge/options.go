package bridge

import (
	"log/slog"
	"time"

	"github.com/skobkin/cipherbridge/internal/transport"
)

const DefaultExchangeDeadline = 5 * time.Second

// Config holds the exchange timing and flush policy.
type Config struct {
	// ReadTimeout bounds a single ReadLine attempt.
	ReadTimeout time.Duration
	// ExchangeDeadline bounds a whole exchange, counted from the write.
	ExchangeDeadline time.Duration
	// FlushBefore discards stale input before each write.
	FlushBefore bool
	// FlushAfter discards untransmitted output after collecting replies.
	FlushAfter bool

	Logger   *slog.Logger
	Recorder Recorder
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:      transport.DefaultReadTimeout,
		ExchangeDeadline: DefaultExchangeDeadline,
		FlushBefore:      true,
		FlushAfter:       true,
	}
}

type Option func(*Config)

func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

func WithExchangeDeadline(deadline time.Duration) Option {
	return func(c *Config) {
		if deadline > 0 {
			c.ExchangeDeadline = deadline
		}
	}
}

// WithFlush toggles the input flush before writing and the output flush after reading.
func WithFlush(before, after bool) Option {
	return func(c *Config) {
		c.FlushBefore = before
		c.FlushAfter = after
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}
