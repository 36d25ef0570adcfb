package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skobkin/cipherbridge/internal/transport"
)

// ErrInvalidState reports an exchange attempted before the bridge is ready or after it was closed.
var ErrInvalidState = errors.New("invalid bridge state")

// State is the lifecycle position of the link owned by a Bridge.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateDrained
	StateReady
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateDrained:
		return "drained"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Link is the line-oriented byte stream a Bridge drives. *transport.Session implements it.
type Link interface {
	Address() string
	WriteBytes(payload []byte) error
	ReadLine(timeout time.Duration) []byte
	FlushInput() error
	FlushOutput() error
	DiscardPending()
	Close() error
}

// Exchange describes one finished round trip, handed to a Recorder.
type Exchange struct {
	Address   string
	Command   string
	Drain     bool
	Replies   []ReplyLine
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Recorder observes every exchange, including the drain.
type Recorder interface {
	RecordExchange(ex Exchange)
}

// Bridge turns a Link into a synchronous command/response primitive.
// It owns the link exclusively and is not safe for concurrent use.
type Bridge struct {
	link   Link
	cfg    Config
	logger *slog.Logger
	state  State
}

// New wraps an already opened link. The bridge starts in StateOpening and
// refuses exchanges until Drain has run.
func New(link Link, opts ...Option) *Bridge {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.With("component", "bridge")
	}

	return &Bridge{
		link:   link,
		cfg:    cfg,
		logger: logger.With("address", link.Address()),
		state:  StateOpening,
	}
}

// Dial opens the serial link, drains the boot chatter and returns a ready bridge.
// The caller must Close it.
func Dial(ctx context.Context, address string, baud int, linkOpts []transport.Option, opts ...Option) (*Bridge, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	linkOpts = append([]transport.Option{transport.WithReadTimeout(cfg.ReadTimeout)}, linkOpts...)
	session, err := transport.Open(ctx, address, baud, linkOpts...)
	if err != nil {
		return nil, err
	}

	b := New(session, opts...)
	b.Drain()

	return b, nil
}

func (b *Bridge) State() State {
	return b.state
}

// Drain collects and discards whatever the device prints after connecting.
func (b *Bridge) Drain() {
	if b.state != StateOpening {
		b.logger.Warn("drain skipped", "state", b.state)
		return
	}

	started := time.Now()
	discarded := b.collect()
	b.state = StateDrained
	b.logger.Debug("drained boot output", "lines", len(discarded), "took", time.Since(started))
	b.record(Exchange{
		Drain:     true,
		Replies:   discarded,
		StartedAt: started,
		Duration:  time.Since(started),
	})
	b.state = StateReady
}

// Exchange writes command verbatim and collects reply lines until the overall
// deadline passes. An empty result is not an error.
func (b *Bridge) Exchange(command string) ([]ReplyLine, error) {
	if b.state != StateReady {
		return nil, fmt.Errorf("%w: exchange %q in state %s", ErrInvalidState, command, b.state)
	}

	if b.cfg.FlushBefore {
		if err := b.link.FlushInput(); err != nil {
			b.logger.Warn("flush input", "error", err)
		}
	}

	started := time.Now()
	if err := b.link.WriteBytes([]byte(command)); err != nil {
		err = fmt.Errorf("exchange %q: %w", command, err)
		b.record(Exchange{Command: command, StartedAt: started, Duration: time.Since(started), Err: err})
		return nil, err
	}

	lines := b.collect()

	if b.cfg.FlushAfter {
		if err := b.link.FlushOutput(); err != nil {
			b.logger.Warn("flush output", "error", err)
		}
	}

	took := time.Since(started)
	b.logger.Debug("exchange done", "command", command, "lines", len(lines), "took", took)
	b.record(Exchange{Command: command, Replies: lines, StartedAt: started, Duration: took})

	return lines, nil
}

// Close releases the link. Calling it again is a no-op.
func (b *Bridge) Close() error {
	if b.state == StateClosed {
		return nil
	}
	b.state = StateClosed

	return b.link.Close()
}

// collect reads lines until the deadline computed at entry. The deadline is a
// hard ceiling: a device that never stops talking is still cut off. A line
// that has not seen its terminator when an attempt times out is dropped, and
// so is anything still buffered by the link when the deadline passes.
func (b *Bridge) collect() []ReplyLine {
	var lines []ReplyLine
	deadline := time.Now().Add(b.cfg.ExchangeDeadline)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			b.link.DiscardPending()
			return lines
		}

		raw := b.link.ReadLine(min(b.cfg.ReadTimeout, remaining))
		if !bytes.HasSuffix(raw, []byte{'\n'}) {
			if len(raw) > 0 {
				b.logger.Debug("dropped incomplete line", "len", len(raw))
			}
			continue
		}

		line := DecodeLine(raw)
		if line.Value == "" {
			continue
		}
		lines = append(lines, line)
	}
}

func (b *Bridge) record(ex Exchange) {
	if b.cfg.Recorder == nil {
		return
	}
	ex.Address = b.link.Address()
	b.cfg.Recorder.RecordExchange(ex)
}
