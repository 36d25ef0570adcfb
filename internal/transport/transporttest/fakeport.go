// Package transporttest provides an in-memory serial port for tests.
package transporttest

import (
	"errors"
	"sync"
	"time"

	"github.com/skobkin/cipherbridge/internal/transport"
)

var ErrPortClosed = errors.New("fake port closed")

// Responder returns the bytes the fake device sends back after a write.
type Responder func(written []byte) []byte

// FakePort is a transport.Port backed by memory. Reads honor the read timeout
// the way go.bug.st/serial does: a timeout yields (0, nil).
type FakePort struct {
	mu           sync.Mutex
	incoming     []byte
	notify       chan struct{}
	readTimeout  time.Duration
	writes       [][]byte
	responder    Responder
	closeCalls   int
	inputResets  int
	outputResets int
	writeErr     error
}

func NewFakePort(responder Responder) *FakePort {
	return &FakePort{
		notify:      make(chan struct{}, 1),
		readTimeout: time.Second,
		responder:   responder,
	}
}

// Opener returns a transport.Opener handing out this port.
func (p *FakePort) Opener() transport.Opener {
	return func(string, int) (transport.Port, error) {
		return p, nil
	}
}

// Feed queues bytes as if the device had sent them.
func (p *FakePort) Feed(b []byte) {
	p.mu.Lock()
	p.incoming = append(p.incoming, b...)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// FailWrites makes every following write return err.
func (p *FakePort) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *FakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	timeout := p.readTimeout
	p.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		if p.closeCalls > 0 {
			p.mu.Unlock()
			return 0, ErrPortClosed
		}
		if len(p.incoming) > 0 {
			n := copy(buf, p.incoming)
			p.incoming = p.incoming[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-p.notify:
			timer.Stop()
		case <-timer.C:
			return 0, nil
		}
	}
}

func (p *FakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.writeErr != nil {
		err := p.writeErr
		p.mu.Unlock()
		return 0, err
	}
	written := make([]byte, len(b))
	copy(written, b)
	p.writes = append(p.writes, written)
	responder := p.responder
	p.mu.Unlock()

	if responder != nil {
		if reply := responder(written); len(reply) > 0 {
			p.Feed(reply)
		}
	}

	return len(b), nil
}

func (p *FakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = t
	return nil
}

func (p *FakePort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.incoming = nil
	p.inputResets++
	return nil
}

func (p *FakePort) ResetOutputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputResets++
	return nil
}

func (p *FakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	return nil
}

// Writes returns copies of every payload written so far.
func (p *FakePort) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	for i, w := range p.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

func (p *FakePort) BytesWritten() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, w := range p.writes {
		total += len(w)
	}
	return total
}

func (p *FakePort) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

func (p *FakePort) InputResets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputResets
}

func (p *FakePort) OutputResets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputResets
}

// ScriptedResponder answers each exact command with the mapped reply lines,
// each terminated by "\r\n" like Arduino's Serial.println.
func ScriptedResponder(script map[string][]string) Responder {
	return func(written []byte) []byte {
		lines, ok := script[string(written)]
		if !ok {
			return nil
		}
		var out []byte
		for _, line := range lines {
			out = append(out, line...)
			out = append(out, '\r', '\n')
		}
		return out
	}
}
