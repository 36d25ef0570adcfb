package cipher

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/skobkin/cipherbridge/internal/bridge"
	"github.com/skobkin/cipherbridge/internal/transport"
	"github.com/skobkin/cipherbridge/internal/transport/transporttest"
)

type stubExchanger struct {
	replies  map[string][]bridge.ReplyLine
	failOn   string
	commands []string
}

func (s *stubExchanger) Exchange(command string) ([]bridge.ReplyLine, error) {
	s.commands = append(s.commands, command)
	if command == s.failOn {
		return nil, transport.ErrLinkWriteError
	}

	return s.replies[command], nil
}

func TestEncryptRejectsBadLengthWithoutExchanging(t *testing.T) {
	ex := &stubExchanger{}
	_, err := NewClient(ex, nil).Encrypt("too short")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ex.commands) != 0 {
		t.Fatalf("expected no exchanges, got %q", ex.commands)
	}
}

func TestDecryptRejectsNonHexWithoutExchanging(t *testing.T) {
	ex := &stubExchanger{}
	_, err := NewClient(ex, nil).Decrypt("not-hex-not-hex-not-hex-not-hex!")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ex.commands) != 0 {
		t.Fatalf("expected no exchanges, got %q", ex.commands)
	}
}

func TestDecryptSendsCommandSequence(t *testing.T) {
	ex := &stubExchanger{replies: map[string][]bridge.ReplyLine{
		"2": {bridge.Text("68656c6c6f20776f726c6421202020")},
	}}
	cipherHex := "8ea2b7ca516745bfeafc49904b496089"

	res, err := NewClient(ex, nil).Decrypt(cipherHex)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if want := []string{"0" + cipherHex, "3", "2"}; !reflect.DeepEqual(ex.commands, want) {
		t.Fatalf("commands = %q, want %q", ex.commands, want)
	}
	if want := []Output{{Kind: OutputText, Value: "hello world!   "}}; !reflect.DeepEqual(res.Output, want) {
		t.Fatalf("output = %+v, want %+v", res.Output, want)
	}
}

func TestRunStopsOnExchangeError(t *testing.T) {
	ex := &stubExchanger{failOn: "1"}
	res, err := NewClient(ex, nil).Encrypt("exactly16chars!!")
	if !errors.Is(err, transport.ErrLinkWriteError) {
		t.Fatalf("expected link write error, got %v", err)
	}
	if len(res.Steps) != 1 {
		t.Fatalf("expected only the load step to complete, got %d", len(res.Steps))
	}
	if len(ex.commands) != 2 {
		t.Fatalf("expected fetch not to be sent, got %q", ex.commands)
	}
}

func TestEncryptRoundTripOverFakeDevice(t *testing.T) {
	const plaintext = "sixteen chars ok"
	port := transporttest.NewFakePort(transporttest.ScriptedResponder(map[string][]string{
		"0" + plaintext: {"OK"},
		"1":             {"OK"},
		"2":             {"a1b2c3d4e5f60708a1b2c3d4e5f60708"},
	}))

	b, err := bridge.Dial(context.Background(), "/dev/ttyFAKE0", 115200, []transport.Option{
		transport.WithOpener(port.Opener()),
		transport.WithSettleDelay(0),
	}, bridge.WithReadTimeout(20*time.Millisecond), bridge.WithExchangeDeadline(100*time.Millisecond))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = b.Close() }()

	res, err := NewClient(b, nil).Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if got := len(port.Writes()); got != 3 {
		t.Fatalf("expected 3 writes, got %d", got)
	}
	var got [][]string
	for _, step := range res.Steps {
		got = append(got, bridge.Values(step.Replies))
	}
	want := [][]string{{"OK"}, {"OK"}, {"a1b2c3d4e5f60708a1b2c3d4e5f60708"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("step replies = %q, want %q", got, want)
	}
	if len(res.Output) != 1 || res.Output[0].Value != "a1b2c3d4e5f60708a1b2c3d4e5f60708" {
		t.Fatalf("unexpected output: %+v", res.Output)
	}
}
