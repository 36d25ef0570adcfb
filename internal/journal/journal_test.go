package journal

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/skobkin/cipherbridge/internal/bridge"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"), nil)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	started := time.UnixMilli(1_760_000_000_000)

	for i, cmd := range []string{"0exactly16chars!!", "1", "2"} {
		if _, err := j.Record(ctx, Entry{
			Address:   "/dev/ttyACM0",
			Command:   cmd,
			Replies:   []Reply{{Kind: "text", Value: "OK"}},
			StartedAt: started.Add(time.Duration(i) * time.Second),
			Duration:  5 * time.Second,
		}); err != nil {
			t.Fatalf("record %q: %v", cmd, err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Command != "1" || got[1].Command != "2" {
		t.Fatalf("expected oldest-first order of the latest entries, got %q, %q", got[0].Command, got[1].Command)
	}
	if !got[1].StartedAt.Equal(started.Add(2 * time.Second)) {
		t.Fatalf("unexpected started_at: %s", got[1].StartedAt)
	}
	if got[1].Duration != 5*time.Second {
		t.Fatalf("unexpected duration: %s", got[1].Duration)
	}
	if !reflect.DeepEqual(got[1].Replies, []Reply{{Kind: "text", Value: "OK"}}) {
		t.Fatalf("unexpected replies: %+v", got[1].Replies)
	}
}

func TestRecentWithNonPositiveLimit(t *testing.T) {
	got, err := openTestJournal(t).Recent(context.Background(), 0)
	if err != nil || got != nil {
		t.Fatalf("expected nil result, got %v, %v", got, err)
	}
}

func TestRecordExchangeFromBridge(t *testing.T) {
	j := openTestJournal(t)

	j.RecordExchange(bridge.Exchange{
		Address:   "COM4",
		Drain:     true,
		Replies:   []bridge.ReplyLine{bridge.Text("boot"), bridge.RawHex("ff0a")},
		StartedAt: time.Now(),
	})
	j.RecordExchange(bridge.Exchange{
		Address:   "COM4",
		Command:   "1",
		StartedAt: time.Now(),
		Err:       errors.New("link write error: broken pipe"),
	})

	got, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	drain := got[0]
	if !drain.Drain || drain.Command != "" {
		t.Fatalf("unexpected drain entry: %+v", drain)
	}
	want := []Reply{{Kind: "text", Value: "boot"}, {Kind: "raw_hex", Value: "ff0a"}}
	if !reflect.DeepEqual(drain.Replies, want) {
		t.Fatalf("unexpected drain replies: %+v", drain.Replies)
	}
	failed := got[1]
	if failed.Error != "link write error: broken pipe" || len(failed.Replies) != 0 {
		t.Fatalf("unexpected failed entry: %+v", failed)
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := j.Record(ctx, Entry{Address: "COM4", Command: "2", StartedAt: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	j, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = j.Close() }()

	got, err := j.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d", len(got))
	}
}
