// Package journal keeps an optional sqlite record of every exchange with the device.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/skobkin/cipherbridge/internal/bridge"
)

const recordTimeout = 2 * time.Second

// Reply is a stored reply line.
type Reply struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Entry is one stored exchange.
type Entry struct {
	ID        int64
	Address   string
	Command   string
	Drain     bool
	Replies   []Reply
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or migrates the journal database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Journal, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.With("component", "journal")
	}

	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	replies := e.Replies
	if replies == nil {
		replies = []Reply{}
	}
	repliesJSON, err := json.Marshal(replies)
	if err != nil {
		return 0, fmt.Errorf("encode replies: %w", err)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO exchanges(address, command, is_drain, replies_json, error, started_at, duration_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, e.Address, e.Command, boolToInt(e.Drain), string(repliesJSON), nullableString(e.Error), timeToUnixMillis(e.StartedAt), e.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("insert exchange: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get exchange id: %w", err)
	}

	return id, nil
}

// Recent returns up to limit entries, oldest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, address, command, is_drain, replies_json, error, started_at, duration_ms
		FROM exchanges
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}

	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}

	return out, nil
}

// RecordExchange stores a finished bridge exchange. Failures are logged:
// the journal must never break an exchange.
func (j *Journal) RecordExchange(ex bridge.Exchange) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if _, err := j.Record(ctx, EntryFromExchange(ex)); err != nil {
		j.logger.Warn("record exchange", "command", ex.Command, "error", err)
	}
}

func EntryFromExchange(ex bridge.Exchange) Entry {
	replies := make([]Reply, 0, len(ex.Replies))
	for _, r := range ex.Replies {
		replies = append(replies, Reply{Kind: r.Kind.String(), Value: r.Value})
	}
	e := Entry{
		Address:   ex.Address,
		Command:   ex.Command,
		Drain:     ex.Drain,
		Replies:   replies,
		StartedAt: ex.StartedAt,
		Duration:  ex.Duration,
	}
	if ex.Err != nil {
		e.Error = ex.Err.Error()
	}

	return e
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (Entry, error) {
	var (
		e           Entry
		isDrain     int
		repliesJSON string
		errText     sql.NullString
		startedAt   int64
		durationMS  int64
	)
	if err := s.Scan(&e.ID, &e.Address, &e.Command, &isDrain, &repliesJSON, &errText, &startedAt, &durationMS); err != nil {
		return Entry{}, fmt.Errorf("scan exchange: %w", err)
	}
	if err := json.Unmarshal([]byte(repliesJSON), &e.Replies); err != nil {
		return Entry{}, fmt.Errorf("decode replies of exchange %d: %w", e.ID, err)
	}
	e.Drain = isDrain != 0
	e.Error = errText.String
	e.StartedAt = unixMillisToTime(startedAt)
	e.Duration = time.Duration(durationMS) * time.Millisecond

	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
