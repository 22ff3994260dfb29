// Package journal persists decision records to SQLite for post-match review.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/replay-director/replay-director/director/trace"
)

const schema = `
CREATE TABLE IF NOT EXISTS switch_records (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	kind           TEXT    NOT NULL,
	at             INTEGER NOT NULL,
	switch_id      TEXT    NOT NULL,
	participant_id TEXT    NOT NULL,
	name           TEXT    NOT NULL DEFAULT '',
	slot           INTEGER NOT NULL,
	priority       INTEGER NOT NULL,
	score_delta    INTEGER NOT NULL,
	fire_at        INTEGER NOT NULL,
	reason         TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS switch_records_switch_id ON switch_records (switch_id);
`

// Journal is a trace.Recorder backed by a SQLite file.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores r, logging instead of failing so a slow or broken disk never
// stalls the scheduler.
func (j *Journal) Record(r trace.Record) {
	if err := j.Append(context.Background(), r); err != nil {
		logrus.Warnf("journal: %v", err)
	}
}

// Append stores one record.
func (j *Journal) Append(ctx context.Context, r trace.Record) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO switch_records (
	kind, at, switch_id, participant_id, name, slot, priority, score_delta, fire_at, reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		string(r.Kind),
		r.At.UTC().UnixMilli(),
		r.SwitchID,
		r.ParticipantID,
		r.Name,
		r.Slot,
		r.Priority,
		r.ScoreDelta,
		r.FireAt.UTC().UnixMilli(),
		r.Reason,
	)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Records returns every stored record in insertion order.
func (j *Journal) Records(ctx context.Context) ([]trace.Record, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT kind, at, switch_id, participant_id, name, slot, priority, score_delta, fire_at, reason
FROM switch_records
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []trace.Record
	for rows.Next() {
		var (
			r          trace.Record
			kind       string
			at, fireAt int64
		)
		if err := rows.Scan(&kind, &at, &r.SwitchID, &r.ParticipantID, &r.Name,
			&r.Slot, &r.Priority, &r.ScoreDelta, &fireAt, &r.Reason); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Kind = trace.Kind(kind)
		r.At = time.UnixMilli(at).UTC()
		r.FireAt = time.UnixMilli(fireAt).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
