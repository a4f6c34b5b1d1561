package audit

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	time_ms    INTEGER NOT NULL,
	stage      TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	command    TEXT NOT NULL DEFAULT '',
	allowed    INTEGER NOT NULL,
	kind       TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	elapsed_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_audit_events_time ON audit_events(time_ms);
`

// SQLite is a file-backed audit store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) an audit database at path. The
// path ":memory:" selects an ephemeral database, used by tests.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit db path is required")
	}

	db, err := sql.Open("sqlite", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// SQLite writes are serialized anyway; a single connection also keeps
	// :memory: databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Record inserts one event.
func (s *SQLite) Record(e Event) error {
	when := e.Time
	if when.IsZero() {
		when = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO audit_events (time_ms, stage, request_id, command, allowed, kind, message, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		when.UTC().UnixMilli(), string(e.Stage), e.RequestID, e.Command,
		boolToInt(e.Allowed), e.Kind, e.Message, e.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (s *SQLite) Recent(n int) ([]Event, error) {
	if n <= 0 {
		n = 100
	}

	rows, err := s.db.Query(
		`SELECT time_ms, stage, request_id, command, allowed, kind, message, elapsed_ms
		 FROM audit_events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var timeMs int64
		var stage string
		var allowed int
		if err := rows.Scan(&timeMs, &stage, &e.RequestID, &e.Command, &allowed, &e.Kind, &e.Message, &e.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Time = time.UnixMilli(timeMs).UTC()
		e.Stage = Stage(stage)
		e.Allowed = allowed != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
