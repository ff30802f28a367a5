package convlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists call turns in a local SQLite file, for single-box
// installs that want the log to survive restarts without running Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS call_turns (
			id TEXT PRIMARY KEY,
			call_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_call_turns_call_created ON call_turns (call_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO call_turns (id, call_id, role, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		turn.ID, turn.CallID, string(turn.Role), turn.Text, turn.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Turns(ctx context.Context, callID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, call_id, role, text, created_at FROM call_turns WHERE call_id=? ORDER BY created_at ASC`,
		callID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		var role string
		var createdNs int64
		if err := rows.Scan(&t.ID, &t.CallID, &role, &t.Text, &createdNs); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		t.Role = Role(role)
		t.CreatedAt = time.Unix(0, createdNs).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Purge(ctx context.Context, callID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM call_turns WHERE call_id=?`, callID); err != nil {
		return fmt.Errorf("purge call %s: %w", callID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
