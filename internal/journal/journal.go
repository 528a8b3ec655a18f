// Package journal keeps a durable SQLite record of every command outcome,
// independent of the Redis save and its TTL.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/saga-engine/pkg/command"
)

const schema = `
CREATE TABLE IF NOT EXISTS command_journal (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id    TEXT    NOT NULL,
	turn       INTEGER NOT NULL,
	source     TEXT    NOT NULL,
	tag        TEXT    NOT NULL,
	kind       TEXT    NOT NULL DEFAULT '',
	status     TEXT    NOT NULL,
	detail     TEXT    NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_journal_game ON command_journal (game_id, id);
`

// Sources of journaled outcomes.
const (
	SourceTurn = "turn"
	SourceTick = "tick"
)

// Entry is one journaled command outcome.
type Entry struct {
	ID        int64          `json:"id"`
	GameID    uuid.UUID      `json:"game_id"`
	Turn      int            `json:"turn"`
	Source    string         `json:"source"`
	Tag       string         `json:"tag"`
	Kind      command.Kind   `json:"kind,omitempty"`
	Status    command.Status `json:"status"`
	Detail    string         `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type Journal struct {
	db *sql.DB
}

// Open opens the journal database at path and creates the schema.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
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

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record writes one row per outcome in a single transaction. A nil journal
// records nothing.
func (j *Journal) Record(ctx context.Context, gameID uuid.UUID, turn int, source string, outcomes []command.Outcome) error {
	if j == nil || len(outcomes) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO command_journal (game_id, turn, source, tag, kind, status, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare journal insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().UnixMilli()
	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, gameID.String(), turn, source, o.Tag, string(o.Kind), string(o.Status), o.Detail, now); err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

// List returns the newest limit entries for gameID, newest first.
func (j *Journal) List(ctx context.Context, gameID uuid.UUID, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, turn, source, tag, kind, status, detail, created_at
FROM command_journal
WHERE game_id = ?
ORDER BY id DESC
LIMIT ?
`, gameID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{GameID: gameID}
		var kind, status string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Turn, &e.Source, &e.Tag, &kind, &status, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Kind = command.Kind(kind)
		e.Status = command.Status(status)
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}
