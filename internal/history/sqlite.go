package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// SQLite keeps the history of one bot in a shared database
type SQLite struct {
	db  *sql.DB
	bot string
}

// NewSQLite opens the database at path and initializes the schema
func NewSQLite(path, bot string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, bot: bot}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT text FROM history WHERE bot = ? ORDER BY created_at, rowid",
		s.bot,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Append inserts entry and deletes this bot's oldest rows beyond limit in
// one transaction.
func (s *SQLite) Append(ctx context.Context, entry string, limit int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO history (id, bot, text, created_at) VALUES (?, ?, ?, ?)",
		uuid.New().String(), s.bot, entry, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if limit > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM history
			WHERE bot = ? AND rowid NOT IN (
				SELECT rowid FROM history WHERE bot = ?
				ORDER BY created_at DESC, rowid DESC LIMIT ?
			)`, s.bot, s.bot, limit)
		if err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
