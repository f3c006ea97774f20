// Package history keeps the bounded list of strings a bot has already
// posted, so later runs can avoid repeating themselves.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Store is an append-only bounded history. Load returns entries oldest
// first; Append drops the oldest entries beyond limit.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Append(ctx context.Context, entry string, limit int) error
	Close() error
}

// Open picks a backend from the path extension: .db and .sqlite use
// SQLite, anything else a JSON file.
func Open(path, bot string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLite(path, bot)
	default:
		return NewFile(path), nil
	}
}

// DefaultPath returns the per-bot history file under the XDG data dir
func DefaultPath(bot string) (string, error) {
	path, err := xdg.DataFile(filepath.Join("teambots", bot+"_history.json"))
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}
	return path, nil
}

func trim(entries []string, limit int) []string {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}

// Memory is an in-process Store
type Memory struct {
	mu      sync.Mutex
	entries []string
}

// NewMemory returns a Memory store seeded with entries
func NewMemory(entries ...string) *Memory {
	return &Memory{entries: append([]string(nil), entries...)}
}

func (m *Memory) Load(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...), nil
}

func (m *Memory) Append(ctx context.Context, entry string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = trim(append(m.entries, entry), limit)
	return nil
}

func (m *Memory) Close() error { return nil }

type readOnly struct {
	Store
}

// ReadOnly wraps s so that Append is a no-op
func ReadOnly(s Store) Store {
	return readOnly{s}
}

func (readOnly) Append(ctx context.Context, entry string, limit int) error {
	return nil
}
