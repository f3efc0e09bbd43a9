// apps/go-server/internal/session/completions.go
//
// Completion-record store. A completed (identity, puzzle) pair is
// permanent: once a player has finished a puzzle they are redirected to
// the results view and can never resume or replay it for more attempts.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// Result is the final outcome stored with a completion record and shown
// on the read-only results view.
type Result struct {
	FoundWords []string `json:"foundWords"`
	TotalTime  int      `json:"totalTime"` // seconds of game time consumed
}

// Completions records which puzzles an identity has finished.
type Completions interface {
	// IsCompleted reports whether the identity already finished the puzzle,
	// returning the prior result when it did.
	IsCompleted(ctx context.Context, userID, puzzleID string) (bool, *Result, error)

	// MarkCompleted records a finished puzzle. Re-marking an already
	// completed pair keeps the first result.
	MarkCompleted(ctx context.Context, userID, puzzleID string, res Result) error
}

// ----------------------------- SQLite ---------------------------------

// sqliteCompletions persists completion records in the server database.
type sqliteCompletions struct {
	db *sql.DB
}

// NewSQLiteCompletions wraps an open database handle.
func NewSQLiteCompletions(db *sql.DB) Completions {
	return &sqliteCompletions{db: db}
}

func (s *sqliteCompletions) IsCompleted(ctx context.Context, userID, puzzleID string) (bool, *Result, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM completions WHERE user_id=? AND puzzle_id=?`,
		userID, puzzleID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		// Record exists but the payload is unreadable; the completion
		// itself still stands.
		return true, nil, nil
	}
	return true, &res, nil
}

func (s *sqliteCompletions) MarkCompleted(ctx context.Context, userID, puzzleID string, res Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO completions (user_id, puzzle_id, result, completed_at)
        VALUES (?, ?, ?, ?)`,
		userID, puzzleID, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ----------------------------- memory ---------------------------------

// memCompletions is the in-memory Completions used in tests.
type memCompletions struct {
	mu   sync.Mutex
	done map[string]Result // keyed userID|puzzleID
}

// NewMemoryCompletions constructs an in-memory Completions store.
func NewMemoryCompletions() Completions {
	return &memCompletions{done: make(map[string]Result)}
}

func (m *memCompletions) IsCompleted(ctx context.Context, userID, puzzleID string) (bool, *Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.done[userID+"|"+puzzleID]; ok {
		cp := res
		return true, &cp, nil
	}
	return false, nil, nil
}

func (m *memCompletions) MarkCompleted(ctx context.Context, userID, puzzleID string, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + puzzleID
	if _, ok := m.done[key]; !ok {
		m.done[key] = res
	}
	return nil
}
