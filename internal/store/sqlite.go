// apps/go-server/internal/store/sqlite.go
//
// SQLite-backed Snapshots implementation for production use.
// One row per player in the snapshots table, serialized as JSON.
// An unparseable stored row is discarded and reported as absent,
// matching how the original client treated corrupted local storage.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// sqlite persists snapshots to the server database.
type sqlite struct {
	db *sql.DB
}

// NewSQLite wraps an open database handle.
func NewSQLite(db *sql.DB) Snapshots {
	return &sqlite{db: db}
}

// Save serializes and upserts the snapshot row. Last write wins.
func (s *sqlite) Save(ctx context.Context, key string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO snapshots (user_id, data, saved_at)
        VALUES (?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            data=excluded.data,
            saved_at=excluded.saved_at`,
		key, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Load reads and parses the snapshot row. A corrupted row is cleared and
// reported as ErrNoSnapshot so the player simply starts fresh.
func (s *sqlite) Load(ctx context.Context, key string) (*Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE user_id=?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Str("user", key).Msg("discarding corrupted snapshot")
		_ = s.Clear(ctx, key)
		return nil, ErrNoSnapshot
	}
	return &snap, nil
}

// Clear deletes the snapshot row, if any.
func (s *sqlite) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE user_id=?`, key)
	return err
}
