// apps/go-server/internal/store/store.go
//
// Snapshot persistence port for game sessions.
// The original client kept a single serialized session snapshot in
// device-local storage; here the same contract is a pluggable interface
// with one snapshot slot per player, last-write-wins.
//
// Characteristics:
//   - One key (the player id) holds at most one snapshot.
//   - Save overwrites unconditionally; no cross-tab conflict resolution.
//   - A corrupted stored snapshot is treated as absent.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoSnapshot reports that no (usable) snapshot exists for the key.
var ErrNoSnapshot = errors.New("store: no snapshot")

// Snapshot is a point-in-time serialization of one player's session,
// sufficient to resume play.
type Snapshot struct {
	SessionID  string    `json:"sessionId"`
	PuzzleID   string    `json:"puzzleId"`
	FoundWords []string  `json:"foundWords"`
	Buffer     string    `json:"buffer"`
	Remaining  int       `json:"remaining"` // seconds left on the countdown
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
	SavedAt    time.Time `json:"savedAt"`
}

// Snapshots defines the session snapshot persistence interface.
// Implementations may be backed by memory (dev/tests) or SQLite.
type Snapshots interface {
	// Save persists the snapshot for key, replacing any previous one.
	Save(ctx context.Context, key string, snap Snapshot) error

	// Load retrieves the latest snapshot for key.
	// Returns ErrNoSnapshot if absent or unreadable.
	Load(ctx context.Context, key string) (*Snapshot, error)

	// Clear removes the snapshot for key. Clearing a missing snapshot
	// is not an error.
	Clear(ctx context.Context, key string) error
}
