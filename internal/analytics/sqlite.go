// apps/go-server/internal/analytics/sqlite.go
//
// SQLite-backed Sink implementation plus feedback storage.
// The original deployment wrote one analytics document per game with an
// embedded event array; here each event is its own row keyed by game id,
// with the metadata rollup in a companion table.

package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// SQLiteSink persists events and metadata to the server database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink wraps an open database handle.
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

// Record appends one event row. Failures are logged and swallowed.
func (s *SQLiteSink) Record(ctx context.Context, gameID, eventType string, payload map[string]any) {
	if gameID == "" || eventType == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payloads are built from plain maps; this should not happen.
		log.Warn().Err(err).Str("event", eventType).Msg("analytics: marshal payload")
		raw = []byte(`{}`)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO analytics_events (game_id, event_type, payload, created_at)
        VALUES (?, ?, ?, ?)`,
		gameID, eventType, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Str("event", eventType).Msg("analytics: record event")
	}
}

// UpsertMetadata replaces the rollup row for the game. Last write wins.
func (s *SQLiteSink) UpsertMetadata(ctx context.Context, gameID string, md Metadata) {
	if gameID == "" {
		return
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_metadata (game_id, total_words, words_found, total_time, game_state, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(game_id) DO UPDATE SET
            total_words=excluded.total_words,
            words_found=excluded.words_found,
            total_time=excluded.total_time,
            game_state=excluded.game_state,
            updated_at=excluded.updated_at`,
		gameID, md.TotalWords, md.WordsFound, md.TotalTime, md.GameState,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("analytics: upsert metadata")
	}
}

// RecordFeedback stores a post-game questionnaire row. Unlike event
// recording this is user-facing, so the error is returned.
func (s *SQLiteSink) RecordFeedback(ctx context.Context, userID, gameID string, fb Feedback) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO feedback (user_id, game_id, satisfaction, most_difficult, will_return, submitted_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		userID, gameID, fb.Satisfaction, fb.MostDifficult, fb.WillReturn,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Events returns the raw event stream for a game, oldest first. Used by
// the analytics retrieval endpoint.
func (s *SQLiteSink) Events(ctx context.Context, gameID string) ([]EventRow, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT event_type, payload, created_at
        FROM analytics_events WHERE game_id=? ORDER BY id ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var r EventRow
		var payload string
		if err := rows.Scan(&r.EventType, &payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(payload), &r.Payload)
		out = append(out, r)
	}
	return out, rows.Err()
}

// EventRow is one recorded event as returned by Events.
type EventRow struct {
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"createdAt"`
}
