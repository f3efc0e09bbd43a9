// apps/go-server/internal/analytics/analytics.go
//
// Analytics event sink for game telemetry.
// Responsibilities:
//   - Sink: the fire-and-forget contract consumed by the session and hint
//     machinery. Implementations swallow their own failures; a dropped
//     event must never surface to the player or block gameplay.
//   - Metadata: the per-game rollup (words found, time, state) flushed
//     periodically and on game end.
//   - Feedback: post-game questionnaire records (this path IS user-facing
//     and reports failures to its caller).
package analytics

import "context"

// Metadata is the per-game rollup upserted alongside raw events.
type Metadata struct {
	TotalWords int    `json:"totalWords"`
	WordsFound int    `json:"wordsFound"`
	TotalTime  int    `json:"totalTime"` // seconds of game time consumed
	GameState  string `json:"gameState"`
}

// Feedback is the post-game questionnaire submitted from the results view.
type Feedback struct {
	Satisfaction  int    `json:"satisfaction"` // 1-5 scale
	MostDifficult string `json:"mostDifficult"`
	WillReturn    bool   `json:"willReturn"`
}

// Sink records game telemetry. Both methods are fire-and-forget: internal
// failures are logged by the implementation and never returned, so callers
// can invoke them inline on the gameplay path.
type Sink interface {
	// Record appends one event to the game's event stream.
	Record(ctx context.Context, gameID, eventType string, payload map[string]any)

	// UpsertMetadata replaces the game's metadata rollup.
	UpsertMetadata(ctx context.Context, gameID string, md Metadata)
}

// Event types emitted by the core.
const (
	EventGameStarted      = "game_started"
	EventGameEnded        = "game_ended"
	EventWordFound        = "word_found"
	EventHintRequested    = "hint_requested"
	EventHintWordSkipped  = "hint_word_skipped"
	EventHintPreviousWord = "hint_previous_word"
)

// Noop is a Sink that discards everything. Used in tests and as a safe
// default when no analytics backend is configured.
type Noop struct{}

func (Noop) Record(ctx context.Context, gameID, eventType string, payload map[string]any) {}

func (Noop) UpsertMetadata(ctx context.Context, gameID string, md Metadata) {}
