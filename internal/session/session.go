// apps/go-server/internal/session/session.go
//
// Core state machine for a single Wordflower session.
// Responsibilities:
//   - Lifecycle: not_started → playing → ended (linear; a new attempt is
//     a brand-new session, never a transition back).
//   - Found-word ledger and in-progress word buffer.
//   - Countdown timer with auto-end, visibility-driven suspension, and
//     periodic best-effort metadata flush.
//   - Snapshot after every mutation while playing.
//
// Concurrency:
//   - One logical player per session, but the timer tick is a background
//     mutation concurrent with user input. Everything is serialized under
//     the session mutex; the authoritative word validation runs outside
//     the lock and its response is discarded if the session moved on.
package session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
	"github.com/wordflower/wordflower/apps/go-server/internal/catalog"
	"github.com/wordflower/wordflower/apps/go-server/internal/letters"
	"github.com/wordflower/wordflower/apps/go-server/internal/store"
)

// State is the session lifecycle state.
type State string

const (
	StateNotStarted State = "not_started"
	StatePlaying    State = "playing"
	StateEnded      State = "ended"
)

// RejectReason classifies why a submitted word was not accepted. These are
// expected, frequent, non-fatal conditions shown to the player as a
// transient message.
type RejectReason string

const (
	RejectTooShort           RejectReason = "too_short"
	RejectAlreadyFound       RejectReason = "already_found"
	RejectInvalidComposition RejectReason = "invalid_composition"
	RejectNotInWordList      RejectReason = "not_in_wordlist"
)

var (
	// ErrNotPlaying reports an operation attempted outside the playing state.
	ErrNotPlaying = errors.New("session: not playing")
	// ErrStale reports a validation response that arrived after the session
	// ended or was replaced; the response is discarded, not applied.
	ErrStale = errors.New("session: stale validation response")
)

// Validator is the authoritative server-held word check. The client's
// cached word list is never trusted for scoring.
type Validator interface {
	Validate(puzzleID, word string) (isValid, isPangram bool, err error)
}

// DefaultBudget is the countdown budget in seconds (30 minutes).
const DefaultBudget = 1800

// metadataFlushEvery is the best-effort rollup interval in game seconds.
const metadataFlushEvery = 30

// Session is one player's attempt at a puzzle.
type Session struct {
	mu sync.Mutex

	id     string
	userID string
	puzzle *catalog.Puzzle
	// cfg is the session's own copy of the puzzle configuration. The
	// catalog's puzzle is shared across sessions and immutable; shuffling
	// the display order must only ever touch this copy.
	cfg letters.Configuration

	state     State
	found     []string
	foundSet  map[string]bool
	buffer    string
	remaining int // seconds left on the countdown
	budget    int
	suspended bool // client backgrounded; ticks do not advance

	createdAt time.Time

	rng         *rand.Rand
	validator   Validator
	sink        analytics.Sink
	snaps       store.Snapshots
	completions Completions

	stopTick chan struct{}
	stopOnce sync.Once
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// PuzzleID returns the id of the puzzle being played.
func (s *Session) PuzzleID() string { return s.puzzle.ID }

// Puzzle returns the immutable puzzle for this session.
func (s *Session) Puzzle() *catalog.Puzzle { return s.puzzle }

// View is a read-only snapshot of session state for API responses.
type View struct {
	SessionID    string   `json:"sessionId"`
	PuzzleID     string   `json:"puzzleId"`
	CenterLetter string   `json:"centerLetter"`
	OuterLetters []string `json:"outerLetters"`
	WordCount    int      `json:"wordCount"`
	PangramCount int      `json:"pangramCount"`
	State        State    `json:"state"`
	FoundWords   []string `json:"foundWords"`
	Buffer       string   `json:"currentWord"`
	Remaining    int      `json:"remaining"`
	Suspended    bool     `json:"suspended"`
}

// View returns the current state for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	outers := make([]string, 0, len(s.cfg.Outers))
	for _, r := range s.cfg.Outers {
		outers = append(outers, string(r))
	}
	return View{
		SessionID:    s.id,
		PuzzleID:     s.puzzle.ID,
		CenterLetter: string(s.cfg.Center),
		OuterLetters: outers,
		WordCount:    s.puzzle.WordCount,
		PangramCount: s.puzzle.PangramCount,
		State:        s.state,
		FoundWords:   append([]string(nil), s.found...),
		Buffer:       s.buffer,
		Remaining:    s.remaining,
		Suspended:    s.suspended,
	}
}

// Found reports whether the word is already in the found-word ledger.
// The hint layer consults this on every cursor operation.
func (s *Session) Found(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.foundSet[strings.ToLower(word)]
}

// ----------------------------- buffer ops ----------------------------------

// AppendLetter appends one letter to the in-progress word. Letters outside
// the puzzle's configuration are ignored, mirroring the original keyboard
// handler. Playing-only.
func (s *Session) AppendLetter(ctx context.Context, ch rune) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	if !s.cfg.Contains(ch) {
		return nil
	}
	s.buffer += strings.ToUpper(string(ch))
	s.saveSnapshotLocked(ctx)
	return nil
}

// Backspace removes the last buffered letter. Playing-only.
func (s *Session) Backspace(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	if s.buffer != "" {
		r := []rune(s.buffer)
		s.buffer = string(r[:len(r)-1])
	}
	s.saveSnapshotLocked(ctx)
	return nil
}

// ClearBuffer empties the in-progress word. Playing-only.
func (s *Session) ClearBuffer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	s.buffer = ""
	s.saveSnapshotLocked(ctx)
	return nil
}

// ----------------------------- submit --------------------------------------

// SubmitResult reports the outcome of one submission attempt.
type SubmitResult struct {
	Accepted       bool         `json:"accepted"`
	Reason         RejectReason `json:"reason,omitempty"`
	Word           string       `json:"word"`
	IsPangram      bool         `json:"isPangram"`
	WordsFound     int          `json:"wordsFound"`
	CompletionRate int          `json:"completionRate"` // percent
}

// Submit runs the validation pipeline on the buffered word.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	buffered := s.buffer
	s.mu.Unlock()
	return s.SubmitWord(ctx, buffered)
}

// SubmitWord runs the validation pipeline on word. Each failure
// short-circuits with a distinct reason; none of them end the session.
// The authoritative word-list check happens outside the session lock, and
// its response is discarded (ErrStale) if the session is no longer playing
// the same puzzle when it returns.
func (s *Session) SubmitWord(ctx context.Context, raw string) (SubmitResult, error) {
	s.mu.Lock()
	if s.state != StatePlaying {
		s.mu.Unlock()
		return SubmitResult{}, ErrNotPlaying
	}

	word := strings.ToLower(strings.TrimSpace(raw))
	res := SubmitResult{Word: word, WordsFound: len(s.found), CompletionRate: s.completionRateLocked()}

	if len([]rune(word)) < letters.MinWordLength {
		res.Reason = RejectTooShort
		s.mu.Unlock()
		return res, nil
	}
	if s.foundSet[word] {
		res.Reason = RejectAlreadyFound
		s.mu.Unlock()
		return res, nil
	}
	if !letters.IsAdmissible(word, s.cfg) {
		res.Reason = RejectInvalidComposition
		s.mu.Unlock()
		return res, nil
	}

	puzzleID := s.puzzle.ID
	s.mu.Unlock()

	// Authoritative check against the server-held word list. May be remote;
	// must complete before any state update.
	isValid, isPangram, err := s.validator.Validate(puzzleID, word)
	if err != nil {
		return SubmitResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Discard stale responses: the countdown may have auto-ended the game
	// or the player may have reset while the check was in flight.
	if s.state != StatePlaying || s.puzzle.ID != puzzleID {
		return SubmitResult{}, ErrStale
	}
	if s.foundSet[word] {
		res.Reason = RejectAlreadyFound
		return res, nil
	}
	if !isValid {
		res.Reason = RejectNotInWordList
		return res, nil
	}

	s.found = append(s.found, word)
	s.foundSet[word] = true
	s.buffer = ""

	res.Accepted = true
	res.IsPangram = isPangram
	res.WordsFound = len(s.found)
	res.CompletionRate = s.completionRateLocked()

	s.sink.Record(ctx, s.id, analytics.EventWordFound, map[string]any{
		"word":           word,
		"isPangram":      isPangram,
		"wordsFound":     len(s.found),
		"completionRate": res.CompletionRate,
	})
	s.saveSnapshotLocked(ctx)
	return res, nil
}

// completionRateLocked computes |found| / wordCount × 100, rounded down.
func (s *Session) completionRateLocked() int {
	if s.puzzle.WordCount == 0 {
		return 0
	}
	return len(s.found) * 100 / s.puzzle.WordCount
}

// ----------------------------- shuffle -------------------------------------

// Shuffle permutes the display order of the outer letters. Purely cosmetic;
// admissibility is unaffected. Playing-only.
func (s *Session) Shuffle(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return nil, ErrNotPlaying
	}
	s.cfg.Shuffle(s.rng)
	out := make([]string, 0, len(s.cfg.Outers))
	for _, r := range s.cfg.Outers {
		out = append(out, string(r))
	}
	s.saveSnapshotLocked(ctx)
	return out, nil
}

// ----------------------------- timer ---------------------------------------

// Suspend pauses the countdown while the client is backgrounded. Missed
// ticks are never caught up; game time and wall time diverge by design of
// the visibility rules.
func (s *Session) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspended = true
}

// Unsuspend resumes the countdown after the client returns to foreground.
func (s *Session) Unsuspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspended = false
}

// Tick advances the countdown by one second. No-op unless playing and not
// suspended. Reaching zero auto-ends the session exactly once, identically
// to an explicit End. Exposed so tests can drive time directly; in
// production a per-session ticker goroutine calls it.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || s.suspended {
		return
	}
	s.remaining--
	elapsed := s.budget - s.remaining
	if s.remaining <= 0 {
		s.remaining = 0
		_, _ = s.endLocked(ctx)
		return
	}
	if elapsed%metadataFlushEvery == 0 {
		s.sink.UpsertMetadata(ctx, s.id, s.metadataLocked())
	}
	s.saveSnapshotLocked(ctx)
}

// runTicker is the cancellable periodic task bound to the session lifecycle.
func (s *Session) runTicker(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stopTick:
			return
		case <-t.C:
			s.Tick(context.Background())
		}
	}
}

// ----------------------------- end -----------------------------------------

// Summary is the final outcome returned by End.
type Summary struct {
	SessionID      string   `json:"sessionId"`
	PuzzleID       string   `json:"puzzleId"`
	FoundWords     []string `json:"foundWords"`
	WordsFound     int      `json:"wordsFound"`
	TotalTime      int      `json:"totalTime"` // game seconds consumed
	CompletionRate int      `json:"completionRate"`
}

// End transitions playing → ended: stops the timer, emits the final
// analytics, clears the snapshot, and writes the permanent completion
// record so this puzzle is never resumable by this identity again.
func (s *Session) End(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return nil, ErrNotPlaying
	}
	return s.endLocked(ctx)
}

func (s *Session) endLocked(ctx context.Context) (*Summary, error) {
	s.state = StateEnded
	s.stopOnce.Do(func() { close(s.stopTick) })

	sum := &Summary{
		SessionID:      s.id,
		PuzzleID:       s.puzzle.ID,
		FoundWords:     append([]string(nil), s.found...),
		WordsFound:     len(s.found),
		TotalTime:      s.budget - s.remaining,
		CompletionRate: s.completionRateLocked(),
	}

	s.sink.Record(ctx, s.id, analytics.EventGameEnded, map[string]any{
		"wordsFound":     sum.WordsFound,
		"totalTime":      sum.TotalTime,
		"completionRate": sum.CompletionRate,
	})
	s.sink.UpsertMetadata(ctx, s.id, s.metadataLocked())

	// Completed puzzles are never replayable; the record is permanent.
	if err := s.completions.MarkCompleted(ctx, s.userID, s.puzzle.ID, Result{
		FoundWords: sum.FoundWords,
		TotalTime:  sum.TotalTime,
	}); err != nil {
		log.Warn().Err(err).Str("user", s.userID).Str("puzzle", s.puzzle.ID).
			Msg("record completion")
	}
	if err := s.snaps.Clear(ctx, s.userID); err != nil {
		log.Warn().Err(err).Str("user", s.userID).Msg("clear snapshot on end")
	}
	return sum, nil
}

// ----------------------------- persistence ---------------------------------

// saveSnapshotLocked persists the current state, best effort. Persistence
// failures never interrupt play.
func (s *Session) saveSnapshotLocked(ctx context.Context) {
	if s.state != StatePlaying {
		return
	}
	snap := store.Snapshot{
		SessionID:  s.id,
		PuzzleID:   s.puzzle.ID,
		FoundWords: append([]string(nil), s.found...),
		Buffer:     s.buffer,
		Remaining:  s.remaining,
		State:      string(s.state),
		CreatedAt:  s.createdAt,
		SavedAt:    time.Now().UTC(),
	}
	if err := s.snaps.Save(ctx, s.userID, snap); err != nil {
		log.Warn().Err(err).Str("user", s.userID).Msg("save snapshot")
	}
}

func (s *Session) metadataLocked() analytics.Metadata {
	return analytics.Metadata{
		TotalWords: s.puzzle.WordCount,
		WordsFound: len(s.found),
		TotalTime:  s.budget - s.remaining,
		GameState:  string(s.state),
	}
}
