// apps/go-server/internal/session/manager.go
//
// Session manager: owns the active session per player identity and the
// start / resume / reset lifecycle around the state machine.
//
// Notes:
//   - One active session per identity. Starting a new game replaces the
//     previous session outright (fresh instance, never a state rewind).
//   - Resume honors the 24h snapshot staleness threshold and consults the
//     completion store first, so a finished puzzle can only be viewed,
//     never replayed.

package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
	"github.com/wordflower/wordflower/apps/go-server/internal/catalog"
	"github.com/wordflower/wordflower/apps/go-server/internal/store"
)

// SnapshotTTL is the staleness threshold beyond which a saved session is
// discarded instead of offered for resume.
const SnapshotTTL = 24 * time.Hour

var (
	// ErrNoSession reports that the identity has no active session.
	ErrNoSession = errors.New("session: no active session")
	// ErrAlreadyCompleted reports a resume attempt on a finished puzzle.
	ErrAlreadyCompleted = errors.New("session: puzzle already completed")
	// ErrNoPuzzlesLeft reports that the identity has finished every
	// catalog puzzle.
	ErrNoPuzzlesLeft = errors.New("session: all puzzles completed")
)

// Config tunes the manager. Zero values select production defaults.
type Config struct {
	Budget       int           // countdown seconds; default DefaultBudget
	TickInterval time.Duration // ticker period; 0 disables the background ticker (tests drive Tick)
	Rand         *rand.Rand    // seedable randomness; default time-seeded
}

// Manager owns active sessions keyed by player identity.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cat         *catalog.Catalog
	validator   Validator
	sink        analytics.Sink
	snaps       store.Snapshots
	completions Completions
	cfg         Config
}

// NewManager wires the session machinery. The catalog itself serves as the
// authoritative validator in-process; a remote validator can be substituted.
func NewManager(cat *catalog.Catalog, v Validator, sink analytics.Sink, snaps store.Snapshots, comp Completions, cfg Config) *Manager {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if v == nil {
		v = cat
	}
	if sink == nil {
		sink = analytics.Noop{}
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		cat:         cat,
		validator:   v,
		sink:        sink,
		snaps:       snaps,
		completions: comp,
		cfg:         cfg,
	}
}

// Get returns the identity's active session.
func (m *Manager) Get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	return nil, ErrNoSession
}

// Start begins a fresh session: picks an uncompleted puzzle, resets the
// ledger, buffer, and timer, clears any prior snapshot, and emits
// game_started. Any previous active session for the identity is abandoned.
func (m *Manager) Start(ctx context.Context, userID string) (*Session, error) {
	puzzle, err := m.pickUncompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := m.newSession(userID, puzzle)
	s.state = StatePlaying

	if err := m.snaps.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("clear prior snapshot")
	}

	m.install(userID, s)

	s.sink.Record(ctx, s.id, analytics.EventGameStarted, map[string]any{
		"puzzleId":     puzzle.ID,
		"wordCount":    puzzle.WordCount,
		"pangramCount": puzzle.PangramCount,
	})
	s.mu.Lock()
	s.saveSnapshotLocked(ctx)
	s.mu.Unlock()

	if m.cfg.TickInterval > 0 {
		go s.runTicker(m.cfg.TickInterval)
	}
	return s, nil
}

// Resume restores a session from the identity's saved snapshot.
// Returns ErrAlreadyCompleted (with the prior result) when the completion
// store says this puzzle was already finished — the caller redirects to a
// read-only results view instead of resuming play. A stale (>24h) or
// unusable snapshot is discarded and reported as store.ErrNoSnapshot.
func (m *Manager) Resume(ctx context.Context, userID string) (*Session, *Result, error) {
	snap, err := m.snaps.Load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if time.Since(snap.SavedAt) > SnapshotTTL {
		log.Info().Str("user", userID).Time("savedAt", snap.SavedAt).Msg("discarding stale snapshot")
		_ = m.snaps.Clear(ctx, userID)
		return nil, nil, store.ErrNoSnapshot
	}

	puzzle, err := m.cat.Lookup(snap.PuzzleID)
	if err != nil {
		// Catalog moved on; the snapshot references nothing playable.
		_ = m.snaps.Clear(ctx, userID)
		return nil, nil, store.ErrNoSnapshot
	}

	// Replay prevention: a finished puzzle is only viewable.
	done, prior, err := m.completions.IsCompleted(ctx, userID, puzzle.ID)
	if err != nil {
		return nil, nil, err
	}
	if done {
		_ = m.snaps.Clear(ctx, userID)
		return nil, prior, ErrAlreadyCompleted
	}

	if snap.State != string(StatePlaying) {
		_ = m.snaps.Clear(ctx, userID)
		return nil, nil, store.ErrNoSnapshot
	}

	s := m.newSession(userID, puzzle)
	s.id = snap.SessionID
	s.state = StatePlaying
	s.buffer = snap.Buffer
	s.remaining = snap.Remaining
	s.createdAt = snap.CreatedAt
	for _, w := range snap.FoundWords {
		if !s.foundSet[w] {
			s.foundSet[w] = true
			s.found = append(s.found, w)
		}
	}

	m.install(userID, s)
	if m.cfg.TickInterval > 0 {
		go s.runTicker(m.cfg.TickInterval)
	}
	return s, nil, nil
}

// Reset abandons the identity's active session and clears its snapshot.
func (m *Manager) Reset(ctx context.Context, userID string) {
	m.mu.Lock()
	old := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if old != nil {
		old.abandon()
	}
	if err := m.snaps.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("clear snapshot on reset")
	}
}

// newSession builds an unstarted session bound to the manager's ports.
func (m *Manager) newSession(userID string, puzzle *catalog.Puzzle) *Session {
	m.mu.Lock()
	seed := m.cfg.Rand.Int63()
	m.mu.Unlock()
	return &Session{
		id:          uuid.NewString(),
		userID:      userID,
		puzzle:      puzzle,
		cfg:         puzzle.Config.Clone(),
		state:       StateNotStarted,
		foundSet:    make(map[string]bool),
		remaining:   m.cfg.Budget,
		budget:      m.cfg.Budget,
		createdAt:   time.Now().UTC(),
		rng:         rand.New(rand.NewSource(seed)),
		validator:   m.validator,
		sink:        m.sink,
		snaps:       m.snaps,
		completions: m.completions,
		stopTick:    make(chan struct{}),
	}
}

// install replaces any previous session for the identity.
func (m *Manager) install(userID string, s *Session) {
	m.mu.Lock()
	old := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()
	if old != nil {
		old.abandon()
	}
}

// pickUncompleted selects uniformly among puzzles the identity has not
// finished yet.
func (m *Manager) pickUncompleted(ctx context.Context, userID string) (*catalog.Puzzle, error) {
	var candidates []string
	for _, id := range m.cat.IDs() {
		done, _, err := m.completions.IsCompleted(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if !done {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoPuzzlesLeft
	}
	m.mu.Lock()
	id := candidates[m.cfg.Rand.Intn(len(candidates))]
	m.mu.Unlock()
	return m.cat.Lookup(id)
}

// abandon silently retires a replaced session: the ticker stops and the
// state leaves playing so in-flight validations are discarded.
func (s *Session) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		s.state = StateEnded
	}
	s.stopOnce.Do(func() { close(s.stopTick) })
}
