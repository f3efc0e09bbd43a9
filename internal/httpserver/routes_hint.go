// apps/go-server/internal/httpserver/routes_hint.go
//
// Hint endpoints. Each active game gets one cursor over a sampled pool of
// unfound answer words; the cursor lives in server memory keyed by session
// id and is rebuilt on demand after a resume or restart. Hint views never
// contain the target word itself.

package httpserver

import (
	"encoding/json"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wordflower/wordflower/apps/go-server/internal/hints"
	"github.com/wordflower/wordflower/apps/go-server/internal/session"
)

// mountHintRoutes registers /hint endpoints.
func (s *Server) mountHintRoutes() {
	s.r.Route("/hint", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/pool", s.handleHintPool)
		r.Post("/next", s.handleHintNext)
		r.Post("/skip", s.handleHintSkip)
		r.Post("/previous", s.handleHintPrevious)
	})
}

// cursorFor returns the game's cursor, building the pool on first use.
func (s *Server) cursorFor(r *http.Request, sess *session.Session) *hints.Cursor {
	s.mu.Lock()
	if c, ok := s.cursors[sess.ID()]; ok {
		s.mu.Unlock()
		return c
	}
	// The shared generator is only touched under the lock; pool sampling
	// gets its own derived source since construction runs unlocked.
	seed := s.rng.Int63()
	s.mu.Unlock()

	// Pool construction fetches lexical content, so it runs outside the
	// cursor-map lock.
	rng := rand.New(rand.NewSource(seed))
	pool := hints.BuildPool(r.Context(), sess.Puzzle().AnswerWords(), s.hintProv, rng, s.poolSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cursors[sess.ID()]; ok {
		return c
	}
	c := hints.NewCursor(pool, sess.Found, s.sink, sess.ID())
	s.cursors[sess.ID()] = c
	return c
}

// dropCursor discards hint state when a game ends or is replaced.
func (s *Server) dropCursor(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, sessionID)
}

// handleHintPool materializes (or returns) the cursor for the active game.
func (s *Server) handleHintPool(w http.ResponseWriter, r *http.Request) {
	c, ok := s.hintCursor(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(c.View())
}

// handleHintNext deepens disclosure for the current hint word.
func (s *Server) handleHintNext(w http.ResponseWriter, r *http.Request) {
	c, ok := s.hintCursor(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(c.RequestNextHint(r.Context()))
}

// handleHintSkip advances to the next unfound hint word.
func (s *Server) handleHintSkip(w http.ResponseWriter, r *http.Request) {
	c, ok := s.hintCursor(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(c.SkipToNextWord(r.Context()))
}

// handleHintPrevious steps back to an earlier, still-unfound hint word.
// With nowhere to go the current view comes back with moved=false.
func (s *Server) handleHintPrevious(w http.ResponseWriter, r *http.Request) {
	c, ok := s.hintCursor(w, r)
	if !ok {
		return
	}
	view, moved := c.PreviousWord(r.Context())
	_ = json.NewEncoder(w).Encode(struct {
		hints.View
		Moved bool `json:"moved"`
	}{View: view, Moved: moved})
}

// hintCursor resolves the caller's cursor. Only playing sessions get
// one: an ended game (explicit or via the countdown) drops its hint state
// instead of continuing to emit hint events.
func (s *Server) hintCursor(w http.ResponseWriter, r *http.Request) (*hints.Cursor, bool) {
	sess, ok := s.activeSession(w, r)
	if !ok {
		return nil, false
	}
	if sess.View().State != session.StatePlaying {
		s.dropCursor(sess.ID())
		http.Error(w, `{"error":"not_playing"}`, http.StatusConflict)
		return nil, false
	}
	if s.hintProv == nil {
		http.Error(w, `{"error":"hints_unavailable"}`, http.StatusServiceUnavailable)
		return nil, false
	}
	c := s.cursorFor(r, sess)
	return c, true
}
