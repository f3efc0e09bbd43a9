// apps/go-server/internal/httpserver/routes_game.go
//
// Gameplay endpoints. All routes here require auth; the authenticated user
// id keys the session manager. Handlers translate HTTP to session
// operations and map the session error taxonomy to status codes:
//   - submission rejections are 200 with a reason (expected, frequent),
//   - missing session/snapshot is 404,
//   - operations outside the playing state are 409,
//   - a failed authoritative word check is 502 (retryable).

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wordflower/wordflower/apps/go-server/internal/session"
	"github.com/wordflower/wordflower/apps/go-server/internal/store"
)

// mountGameRoutes registers /game endpoints.
func (s *Server) mountGameRoutes() {
	s.r.Route("/game", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/new", s.handleGameNew)
		r.Post("/resume", s.handleGameResume)
		r.Post("/input", s.handleGameInput)
		r.Post("/submit", s.handleGameSubmit)
		r.Post("/shuffle", s.handleGameShuffle)
		r.Post("/visibility", s.handleGameVisibility)
		r.Post("/end", s.handleGameEnd)
		r.Post("/validate", s.handleGameValidate)
		r.Get("/words", s.handleGameWords)
		r.Get("/completed", s.handleGameCompleted)
	})
}

// activeSession resolves the caller's session or writes a 404.
func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return nil, false
	}
	sess, err := s.mgr.Get(me.ID)
	if err != nil {
		http.Error(w, `{"error":"no_active_game"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// handleGameNew starts a fresh game on a puzzle the caller has not
// completed yet. Any previous active game is abandoned.
func (s *Server) handleGameNew(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	// Starting abandons any previous game; its hint state goes with it.
	if old, err := s.mgr.Get(me.ID); err == nil {
		s.dropCursor(old.ID())
	}
	sess, err := s.mgr.Start(r.Context(), me.ID)
	if err != nil {
		if errors.Is(err, session.ErrNoPuzzlesLeft) {
			http.Error(w, `{"error":"no_puzzles_left"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"start_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

type resumeRes struct {
	session.View
	Resumed bool `json:"resumed"`
}

// handleGameResume restores the caller's saved game. An already-completed
// puzzle is never resumed: the prior result comes back with a 409 so the
// client can show the read-only results view instead.
func (s *Server) handleGameResume(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	sess, prior, err := s.mgr.Resume(r.Context(), me.ID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyCompleted):
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":  "already_completed",
				"result": prior,
			})
		case errors.Is(err, store.ErrNoSnapshot):
			http.Error(w, `{"error":"no_snapshot"}`, http.StatusNotFound)
		default:
			http.Error(w, `{"error":"resume_failed"}`, http.StatusInternalServerError)
		}
		return
	}
	_ = json.NewEncoder(w).Encode(resumeRes{View: sess.View(), Resumed: true})
}

type inputReq struct {
	Op     string `json:"op"` // "letter" | "backspace" | "clear"
	Letter string `json:"letter,omitempty"`
}

// handleGameInput edits the in-progress word buffer.
func (s *Server) handleGameInput(w http.ResponseWriter, r *http.Request) {
	var body inputReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}

	var err error
	switch body.Op {
	case "letter":
		runes := []rune(body.Letter)
		if len(runes) != 1 {
			http.Error(w, `{"error":"letter must be a single character"}`, http.StatusBadRequest)
			return
		}
		err = sess.AppendLetter(r.Context(), runes[0])
	case "backspace":
		err = sess.Backspace(r.Context())
	case "clear":
		err = sess.ClearBuffer(r.Context())
	default:
		http.Error(w, `{"error":"unknown op"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"not_playing"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.View())
}

type submitReq struct {
	Word string `json:"word,omitempty"` // empty submits the buffered word
}

// handleGameSubmit runs the validation pipeline. Rejections are a normal
// part of play, so they come back 200 with accepted=false and a reason.
func (s *Server) handleGameSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitReq
	_ = json.NewDecoder(r.Body).Decode(&body)
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}

	var res session.SubmitResult
	var err error
	if body.Word != "" {
		res, err = sess.SubmitWord(r.Context(), body.Word)
	} else {
		res, err = sess.Submit(r.Context())
	}
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotPlaying), errors.Is(err, session.ErrStale):
			http.Error(w, `{"error":"not_playing"}`, http.StatusConflict)
		default:
			// Authoritative check failed; the word was not scored.
			http.Error(w, `{"error":"validation_unavailable","retry":true}`, http.StatusBadGateway)
		}
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleGameShuffle permutes the outer-letter display order.
func (s *Server) handleGameShuffle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}
	letters, err := sess.Shuffle(r.Context())
	if err != nil {
		http.Error(w, `{"error":"not_playing"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"outerLetters": letters})
}

type visibilityReq struct {
	Hidden bool `json:"hidden"`
}

// handleGameVisibility pauses or resumes the countdown as the client tab
// goes to background and back. Missed time is never caught up.
func (s *Server) handleGameVisibility(w http.ResponseWriter, r *http.Request) {
	var body visibilityReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}
	if body.Hidden {
		sess.Suspend()
	} else {
		sess.Unsuspend()
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"suspended": body.Hidden})
}

// handleGameEnd finishes the game explicitly and returns the summary.
func (s *Server) handleGameEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}
	sum, err := sess.End(r.Context())
	if err != nil {
		http.Error(w, `{"error":"not_playing"}`, http.StatusConflict)
		return
	}
	s.dropCursor(sess.ID())
	_ = json.NewEncoder(w).Encode(sum)
}

type validateWordReq struct {
	Word string `json:"word"`
}

// handleGameValidate is the authoritative membership check for the current
// puzzle. Read-only: nothing is scored or recorded.
func (s *Server) handleGameValidate(w http.ResponseWriter, r *http.Request) {
	var body validateWordReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}
	isValid, isPangram := sess.Puzzle().Validate(body.Word)
	_ = json.NewEncoder(w).Encode(map[string]bool{
		"isValid":   isValid,
		"isPangram": isPangram,
	})
}

// handleGameWords returns the full answer set for the current puzzle. The
// client caches it for instant feedback; the server remains authoritative
// for scoring.
func (s *Server) handleGameWords(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.activeSession(w, r)
	if !ok {
		return
	}
	p := sess.Puzzle()
	_ = json.NewEncoder(w).Encode(map[string]any{
		"puzzleId":     p.ID,
		"words":        p.AnswerWords(),
		"wordCount":    p.WordCount,
		"pangramCount": p.PangramCount,
	})
}

// handleGameCompleted reports whether the caller already finished a given
// puzzle, with the recorded result when so.
func (s *Server) handleGameCompleted(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	puzzleID := r.URL.Query().Get("puzzleId")
	if puzzleID == "" {
		http.Error(w, `{"error":"puzzleId required"}`, http.StatusBadRequest)
		return
	}
	done, res, err := s.completions.IsCompleted(r.Context(), me.ID, puzzleID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	out := map[string]any{"completed": done}
	if done {
		out["result"] = res
	}
	_ = json.NewEncoder(w).Encode(out)
}
