// apps/go-server/internal/httpserver/routes_analytics.go
//
// Analytics endpoints. Event recording and metadata upserts are
// fire-and-forget: the sink swallows storage failures, so these handlers
// always acknowledge. Feedback is the exception — the participant is told
// when their questionnaire did not persist.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
)

// mountAnalyticsRoutes registers /analytics endpoints.
func (s *Server) mountAnalyticsRoutes() {
	s.r.Route("/analytics", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/", s.handleAnalyticsEvent)
		r.Patch("/metadata", s.handleAnalyticsMetadata)
		r.Post("/feedback", s.handleAnalyticsFeedback)
		r.Get("/events", s.handleAnalyticsEvents)
	})
}

type eventReq struct {
	GameID    string         `json:"gameId"`
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
}

// handleAnalyticsEvent appends one client-side event to the stream.
func (s *Server) handleAnalyticsEvent(w http.ResponseWriter, r *http.Request) {
	var body eventReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if body.GameID == "" || body.EventType == "" {
		http.Error(w, `{"error":"gameId and eventType required"}`, http.StatusBadRequest)
		return
	}
	s.sink.Record(r.Context(), body.GameID, body.EventType, body.Payload)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type metadataReq struct {
	GameID   string             `json:"gameId"`
	Metadata analytics.Metadata `json:"metadata"`
}

// handleAnalyticsMetadata upserts the per-game rollup row.
func (s *Server) handleAnalyticsMetadata(w http.ResponseWriter, r *http.Request) {
	var body metadataReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if body.GameID == "" {
		http.Error(w, `{"error":"gameId required"}`, http.StatusBadRequest)
		return
	}
	s.sink.UpsertMetadata(r.Context(), body.GameID, body.Metadata)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type feedbackReq struct {
	GameID        string `json:"gameId"`
	Satisfaction  int    `json:"satisfaction"`
	MostDifficult string `json:"mostDifficult"`
	WillReturn    bool   `json:"willReturn"`
}

// handleAnalyticsFeedback stores the post-game questionnaire.
func (s *Server) handleAnalyticsFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		http.Error(w, `{"error":"feedback_unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var body feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if body.GameID == "" || body.Satisfaction < 1 || body.Satisfaction > 5 {
		http.Error(w, `{"error":"gameId and satisfaction 1-5 required"}`, http.StatusBadRequest)
		return
	}
	fb := analytics.Feedback{
		Satisfaction:  body.Satisfaction,
		MostDifficult: body.MostDifficult,
		WillReturn:    body.WillReturn,
	}
	if err := s.feedback.RecordFeedback(r.Context(), me.ID, body.GameID, fb); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleAnalyticsEvents returns the recorded stream for a game, oldest
// first (researcher/debug view).
func (s *Server) handleAnalyticsEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, `{"error":"events_unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, `{"error":"gameId required"}`, http.StatusBadRequest)
		return
	}
	rows, err := s.events.Events(r.Context(), gameID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}
