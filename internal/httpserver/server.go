// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Wordflower backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", auth validate/signup/logout.
//   - Gated game, hint, and analytics endpoints (require a valid token).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Gameplay is keyed on the authenticated user id; the session manager
//     owns all game state, handlers only translate HTTP to operations.
//   - Analytics endpoints never fail the caller: events are fire-and-forget.

package httpserver

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
	"github.com/wordflower/wordflower/apps/go-server/internal/catalog"
	"github.com/wordflower/wordflower/apps/go-server/internal/hints"
	"github.com/wordflower/wordflower/apps/go-server/internal/session"
)

// FeedbackStore persists post-game questionnaires. Unlike the event sink
// this is user-facing and may fail the request.
type FeedbackStore interface {
	RecordFeedback(ctx context.Context, userID, gameID string, fb analytics.Feedback) error
}

// EventSource reads back the recorded event stream for a game.
type EventSource interface {
	Events(ctx context.Context, gameID string) ([]analytics.EventRow, error)
}

// Deps bundles everything the server needs. Users and Manager are
// required; nil Sink, Feedback, and Events disable the matching endpoints
// gracefully.
type Deps struct {
	Users        Users
	Catalog      *catalog.Catalog
	Manager      *session.Manager
	Sink         analytics.Sink
	Feedback     FeedbackStore
	Events       EventSource
	Completions  session.Completions
	HintProvider hints.ContentProvider
	HintPoolSize int
	Rand         *rand.Rand
}

// Server bundles the router and its collaborators.
type Server struct {
	r     *chi.Mux
	users Users
	cat   *catalog.Catalog
	mgr   *session.Manager
	sink  analytics.Sink

	feedback    FeedbackStore
	events      EventSource
	completions session.Completions

	hintProv hints.ContentProvider
	poolSize int

	mu      sync.Mutex
	rng     *rand.Rand
	cursors map[string]*hints.Cursor // keyed by session id
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	sink := d.Sink
	if sink == nil {
		sink = analytics.Noop{}
	}
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	poolSize := d.HintPoolSize
	if poolSize <= 0 {
		poolSize = hints.DefaultPoolSize
	}

	s := &Server{
		r:           chi.NewRouter(),
		users:       d.Users,
		cat:         d.Catalog,
		mgr:         d.Manager,
		sink:        sink,
		feedback:    d.Feedback,
		events:      d.Events,
		completions: d.Completions,
		hintProv:    d.HintProvider,
		poolSize:    poolSize,
		rng:         rng,
		cursors:     make(map[string]*hints.Cursor),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(15 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordflower-go","endpoints":["/health","/auth/*","/game/*","/hint/*","/analytics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountAuthRoutes()
	s.mountGameRoutes()
	s.mountHintRoutes()
	s.mountAnalyticsRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:3000.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
