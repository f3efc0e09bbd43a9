// apps/go-server/internal/httpserver/auth.go
//
// Participant identity for the Wordflower study server.
// Participants receive opaque access codes out-of-band; POST /auth/validate
// checks the submitted code against the bcrypt hash stored for the name and
// issues an HS256 cookie token. People without a code file a signup request
// that is reviewed manually; no self-service account creation.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an approved participant.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AccessCodeHash string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SignupRequest is a pending access request awaiting manual review.
type SignupRequest struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Age                int    `json:"age"`
	LanguageBackground string `json:"languageBackground"`
}

// ErrDuplicateSignup reports a signup request for an email already on file.
var ErrDuplicateSignup = errors.New("httpserver: signup request already exists")

// Users is the identity store port.
type Users interface {
	FindByName(ctx context.Context, name string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	CreateSignupRequest(ctx context.Context, req SignupRequest) error
}

// ----------------------------- sqlite users --------------------------------

type sqliteUsers struct {
	db *sql.DB
}

// NewSQLiteUsers wraps an open database handle.
func NewSQLiteUsers(db *sql.DB) Users {
	return &sqliteUsers{db: db}
}

func (s *sqliteUsers) FindByName(ctx context.Context, name string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, access_code_hash, created_at
        FROM users WHERE lower(name)=lower(?)`, strings.TrimSpace(name))
	return scanUser(row)
}

func (s *sqliteUsers) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, access_code_hash, created_at
        FROM users WHERE id=?`, id)
	return scanUser(row)
}

func (s *sqliteUsers) CreateSignupRequest(ctx context.Context, req SignupRequest) error {
	var exists int
	_ = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM signup_requests WHERE lower(email)=lower(?)`, req.Email,
	).Scan(&exists)
	if exists == 1 {
		return ErrDuplicateSignup
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO signup_requests (id, name, email, age, language_background, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.Name, req.Email, req.Age, req.LanguageBackground,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Name, &u.AccessCodeHash, &created); err != nil {
		return nil, err
	}
	t, _ := time.Parse(time.RFC3339, created)
	u.CreatedAt = t
	return &u, nil
}

// ----------------------------- memory users --------------------------------

// MemoryUsers is a fixed in-memory identity store for tests and local dev.
type MemoryUsers struct {
	byName  map[string]*User
	byID    map[string]*User
	signups map[string]SignupRequest
}

// NewMemoryUsers builds a store from pre-approved users.
func NewMemoryUsers(users ...*User) *MemoryUsers {
	m := &MemoryUsers{
		byName:  make(map[string]*User),
		byID:    make(map[string]*User),
		signups: make(map[string]SignupRequest),
	}
	for _, u := range users {
		m.byName[strings.ToLower(u.Name)] = u
		m.byID[u.ID] = u
	}
	return m
}

func (m *MemoryUsers) FindByName(ctx context.Context, name string) (*User, error) {
	if u, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *MemoryUsers) FindByID(ctx context.Context, id string) (*User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *MemoryUsers) CreateSignupRequest(ctx context.Context, req SignupRequest) error {
	key := strings.ToLower(req.Email)
	if _, ok := m.signups[key]; ok {
		return ErrDuplicateSignup
	}
	m.signups[key] = req
	return nil
}

// ------------------------------- handlers ----------------------------------

type validateReq struct {
	Name       string `json:"name"`
	AccessCode string `json:"accessCode"`
}

type signupReq struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Age                int    `json:"age"`
	LanguageBackground string `json:"languageBackground"`
}

// mountAuthRoutes registers /auth endpoints.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/validate", s.handleValidate)
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me, err := currentUser(r)
		if err != nil {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(me)
	})
}

// handleValidate checks an access code and sets the auth cookie.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body validateReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.users.FindByName(r.Context(), body.Name)
	if err != nil || !checkAccessCode(u.AccessCodeHash, body.AccessCode) {
		http.Error(w, `{"error":"Invalid name or access code"}`, http.StatusUnauthorized)
		return
	}
	tok, exp, err := signJWT(u.ID, u.Name)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	setAuthCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "name": u.Name})
}

// handleSignup records an access request for manual review.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if err := validateSignup(body); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	req := SignupRequest{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(body.Name),
		Email:              strings.TrimSpace(body.Email),
		Age:                body.Age,
		LanguageBackground: strings.TrimSpace(body.LanguageBackground),
	}
	if err := s.users.CreateSignupRequest(r.Context(), req); err != nil {
		if errors.Is(err, ErrDuplicateSignup) {
			http.Error(w, `{"error":"A request for this email already exists"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": req.ID, "status": "pending"})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// validateSignup enforces the study's participant criteria.
func validateSignup(b signupReq) error {
	name := strings.TrimSpace(b.Name)
	if len(name) < 2 || len(name) > 60 {
		return errors.New("name must be 2-60 chars")
	}
	email := strings.TrimSpace(b.Email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return errors.New("invalid email")
	}
	if b.Age < 16 || b.Age > 100 {
		return errors.New("age must be between 16 and 100")
	}
	return nil
}

// checkAccessCode is a bcrypt verifier.
func checkAccessCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// HashAccessCode bcrypt-hashes a plain access code (admin tooling, tests).
func HashAccessCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(b), err
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/name and a configurable expiry
// (JWT_EXPIRES_DAYS; default 14).
func signJWT(id, name string) (string, time.Time, error) {
	secret := getEnv("JWT_SECRET", "dev_secret_change_me")
	days := 14
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"name": name,
		"exp":  exp.Unix(),
		"iat":  time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

// setAuthCookie writes the auth token cookie with appropriate security
// attributes.
func setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	name := getEnv("COOKIE_NAME", "wordflower_token")
	secure := os.Getenv("NODE_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearAuthCookie deletes the auth token cookie.
func clearAuthCookie(w http.ResponseWriter) {
	name := getEnv("COOKIE_NAME", "wordflower_token")
	secure := os.Getenv("NODE_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or
// the auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(getEnv("COOKIE_NAME", "wordflower_token")); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// authUser is placed into request context by the auth middleware.
type authUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// requireAuth enforces a valid JWT and injects authUser into request
// context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			id, _ := claims["id"].(string)
			name, _ := claims["name"].(string)
			if id == "" || name == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			// Ensure user still exists
			if _, err := s.users.FindByID(r.Context(), id); err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Name: name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser pulls the authenticated user out of request context.
func currentUser(r *http.Request) (*authUser, error) {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if u == nil {
		return nil, errors.New("no user")
	}
	return u, nil
}
