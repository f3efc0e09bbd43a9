// apps/go-server/internal/hints/cache.go
//
// Caching layer in front of a ContentProvider. Entries are immutable once
// fetched and the universe of words is finite, so the in-memory cache is
// deliberately unbounded with no expiry. A SQLite-backed cache keeps
// content across restarts. Caches are explicit, injectable objects so
// tests can substitute fakes.

package hints

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Cache stores fetched entries keyed by lowercased word. Only successful
// lookups are cached; "no usable content" is re-checked on demand.
type Cache interface {
	Get(ctx context.Context, word string) (*Entry, bool)
	Put(ctx context.Context, word string, e *Entry)
}

// Cached decorates a provider with a cache.
type Cached struct {
	Provider ContentProvider
	Cache    Cache
}

// Fetch serves from cache when possible, otherwise delegates and caches
// the result.
func (c *Cached) Fetch(ctx context.Context, word string) (*Entry, error) {
	key := strings.ToLower(strings.TrimSpace(word))
	if e, ok := c.Cache.Get(ctx, key); ok {
		return e, nil
	}
	e, err := c.Provider.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if e != nil {
		c.Cache.Put(ctx, key, e)
	}
	return e, nil
}

// ----------------------------- memory ---------------------------------

// MemoryCache is a process-scoped unbounded map cache.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]Entry
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]Entry)}
}

func (c *MemoryCache) Get(ctx context.Context, word string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.m[word]; ok {
		cp := e
		return &cp, true
	}
	return nil, false
}

func (c *MemoryCache) Put(ctx context.Context, word string, e *Entry) {
	if e == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[word] = *e
}

// ----------------------------- SQLite ---------------------------------

// SQLiteCache persists entries in the hint_cache table so lexical content
// survives restarts. Failures degrade to cache misses.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache wraps an open database handle.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) Get(ctx context.Context, word string) (*Entry, bool) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM hint_cache WHERE word=?`, word,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("hint cache read")
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		log.Warn().Err(err).Str("word", word).Msg("hint cache decode")
		return nil, false
	}
	return &e, true
}

func (c *SQLiteCache) Put(ctx context.Context, word string, e *Entry) {
	if e == nil {
		return
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if _, err := c.db.ExecContext(ctx, `
        INSERT INTO hint_cache (word, data)
        VALUES (?, ?)
        ON CONFLICT(word) DO UPDATE SET data=excluded.data`,
		word, string(raw),
	); err != nil {
		log.Warn().Err(err).Str("word", word).Msg("hint cache write")
	}
}
