// apps/go-server/internal/hints/cursor.go
//
// Rotating-pointer state machine over the hint candidate pool.
// Responsibilities:
//   - Per-word 4-level progressive disclosure (level saturates at 4).
//   - Circular skip to the next not-yet-found word, bounded so a fully
//     found pool terminates with the index unchanged.
//   - Backward navigation restricted to previously visited, still unfound
//     words.
//
// Hint state is session-scoped and is rebuilt from the pool on resume;
// it does not persist with the game snapshot.

package hints

import (
	"context"
	"sync"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
)

// FoundFunc reports whether a word is already in the found-word ledger.
// The cursor is independent of the session state machine but driven by
// the same ledger through this callback.
type FoundFunc func(word string) bool

// Cursor walks the hint candidate pool for one game.
type Cursor struct {
	mu sync.Mutex

	entries []Entry
	idx     int
	level   int // 0..MaxLevel for the current word
	visited map[int]bool
	visits  []int // first-visit order, drives backward navigation

	found  FoundFunc
	sink   analytics.Sink
	gameID string
}

// NewCursor builds a cursor over the pool. The found callback is consulted
// on every operation, never cached.
func NewCursor(entries []Entry, found FoundFunc, sink analytics.Sink, gameID string) *Cursor {
	if sink == nil {
		sink = analytics.Noop{}
	}
	return &Cursor{
		entries: entries,
		visited: make(map[int]bool),
		found:   found,
		sink:    sink,
		gameID:  gameID,
	}
}

// View is what the client may see: hint content up to the current level,
// never the target word itself.
type View struct {
	Index      int            `json:"index"`
	PoolSize   int            `json:"poolSize"`
	Level      int            `json:"level"`
	Hints      map[int]string `json:"hints"` // levels 1..Level
	WordLength int            `json:"wordLength"`
	WordFound  bool           `json:"wordFound"`
}

// View reports the current cursor state for rendering. All disclosed
// levels are included: display is cumulative, only the deepest is active.
func (c *Cursor) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Cursor) viewLocked() View {
	v := View{
		Index:    c.idx,
		PoolSize: len(c.entries),
		Level:    c.level,
		Hints:    map[int]string{},
	}
	if len(c.entries) == 0 {
		return v
	}
	e := c.entries[c.idx]
	v.WordLength = len(e.Word)
	v.WordFound = c.found(e.Word)
	for lvl := 1; lvl <= c.level; lvl++ {
		v.Hints[lvl] = e.Level(lvl)
	}
	return v
}

// RequestNextHint deepens disclosure for the current word by one level.
// Saturates silently at MaxLevel (no wrap, no error, no event) and is a
// no-op when the current word has already been found.
func (c *Cursor) RequestNextHint(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return c.viewLocked()
	}
	if c.found(c.entries[c.idx].Word) || c.level >= MaxLevel {
		return c.viewLocked()
	}
	c.level++
	c.visitLocked(c.idx)
	c.sink.Record(ctx, c.gameID, analytics.EventHintRequested, map[string]any{
		"index": c.idx,
		"level": c.level,
	})
	return c.viewLocked()
}

// SkipToNextWord advances the cursor circularly past found words, bounded
// by the pool size: if every candidate is found the index stays put. The
// new word opens at level 1, immediately showing its first hint.
func (c *Cursor) SkipToNextWord(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	if n == 0 {
		return c.viewLocked()
	}

	next := (c.idx + 1) % n
	for attempts := 0; attempts < n && c.found(c.entries[next].Word); attempts++ {
		next = (next + 1) % n
	}
	if c.found(c.entries[next].Word) {
		// Everything is found; stay where we are.
		return c.viewLocked()
	}

	c.idx = next
	c.level = 1
	c.visitLocked(c.idx)
	c.sink.Record(ctx, c.gameID, analytics.EventHintWordSkipped, map[string]any{
		"index": c.idx,
	})
	return c.viewLocked()
}

// PreviousWord navigates backward through previously visited, still
// unfound words (a filtered walk over the visit history, not over the
// whole pool). With no eligible target it is a no-op — an informational
// condition, not an error — reported via the moved flag.
func (c *Cursor) PreviousWord(ctx context.Context) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 || len(c.visits) == 0 {
		return c.viewLocked(), false
	}

	// Position of the current index in the visit history; unvisited
	// current position starts the walk from the end.
	pos := len(c.visits)
	for i, v := range c.visits {
		if v == c.idx {
			pos = i
			break
		}
	}

	for step := 1; step <= len(c.visits); step++ {
		i := ((pos-step)%len(c.visits) + len(c.visits)) % len(c.visits)
		cand := c.visits[i]
		if cand == c.idx || c.found(c.entries[cand].Word) {
			continue
		}
		c.idx = cand
		c.level = 1
		c.sink.Record(ctx, c.gameID, analytics.EventHintPreviousWord, map[string]any{
			"index": c.idx,
		})
		return c.viewLocked(), true
	}
	return c.viewLocked(), false
}

// visitLocked records the first visit to an index.
func (c *Cursor) visitLocked(i int) {
	if !c.visited[i] {
		c.visited[i] = true
		c.visits = append(c.visits, i)
	}
}
