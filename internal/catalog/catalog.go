// apps/go-server/internal/catalog/catalog.go
//
// Precomputed puzzle catalog for the Wordflower game.
// Responsibilities:
//   - Parse the embedded catalog of letter configurations, each annotated
//     with its answer words, pangrams, and precomputed counts.
//   - Uniform-random puzzle selection and exact lookup by id.
//   - Authoritative server-side word validation (the client's cached word
//     list is never trusted for scoring).
//
// Notes:
//   - Catalog entries normally ship precomputed answer words; entries
//     without them are derived live from the frequency dictionary, which
//     is the slower path and only used for ad hoc configurations.
//   - An unknown puzzle id is a normal condition (stale client reference)
//     reported as ErrNotFound, never a crash.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/wordflower/wordflower/apps/go-server/assets"
	"github.com/wordflower/wordflower/apps/go-server/internal/letters"
	"github.com/wordflower/wordflower/apps/go-server/internal/wordlist"
)

// ErrNotFound reports an id absent from the catalog.
var ErrNotFound = errors.New("catalog: puzzle not found")

// ErrEmpty reports a catalog with no entries.
var ErrEmpty = errors.New("catalog: no puzzles loaded")

// Puzzle is one playable letter configuration with its legal word set.
// Immutable once loaded; the word list never changes mid-session.
type Puzzle struct {
	ID           string
	Config       letters.Configuration
	WordCount    int
	PangramCount int

	words    []string // lowercased, catalog order
	wordSet  map[string]bool
	pangrams map[string]bool
}

// AnswerWords returns the puzzle's legal words in catalog order.
func (p *Puzzle) AnswerWords() []string {
	out := make([]string, len(p.words))
	copy(out, p.words)
	return out
}

// Validate checks word membership and pangram status, case-insensitively.
func (p *Puzzle) Validate(word string) (isValid, isPangram bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	return p.wordSet[w], p.pangrams[w]
}

// entryJSON mirrors the catalog asset format.
type entryJSON struct {
	ID           string   `json:"id"`
	Central      string   `json:"central"`
	Letters      []string `json:"letters"`
	WordCount    int      `json:"wordcount"`
	PangramCount int      `json:"pangramcount"`
	Words        []string `json:"words"`
	Pangrams     []string `json:"pangrams"`
}

// Catalog holds the loaded puzzles, indexed by id.
type Catalog struct {
	puzzles []*Puzzle
	byID    map[string]*Puzzle
}

// Load parses the embedded catalog and frequency dictionary.
func Load() (*Catalog, error) {
	raw, err := assets.CatalogJSON()
	if err != nil {
		return nil, fmt.Errorf("read catalog asset: %w", err)
	}
	lines, err := assets.DictionaryLines()
	if err != nil {
		return nil, fmt.Errorf("read dictionary asset: %w", err)
	}
	dict, err := wordlist.ParseDictionary(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return New(raw, dict)
}

// New builds a catalog from raw JSON plus a frequency dictionary used to
// derive answer sets for entries that ship without precomputed words.
func New(raw []byte, dict []wordlist.Entry) (*Catalog, error) {
	var entries []entryJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{byID: make(map[string]*Puzzle, len(entries))}
	for _, e := range entries {
		p, err := buildPuzzle(e, dict)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", e.ID, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", p.ID)
		}
		c.puzzles = append(c.puzzles, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

func buildPuzzle(e entryJSON, dict []wordlist.Entry) (*Puzzle, error) {
	if e.ID == "" {
		return nil, errors.New("missing id")
	}
	outers := make([]rune, 0, len(e.Letters))
	for _, s := range e.Letters {
		r := []rune(s)
		if len(r) != 1 {
			return nil, fmt.Errorf("bad outer letter %q", s)
		}
		outers = append(outers, r[0])
	}
	center := []rune(e.Central)
	if len(center) != 1 {
		return nil, fmt.Errorf("bad center letter %q", e.Central)
	}
	cfg, err := letters.NewConfiguration(center[0], outers)
	if err != nil {
		return nil, err
	}

	words := e.Words
	pangrams := e.Pangrams
	if len(words) == 0 {
		// Derived entry: no precomputed list, filter the dictionary live.
		words = wordlist.DeriveAnswerSet(dict, cfg, wordlist.DefaultCap)
		pangrams = wordlist.Pangrams(words, cfg)
		e.WordCount = len(words)
		e.PangramCount = len(pangrams)
	}

	p := &Puzzle{
		ID:           e.ID,
		Config:       cfg,
		WordCount:    e.WordCount,
		PangramCount: e.PangramCount,
		wordSet:      make(map[string]bool, len(words)),
		pangrams:     make(map[string]bool, len(pangrams)),
	}
	for _, w := range words {
		lw := strings.ToLower(strings.TrimSpace(w))
		if lw == "" || p.wordSet[lw] {
			continue
		}
		p.wordSet[lw] = true
		p.words = append(p.words, lw)
	}
	for _, w := range pangrams {
		p.pangrams[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return p, nil
}

// PickRandom selects one puzzle uniformly. The rand source is injected so
// tests can pin the selection.
func (c *Catalog) PickRandom(rng *rand.Rand) (*Puzzle, error) {
	if len(c.puzzles) == 0 {
		return nil, ErrEmpty
	}
	return c.puzzles[rng.Intn(len(c.puzzles))], nil
}

// Lookup finds a puzzle by exact id.
func (c *Catalog) Lookup(id string) (*Puzzle, error) {
	if p, ok := c.byID[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

// Validate checks a word against the puzzle identified by id.
func (c *Catalog) Validate(id, word string) (isValid, isPangram bool, err error) {
	p, err := c.Lookup(id)
	if err != nil {
		return false, false, err
	}
	isValid, isPangram = p.Validate(word)
	return isValid, isPangram, nil
}

// Len reports the number of loaded puzzles.
func (c *Catalog) Len() int { return len(c.puzzles) }

// IDs returns every puzzle id in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.puzzles))
	for _, p := range c.puzzles {
		out = append(out, p.ID)
	}
	return out
}
