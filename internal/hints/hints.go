// apps/go-server/internal/hints/hints.go
//
// Hint word entries and the hint candidate pool.
// Responsibilities:
//   - Entry: the four-level lexical content for one target word.
//   - ContentProvider: the lookup contract (thesaurus-backed in
//     production, fakes in tests).
//   - BuildPool: sample answer words and fetch their content, excluding
//     words with no usable lexical data.
package hints

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// MaxLevel is the deepest hint disclosure level.
const MaxLevel = 4

// DefaultPoolSize is how many words the hint cursor rotates through.
const DefaultPoolSize = 10

// Entry is the immutable lexical content for one hint word.
// Levels disclose in strictly increasing specificity:
//
//	1 related word / short definition
//	2 synonym
//	3 example phrase with the target word blanked out
//	4 fill-in-the-blank pattern exposing first and last letter
type Entry struct {
	Word        string `json:"word"`
	RelatedWord string `json:"relatedWord"`
	Synonym     string `json:"synonym"`
	Phrase      string `json:"phrase"`
	FillInBlank string `json:"fillInBlank"`
}

// Level returns the content for one disclosure level, empty for level 0
// or anything past MaxLevel.
func (e Entry) Level(n int) string {
	switch n {
	case 1:
		return e.RelatedWord
	case 2:
		return e.Synonym
	case 3:
		return e.Phrase
	case 4:
		return e.FillInBlank
	}
	return ""
}

// ContentProvider looks up lexical hint content for a word.
// A (nil, nil) return means the word has no usable content (missing
// definition, synonym, or example) and must be excluded from the pool
// rather than shown with blanks.
type ContentProvider interface {
	Fetch(ctx context.Context, word string) (*Entry, error)
}

// BuildPool samples up to size words from the answer set (uniformly, via
// the injected rand source) and fetches their lexical content. Words the
// provider cannot serve are skipped; lookup transport errors skip the word
// too, since a thin pool beats a failed game start.
func BuildPool(ctx context.Context, words []string, provider ContentProvider, rng *rand.Rand, size int) []Entry {
	if size <= 0 {
		size = DefaultPoolSize
	}
	sample := append([]string(nil), words...)
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})

	var pool []Entry
	for _, w := range sample {
		if len(pool) >= size {
			break
		}
		e, err := provider.Fetch(ctx, w)
		if err != nil {
			log.Warn().Err(err).Str("word", w).Msg("hint content fetch failed")
			continue
		}
		if e == nil {
			continue
		}
		pool = append(pool, *e)
	}
	return pool
}
