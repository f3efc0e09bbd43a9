// apps/go-server/internal/letters/letters.go
//
// Letter-constraint primitives for the Wordflower puzzle.
// Responsibilities:
//   - Configuration: one center letter plus six outer letters.
//   - IsAdmissible: the single-word legality check used at submit time
//     and during answer-set construction.
//   - IsPangram: detection of words using all seven letters.
//   - Shuffle: display-order permutation of the outer letters.
//
// Notes:
//   - Letters are reusable: a word may repeat a letter any number of
//     times. This is not a consume-a-tile game.
//   - All checks are pure and case-insensitive (uppercase-normalized).
package letters

import (
	"errors"
	"math/rand"
	"strings"
	"unicode"
)

// MinWordLength is the shortest admissible word.
const MinWordLength = 4

// OuterCount is the number of non-center letters in a configuration.
const OuterCount = 6

// Configuration is the fixed letter set defining one puzzle: a mandatory
// center letter and six outer letters. The slice order of Outers is the
// display order and may be permuted by Shuffle; membership never changes.
type Configuration struct {
	Center rune
	Outers []rune
}

// Clone returns a copy with its own outer-letter slice, so callers can
// shuffle the display order without touching the original.
func (c Configuration) Clone() Configuration {
	return Configuration{
		Center: c.Center,
		Outers: append([]rune(nil), c.Outers...),
	}
}

// NewConfiguration validates and normalizes a letter configuration.
// Rules: exactly six outer letters, all distinct single A–Z letters,
// and the center letter must not appear among the outers.
func NewConfiguration(center rune, outers []rune) (Configuration, error) {
	c := unicode.ToUpper(center)
	if c < 'A' || c > 'Z' {
		return Configuration{}, errors.New("letters: center must be a single A-Z letter")
	}
	if len(outers) != OuterCount {
		return Configuration{}, errors.New("letters: exactly six outer letters required")
	}
	seen := map[rune]bool{c: true}
	norm := make([]rune, 0, OuterCount)
	for _, r := range outers {
		u := unicode.ToUpper(r)
		if u < 'A' || u > 'Z' {
			return Configuration{}, errors.New("letters: outer letters must be A-Z")
		}
		if seen[u] {
			return Configuration{}, errors.New("letters: duplicate letter in configuration")
		}
		seen[u] = true
		norm = append(norm, u)
	}
	return Configuration{Center: c, Outers: norm}, nil
}

// Contains reports whether r (case-insensitive) is one of the seven letters.
func (c Configuration) Contains(r rune) bool {
	u := unicode.ToUpper(r)
	if u == c.Center {
		return true
	}
	for _, o := range c.Outers {
		if o == u {
			return true
		}
	}
	return false
}

// Letters returns the full seven-letter set, center first, in display order.
func (c Configuration) Letters() []rune {
	out := make([]rune, 0, OuterCount+1)
	out = append(out, c.Center)
	return append(out, c.Outers...)
}

// Shuffle permutes the display order of the outer letters in place using
// Fisher–Yates driven by rng. Membership is untouched, so admissibility
// is unaffected. The rand source is injected so tests can seed it.
func (c Configuration) Shuffle(rng *rand.Rand) {
	for i := len(c.Outers) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		c.Outers[i], c.Outers[j] = c.Outers[j], c.Outers[i]
	}
}

// IsAdmissible reports whether word is legal for the given configuration:
// at least MinWordLength letters, contains the center letter at least once,
// and every letter drawn from the seven-letter set (repetition allowed).
func IsAdmissible(word string, cfg Configuration) bool {
	w := strings.ToUpper(strings.TrimSpace(word))
	if len([]rune(w)) < MinWordLength {
		return false
	}
	hasCenter := false
	for _, r := range w {
		if !cfg.Contains(r) {
			return false
		}
		if r == cfg.Center {
			hasCenter = true
		}
	}
	return hasCenter
}

// IsPangram reports whether word uses every letter of the configuration at
// least once, i.e. its distinct letter set equals the full seven-letter set.
// A pangram is by definition also admissible; callers typically check
// admissibility first.
func IsPangram(word string, cfg Configuration) bool {
	w := strings.ToUpper(strings.TrimSpace(word))
	distinct := map[rune]bool{}
	for _, r := range w {
		if !cfg.Contains(r) {
			return false
		}
		distinct[r] = true
	}
	return len(distinct) == OuterCount+1
}
