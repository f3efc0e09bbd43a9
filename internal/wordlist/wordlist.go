// apps/go-server/internal/wordlist/wordlist.go
//
// Answer-set derivation for a letter configuration.
// Responsibilities:
//   - Hold a frequency-ranked dictionary (word + commonality score).
//   - Filter it through the letter constraint and rank the survivors.
//   - Cap the result so a puzzle stays a bounded, playable size.
//
// Notes:
//   - Sorting is stable: equal scores keep their original dictionary
//     order, which keeps derivation deterministic and testable.
//   - Fewer qualifying words than the cap is normal; the result is
//     simply shorter. No padding, no error.
package wordlist

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wordflower/wordflower/apps/go-server/internal/letters"
)

// DefaultCap bounds the answer set of a single puzzle.
const DefaultCap = 60

// Entry is one dictionary word with its frequency/commonality score.
type Entry struct {
	Word  string
	Score int
}

// DeriveAnswerSet filters dict against cfg, ranks by score descending
// (stable on ties), deduplicates, and truncates to cap. Words are returned
// lowercased. A cap <= 0 falls back to DefaultCap.
func DeriveAnswerSet(dict []Entry, cfg letters.Configuration, cap int) []string {
	if cap <= 0 {
		cap = DefaultCap
	}
	var qualified []Entry
	seen := map[string]bool{}
	for _, e := range dict {
		w := strings.ToLower(strings.TrimSpace(e.Word))
		if w == "" || seen[w] {
			continue
		}
		if !letters.IsAdmissible(w, cfg) {
			continue
		}
		seen[w] = true
		qualified = append(qualified, Entry{Word: w, Score: e.Score})
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Score > qualified[j].Score
	})
	if len(qualified) > cap {
		qualified = qualified[:cap]
	}
	out := make([]string, len(qualified))
	for i, e := range qualified {
		out[i] = e.Word
	}
	return out
}

// Pangrams returns the subset of words using all seven configuration letters.
func Pangrams(words []string, cfg letters.Configuration) []string {
	var out []string
	for _, w := range words {
		if letters.IsPangram(w, cfg) {
			out = append(out, w)
		}
	}
	return out
}

// ParseDictionary reads a "word score" per-line dictionary. Blank lines and
// lines starting with '#' are skipped; a missing score defaults to 0.
func ParseDictionary(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		e := Entry{Word: strings.ToLower(fields[0])}
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				e.Score = n
			}
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
