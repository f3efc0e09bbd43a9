// apps/go-server/internal/hints/mw.go
//
// Merriam-Webster Collegiate Thesaurus client.
// Extracts, per word: the first short definition (level-1 "related"),
// the first listed synonym (level 2), and the first verbal illustration
// with the target word masked (level 3). The level-4 fill-in-the-blank
// pattern is derived locally from the word itself.
//
// A word missing any of the three fetched pieces yields (nil, nil): such
// words are excluded from the hint pool rather than shown with blanks.

package hints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultThesaurusURL = "https://www.dictionaryapi.com/api/v3/references/thesaurus/json/"

// itToken matches the thesaurus markup wrapping the headword in examples.
var itToken = regexp.MustCompile(`\{it\}(.*?)\{/it\}`)

// MWThesaurus fetches lexical content from the dictionaryapi.com thesaurus.
type MWThesaurus struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewMWThesaurus builds a client with a bounded request timeout.
func NewMWThesaurus(apiKey string) *MWThesaurus {
	return &MWThesaurus{
		apiKey:  apiKey,
		baseURL: defaultThesaurusURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewMWThesaurusWithBase overrides the API base URL (tests).
func NewMWThesaurusWithBase(apiKey, baseURL string) *MWThesaurus {
	t := NewMWThesaurus(apiKey)
	t.baseURL = baseURL
	return t
}

// mwEntry maps the slice of the thesaurus response we consume. The sseq
// tree is heterogeneous JSON, so it is walked as raw messages.
type mwEntry struct {
	Meta struct {
		Syns [][]string `json:"syns"`
	} `json:"meta"`
	Shortdef []string `json:"shortdef"`
	Def      []struct {
		Sseq [][][]json.RawMessage `json:"sseq"`
	} `json:"def"`
}

// Fetch implements ContentProvider against the live API.
func (t *MWThesaurus) Fetch(ctx context.Context, word string) (*Entry, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	url := fmt.Sprintf("%s%s?key=%s", t.baseURL, w, t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thesaurus: unexpected status %d for %q", res.StatusCode, w)
	}

	var entries []mwEntry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		// Unknown words come back as a plain array of suggestion strings,
		// which fails to decode as entries. No usable content.
		return nil, nil
	}
	if len(entries) == 0 {
		return nil, nil
	}
	entry := entries[0]

	var definition string
	if len(entry.Shortdef) > 0 {
		definition = entry.Shortdef[0]
	}
	var synonym string
	if len(entry.Meta.Syns) > 0 && len(entry.Meta.Syns[0]) > 0 {
		synonym = entry.Meta.Syns[0][0]
	}
	example := firstUsageExample(entry)

	if definition == "" || synonym == "" || example == "" {
		return nil, nil
	}

	return &Entry{
		Word:        w,
		RelatedWord: definition,
		Synonym:     synonym,
		Phrase:      itToken.ReplaceAllString(example, "______"),
		FillInBlank: FillInBlank(w),
	}, nil
}

// firstUsageExample digs the first verbal illustration ("vis") out of the
// sense sequence tree.
func firstUsageExample(entry mwEntry) string {
	for _, def := range entry.Def {
		for _, seq := range def.Sseq {
			for _, pair := range seq {
				if len(pair) != 2 {
					continue
				}
				var kind string
				if json.Unmarshal(pair[0], &kind) != nil || kind != "sense" {
					continue
				}
				var sense struct {
					Dt [][]json.RawMessage `json:"dt"`
				}
				if json.Unmarshal(pair[1], &sense) != nil {
					continue
				}
				for _, dt := range sense.Dt {
					if len(dt) != 2 {
						continue
					}
					var dtKind string
					if json.Unmarshal(dt[0], &dtKind) != nil || dtKind != "vis" {
						continue
					}
					var vis []struct {
						T string `json:"t"`
					}
					if json.Unmarshal(dt[1], &vis) == nil && len(vis) > 0 && vis[0].T != "" {
						return vis[0].T
					}
				}
			}
		}
	}
	return ""
}

// FillInBlank renders the level-4 pattern: first and last letter exposed,
// everything between blanked.
func FillInBlank(word string) string {
	r := []rune(strings.ToUpper(word))
	if len(r) < 2 {
		return string(r)
	}
	return string(r[0]) + strings.Repeat("_", len(r)-2) + string(r[len(r)-1])
}
