package hints

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Trimmed thesaurus response in the real API shape: one entry carrying a
// short definition, a synonym list, and a sense with a verbal illustration.
const mwGoalJSON = `[
  {
    "meta": {"id": "goal", "syns": [["aim", "ambition", "aspiration"]]},
    "shortdef": ["something that one hopes or intends to accomplish"],
    "def": [
      {
        "sseq": [
          [
            [
              "sense",
              {
                "dt": [
                  ["text", "{bc}something that one hopes to accomplish "],
                  ["vis", [{"t": "her {it}goal{\/it} of becoming a physician"}]]
                ]
              }
            ]
          ]
        ]
      }
    ]
  }
]`

// Unknown words come back as a bare array of spelling suggestions.
const mwSuggestionsJSON = `["gaol", "goad", "gold"]`

func thesaurusServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		word := r.URL.Path[len("/"):]
		body, ok := responses[word]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestMWThesaurusFetch(t *testing.T) {
	srv := thesaurusServer(t, map[string]string{"goal": mwGoalJSON})
	defer srv.Close()

	mw := NewMWThesaurusWithBase("test-key", srv.URL+"/")
	e, err := mw.Fetch(context.Background(), "goal")
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.Equal(t, "goal", e.Word)
	assert.Equal(t, "something that one hopes or intends to accomplish", e.RelatedWord)
	assert.Equal(t, "aim", e.Synonym)
	assert.Equal(t, "her ______ of becoming a physician", e.Phrase)
	assert.Equal(t, "G__L", e.FillInBlank)
}

func TestMWThesaurusNoUsableContent(t *testing.T) {
	srv := thesaurusServer(t, map[string]string{"xyzzy": mwSuggestionsJSON})
	defer srv.Close()

	mw := NewMWThesaurusWithBase("test-key", srv.URL+"/")
	e, err := mw.Fetch(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Nil(t, e, "spelling suggestions mean no usable content")
}

func TestMWThesaurusHTTPError(t *testing.T) {
	srv := thesaurusServer(t, nil)
	defer srv.Close()

	mw := NewMWThesaurusWithBase("test-key", srv.URL+"/")
	_, err := mw.Fetch(context.Background(), "goal")
	assert.Error(t, err)
}

// countingProvider wraps a fixed table and counts upstream hits.
type countingProvider struct {
	entries map[string]*Entry
	calls   int
}

func (p *countingProvider) Fetch(_ context.Context, word string) (*Entry, error) {
	p.calls++
	return p.entries[word], nil
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	upstream := &countingProvider{entries: map[string]*Entry{
		"goal": {Word: "goal", RelatedWord: "aim", Synonym: "aim", Phrase: "______", FillInBlank: "G__L"},
	}}
	p := Cached{Provider: upstream, Cache: NewMemoryCache()}

	e, err := p.Fetch(ctx, "GOAL")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 1, upstream.calls)

	// Second lookup is served from cache; key is case-insensitive.
	e2, err := p.Fetch(ctx, "goal")
	require.NoError(t, err)
	assert.Equal(t, e.Word, e2.Word)
	assert.Equal(t, 1, upstream.calls)

	// Misses are not cached, so the word can be retried later.
	_, err = p.Fetch(ctx, "gale")
	require.NoError(t, err)
	_, err = p.Fetch(ctx, "gale")
	require.NoError(t, err)
	assert.Equal(t, 3, upstream.calls)
}

func TestBuildPoolSkipsUnusableWords(t *testing.T) {
	ctx := context.Background()
	upstream := &countingProvider{entries: map[string]*Entry{
		"goal": {Word: "goal"},
		"gale": {Word: "gale"},
		// "cage" intentionally absent: provider returns nil for it.
	}}
	rng := rand.New(rand.NewSource(1))

	pool := BuildPool(ctx, []string{"goal", "gale", "cage"}, upstream, rng, 10)
	words := map[string]bool{}
	for _, e := range pool {
		words[e.Word] = true
	}
	assert.Len(t, pool, 2)
	assert.True(t, words["goal"] && words["gale"])
	assert.False(t, words["cage"])
}
