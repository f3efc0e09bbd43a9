package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordflower/wordflower/apps/go-server/internal/wordlist"
)

const rawTwoEntries = `[
  {
    "id": "a",
    "central": "G",
    "letters": ["L", "O", "I", "C", "A", "E"],
    "wordcount": 3,
    "pangramcount": 1,
    "words": ["goal", "logical", "geological"],
    "pangrams": ["geological"]
  },
  {
    "id": "b",
    "central": "T",
    "letters": ["R", "A", "I", "N", "E", "D"],
    "wordcount": 2,
    "pangramcount": 1,
    "words": ["train", "trained"],
    "pangrams": ["trained"]
  }
]`

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Greater(t, c.Len(), 0)

	p, err := c.Lookup("1")
	require.NoError(t, err)
	assert.Equal(t, 'G', p.Config.Center)
	assert.Equal(t, p.WordCount, len(p.AnswerWords()))

	ok, pan := p.Validate("GEOLOGICAL")
	assert.True(t, ok)
	assert.True(t, pan)
}

func TestLookupNotFound(t *testing.T) {
	c, err := New([]byte(rawTwoEntries), nil)
	require.NoError(t, err)

	_, err = c.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = c.Validate("nope", "goal")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	c, err := New([]byte(rawTwoEntries), nil)
	require.NoError(t, err)

	ok, pan, err := c.Validate("a", "GOAL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, pan)

	ok, pan, err = c.Validate("a", "gold")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, pan)
}

func TestPickRandomUniform(t *testing.T) {
	c, err := New([]byte(rawTwoEntries), nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		p, err := c.PickRandom(rng)
		require.NoError(t, err)
		counts[p.ID]++
	}
	assert.Len(t, counts, 2)
	for id, n := range counts {
		assert.Greater(t, n, 800, "puzzle %s undersampled", id)
	}
}

func TestDerivedEntry(t *testing.T) {
	raw := `[{"id": "live", "central": "G", "letters": ["L","O","I","C","A","E"]}]`
	dict := []wordlist.Entry{
		{Word: "goal", Score: 10},
		{Word: "gold", Score: 9},
		{Word: "logical", Score: 8},
	}
	c, err := New([]byte(raw), dict)
	require.NoError(t, err)

	p, err := c.Lookup("live")
	require.NoError(t, err)
	assert.Equal(t, []string{"goal", "logical"}, p.AnswerWords())
}

func TestRejectsBadConfiguration(t *testing.T) {
	raw := `[{"id": "x", "central": "G", "letters": ["G","O","I","C","A","E"], "words": ["goal"]}]`
	_, err := New([]byte(raw), nil)
	assert.Error(t, err)
}
