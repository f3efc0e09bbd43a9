package wordlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordflower/wordflower/apps/go-server/internal/letters"
)

func testConfig(t *testing.T) letters.Configuration {
	t.Helper()
	cfg, err := letters.NewConfiguration('G', []rune{'L', 'O', 'I', 'C', 'A', 'E'})
	require.NoError(t, err)
	return cfg
}

func TestDeriveAnswerSet(t *testing.T) {
	cfg := testConfig(t)

	dict := []Entry{
		{Word: "goal", Score: 900},
		{Word: "cat", Score: 9999}, // too short, no center
		{Word: "logical", Score: 500},
		{Word: "gale", Score: 900}, // ties with goal, keeps dict order after it
		{Word: "GOAL", Score: 100}, // duplicate, dropped
		{Word: "cage", Score: 700},
		{Word: "gold", Score: 8000}, // D outside the set
		{Word: "agile", Score: 950},
	}

	got := DeriveAnswerSet(dict, cfg, 0)
	assert.Equal(t, []string{"agile", "goal", "gale", "cage", "logical"}, got)
}

func TestDeriveAnswerSetCap(t *testing.T) {
	cfg := testConfig(t)

	dict := []Entry{
		{Word: "goal", Score: 5},
		{Word: "gale", Score: 4},
		{Word: "cage", Score: 3},
		{Word: "agile", Score: 2},
	}
	got := DeriveAnswerSet(dict, cfg, 2)
	assert.Equal(t, []string{"goal", "gale"}, got)

	// Fewer qualifying words than the cap: return them all.
	got = DeriveAnswerSet(dict, cfg, 50)
	assert.Len(t, got, 4)
}

func TestPangrams(t *testing.T) {
	cfg := testConfig(t)
	words := []string{"goal", "geological", "logical", "ecological"}
	assert.Equal(t, []string{"geological", "ecological"}, Pangrams(words, cfg))
}

func TestParseDictionary(t *testing.T) {
	in := strings.NewReader("# comment\nGOAL 900\n\nlogical 500\nbare\n")
	dict, err := ParseDictionary(in)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Word: "goal", Score: 900},
		{Word: "logical", Score: 500},
		{Word: "bare", Score: 0},
	}, dict)
}
