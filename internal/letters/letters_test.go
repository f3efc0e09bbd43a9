package letters

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logicalConfig(t *testing.T) Configuration {
	t.Helper()
	cfg, err := NewConfiguration('G', []rune{'L', 'O', 'I', 'C', 'A', 'E'})
	require.NoError(t, err)
	return cfg
}

func TestNewConfiguration(t *testing.T) {
	t.Run("normalizes case", func(t *testing.T) {
		cfg, err := NewConfiguration('g', []rune{'l', 'o', 'i', 'c', 'a', 'e'})
		require.NoError(t, err)
		assert.Equal(t, 'G', cfg.Center)
		assert.Equal(t, []rune{'L', 'O', 'I', 'C', 'A', 'E'}, cfg.Outers)
	})

	t.Run("rejects center among outers", func(t *testing.T) {
		_, err := NewConfiguration('G', []rune{'G', 'O', 'I', 'C', 'A', 'E'})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate outers", func(t *testing.T) {
		_, err := NewConfiguration('G', []rune{'L', 'L', 'I', 'C', 'A', 'E'})
		assert.Error(t, err)
	})

	t.Run("rejects wrong count", func(t *testing.T) {
		_, err := NewConfiguration('G', []rune{'L', 'O', 'I'})
		assert.Error(t, err)
	})

	t.Run("rejects non-letters", func(t *testing.T) {
		_, err := NewConfiguration('7', []rune{'L', 'O', 'I', 'C', 'A', 'E'})
		assert.Error(t, err)
	})
}

func TestIsAdmissible(t *testing.T) {
	cfg := logicalConfig(t)

	cases := []struct {
		word string
		want bool
	}{
		{"LOGICAL", true},
		{"logical", true}, // case-insensitive
		{"GOAL", true},
		{"GALE", true},
		{"giggle", true}, // letter reuse allowed
		{"CAT", false},   // too short and no center, either suffices
		{"COAL", false},  // no center letter
		{"GOLD", false},  // D outside the set
		{"GOA", false},   // too short despite center
		{"", false},
		{"  goal  ", true}, // trimmed
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsAdmissible(tc.word, cfg), "word %q", tc.word)
	}
}

func TestIsPangram(t *testing.T) {
	cfg := logicalConfig(t)

	// LOGICAL uses L,O,G,I,C,A — six distinct letters, E missing.
	assert.False(t, IsPangram("LOGICAL", cfg))
	// GEOLOGICAL uses G,E,O,L,I,C,A — all seven.
	assert.True(t, IsPangram("GEOLOGICAL", cfg))
	assert.True(t, IsPangram("ecological", cfg))
	assert.False(t, IsPangram("GOAL", cfg))
	// Words with a letter outside the set are never pangrams.
	assert.False(t, IsPangram("GEOLOGICALLY", cfg))
}

func TestShufflePreservesMembership(t *testing.T) {
	cfg := logicalConfig(t)
	rng := rand.New(rand.NewSource(1))

	orig := map[rune]bool{}
	for _, r := range cfg.Outers {
		orig[r] = true
	}
	for i := 0; i < 100; i++ {
		cfg.Shuffle(rng)
		require.Len(t, cfg.Outers, OuterCount)
		for _, r := range cfg.Outers {
			assert.True(t, orig[r], "letter %c appeared from nowhere", r)
		}
	}
}

// TestShuffleUniform drives many shuffles from a seeded source and checks the
// empirical distribution over all 720 permutations stays near uniform.
func TestShuffleUniform(t *testing.T) {
	cfg := logicalConfig(t)
	rng := rand.New(rand.NewSource(42))

	const trials = 72000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		cfg.Shuffle(rng)
		counts[string(cfg.Outers)]++
	}
	require.Len(t, counts, 720, "every permutation should be reachable")

	// Expected 100 per permutation; allow a generous band for a seeded run.
	for perm, n := range counts {
		assert.Greater(t, n, 50, "permutation %s undersampled", perm)
		assert.Less(t, n, 200, "permutation %s oversampled", perm)
	}
}
