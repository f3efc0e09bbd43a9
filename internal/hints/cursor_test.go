package hints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolOf(words ...string) []Entry {
	out := make([]Entry, 0, len(words))
	for _, w := range words {
		out = append(out, Entry{
			Word:        w,
			RelatedWord: "related-" + w,
			Synonym:     "syn-" + w,
			Phrase:      "a phrase about ______",
			FillInBlank: FillInBlank(w),
		})
	}
	return out
}

func foundSet(words ...string) (map[string]bool, FoundFunc) {
	m := map[string]bool{}
	for _, w := range words {
		m[w] = true
	}
	return m, func(w string) bool { return m[w] }
}

func TestRequestNextHintSaturates(t *testing.T) {
	ctx := context.Background()
	_, found := foundSet()
	c := NewCursor(poolOf("GOAL", "GALE"), found, nil, "g1")

	// Six requests in a row: level caps at 4 after the fourth, then no-ops.
	levels := []int{}
	for i := 0; i < 6; i++ {
		v := c.RequestNextHint(ctx)
		levels = append(levels, v.Level)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 4, 4}, levels)

	v := c.View()
	assert.Equal(t, map[int]string{
		1: "related-GOAL",
		2: "syn-GOAL",
		3: "a phrase about ______",
		4: "G__L",
	}, v.Hints)
}

func TestRequestNextHintNoOpWhenFound(t *testing.T) {
	ctx := context.Background()
	set, found := foundSet()
	c := NewCursor(poolOf("GOAL", "GALE"), found, nil, "g1")

	c.RequestNextHint(ctx)
	set["GOAL"] = true
	v := c.RequestNextHint(ctx)
	assert.Equal(t, 1, v.Level, "found word must not disclose further")
	assert.True(t, v.WordFound)
}

func TestSkipToNextWord(t *testing.T) {
	ctx := context.Background()
	set, found := foundSet()
	c := NewCursor(poolOf("GOAL", "GALE", "CAGE"), found, nil, "g1")

	v := c.SkipToNextWord(ctx)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, 1, v.Level, "skip opens the new word at level 1")

	// Found words are skipped over.
	set["CAGE"] = true
	v = c.SkipToNextWord(ctx)
	assert.Equal(t, 0, v.Index)
}

func TestSkipAllFoundTerminates(t *testing.T) {
	ctx := context.Background()
	_, found := foundSet("GOAL", "GALE", "CAGE")
	c := NewCursor(poolOf("GOAL", "GALE", "CAGE"), found, nil, "g1")

	// N+1 skips when everything is found: index never moves, no hang.
	for i := 0; i < 4; i++ {
		v := c.SkipToNextWord(ctx)
		assert.Equal(t, 0, v.Index)
	}
}

func TestPreviousWord(t *testing.T) {
	ctx := context.Background()
	set, found := foundSet()
	c := NewCursor(poolOf("GOAL", "GALE", "CAGE"), found, nil, "g1")

	// Visit 0, then 1, then 2.
	c.RequestNextHint(ctx)
	c.SkipToNextWord(ctx)
	c.SkipToNextWord(ctx)

	v, moved := c.PreviousWord(ctx)
	assert.True(t, moved)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, 1, v.Level)

	v, moved = c.PreviousWord(ctx)
	assert.True(t, moved)
	assert.Equal(t, 0, v.Index)

	// Backward navigation never lands on found words.
	set["GALE"] = true
	c.SkipToNextWord(ctx) // move off index 0 (to 2, since 1 is found)
	v, moved = c.PreviousWord(ctx)
	assert.True(t, moved)
	assert.Equal(t, 0, v.Index)
}

func TestPreviousWordNoEligibleTarget(t *testing.T) {
	ctx := context.Background()
	_, found := foundSet()
	c := NewCursor(poolOf("GOAL", "GALE"), found, nil, "g1")

	// Nothing visited yet: informational no-op.
	v, moved := c.PreviousWord(ctx)
	assert.False(t, moved)
	assert.Equal(t, 0, v.Index)

	// Only the current word visited: still nowhere to go back to.
	c.RequestNextHint(ctx)
	_, moved = c.PreviousWord(ctx)
	assert.False(t, moved)
}

func TestViewNeverLeaksWord(t *testing.T) {
	ctx := context.Background()
	_, found := foundSet()
	c := NewCursor(poolOf("GOAL"), found, nil, "g1")

	for i := 0; i < 4; i++ {
		c.RequestNextHint(ctx)
	}
	v := c.View()
	assert.Equal(t, 4, v.WordLength)
	for _, h := range v.Hints {
		assert.NotEqual(t, "GOAL", h)
	}
	// Level 4 exposes only the first and last letter.
	assert.Equal(t, "G__L", v.Hints[4])
}

func TestEmptyPool(t *testing.T) {
	ctx := context.Background()
	_, found := foundSet()
	c := NewCursor(nil, found, nil, "g1")

	v := c.RequestNextHint(ctx)
	assert.Equal(t, 0, v.Level)
	v = c.SkipToNextWord(ctx)
	assert.Equal(t, 0, v.PoolSize)
	_, moved := c.PreviousWord(ctx)
	require.False(t, moved)
}
