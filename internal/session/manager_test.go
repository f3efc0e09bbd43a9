package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordflower/wordflower/apps/go-server/internal/store"
)

func TestResumeRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	s, err := f.mgr.Start(ctx, "u1")
	require.NoError(t, err)
	_, err = s.SubmitWord(ctx, "goal")
	require.NoError(t, err)
	_, err = s.SubmitWord(ctx, "gale")
	require.NoError(t, err)
	require.NoError(t, s.AppendLetter(ctx, 'l'))
	require.NoError(t, s.AppendLetter(ctx, 'o'))
	s.Tick(ctx)
	s.Tick(ctx)
	s.Tick(ctx)
	before := s.View()

	// Simulate a process restart: the manager forgets the live session.
	f.mgr.mu.Lock()
	delete(f.mgr.sessions, "u1")
	f.mgr.mu.Unlock()

	restored, prior, err := f.mgr.Resume(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, prior)

	after := restored.View()
	assert.Equal(t, before.SessionID, after.SessionID)
	assert.Equal(t, before.PuzzleID, after.PuzzleID)
	assert.Equal(t, before.FoundWords, after.FoundWords)
	assert.Equal(t, before.Buffer, after.Buffer)
	assert.Equal(t, before.Remaining, after.Remaining)
	assert.Equal(t, StatePlaying, after.State)
}

func TestResumeDiscardsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	snap := store.Snapshot{
		SessionID:  "old",
		PuzzleID:   "a",
		FoundWords: []string{"goal"},
		Remaining:  50,
		State:      string(StatePlaying),
		SavedAt:    time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, f.snaps.Save(ctx, "u1", snap))

	_, _, err := f.mgr.Resume(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	// The stale snapshot was discarded, not retained for later.
	_, err = f.snaps.Load(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestResumeUnknownPuzzleFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	snap := store.Snapshot{
		SessionID: "old",
		PuzzleID:  "gone",
		Remaining: 50,
		State:     string(StatePlaying),
		SavedAt:   time.Now(),
	}
	require.NoError(t, f.snaps.Save(ctx, "u1", snap))

	_, _, err := f.mgr.Resume(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestResumeCompletedPuzzleRedirects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	require.NoError(t, f.comp.MarkCompleted(ctx, "u1", "a", Result{
		FoundWords: []string{"goal"},
		TotalTime:  120,
	}))
	snap := store.Snapshot{
		SessionID: "old",
		PuzzleID:  "a",
		Remaining: 50,
		State:     string(StatePlaying),
		SavedAt:   time.Now(),
	}
	require.NoError(t, f.snaps.Save(ctx, "u1", snap))

	_, prior, err := f.mgr.Resume(ctx, "u1")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	require.NotNil(t, prior)
	assert.Equal(t, []string{"goal"}, prior.FoundWords)
	assert.Equal(t, 120, prior.TotalTime)
}

func TestStartSkipsCompletedPuzzles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	require.NoError(t, f.comp.MarkCompleted(ctx, "u1", "a", Result{}))
	_, err := f.mgr.Start(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoPuzzlesLeft)

	// A different identity is unaffected.
	_, err = f.mgr.Start(ctx, "u2")
	assert.NoError(t, err)
}

func TestResetClearsSessionAndSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	s, err := f.mgr.Start(ctx, "u1")
	require.NoError(t, err)

	f.mgr.Reset(ctx, "u1")
	_, err = f.mgr.Get("u1")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.snaps.Load(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	// The abandoned session rejects further play.
	_, err = s.SubmitWord(ctx, "goal")
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestStartReplacesActiveSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	first, err := f.mgr.Start(ctx, "u1")
	require.NoError(t, err)
	second, err := f.mgr.Start(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	// The replaced session is inert.
	_, err = first.SubmitWord(ctx, "goal")
	assert.ErrorIs(t, err, ErrNotPlaying)

	got, err := f.mgr.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID(), got.ID())
}

func TestShuffleIsSessionLocal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{Budget: 100})

	s1, err := f.mgr.Start(ctx, "u1")
	require.NoError(t, err)
	s2, err := f.mgr.Start(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, s1.PuzzleID(), s2.PuzzleID())

	catalogOrder := append([]rune(nil), s1.Puzzle().Config.Outers...)
	before := s2.View().OuterLetters

	// Enough shuffles that at least one permutation differs from the start.
	for i := 0; i < 10; i++ {
		_, err := s1.Shuffle(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, before, s2.View().OuterLetters,
		"one player's shuffle must not change another session's display order")
	assert.Equal(t, catalogOrder, s1.Puzzle().Config.Outers,
		"the catalog's puzzle configuration stays immutable")
}
