package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizpath/internal/learner"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestProfileRepo_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := learner.NewProfile("u1", t0)
	p.SetScore("algebra", 2.5)
	p.SetScore("fractions", -1.25)
	p.Schedule["algebra"] = &learner.ScheduleEntry{
		LastSeenAt:      t0,
		NextDueAt:       t0.AddDate(0, 0, 3),
		IntervalIndex:   1,
		SuccessStreak:   2,
		Lapses:          1,
		RollingAccuracy: 0.75,
	}
	p.AppendAttempt(learner.Attempt{
		QuizID:     "q1",
		Concepts:   []string{"algebra"},
		Correct:    true,
		At:         t0,
		Difficulty: 3,
	}, 15)
	p.TotalAttempts = 4
	p.TotalCorrect = 3
	p.LastUpdated = t0.Add(time.Hour)

	require.NoError(t, st.Profiles().Save(ctx, p))

	got, err := st.Profiles().Load(ctx, "u1")
	require.NoError(t, err)

	require.Equal(t, p.LearnerID, got.LearnerID)
	require.Equal(t, p.Scores, got.Scores)
	require.Equal(t, p.TotalAttempts, got.TotalAttempts)
	require.Equal(t, p.TotalCorrect, got.TotalCorrect)
	require.True(t, got.LastUpdated.Equal(p.LastUpdated))

	gotEntry := got.Schedule["algebra"]
	require.NotNil(t, gotEntry)
	require.Equal(t, 1, gotEntry.IntervalIndex)
	require.Equal(t, 2, gotEntry.SuccessStreak)
	require.Equal(t, 1, gotEntry.Lapses)
	require.Equal(t, 0.75, gotEntry.RollingAccuracy)
	require.True(t, gotEntry.NextDueAt.Equal(t0.AddDate(0, 0, 3)))

	require.Len(t, got.History, 1)
	require.Equal(t, "q1", got.History[0].QuizID)
	require.True(t, got.History[0].At.Equal(t0))
}

func TestProfileRepo_SaveIsIdempotentUpsert(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := learner.NewProfile("u1", t0)
	p.SetScore("a", 1.0)
	require.NoError(t, st.Profiles().Save(ctx, p))
	require.NoError(t, st.Profiles().Save(ctx, p))

	p.SetScore("a", 2.0)
	require.NoError(t, st.Profiles().Save(ctx, p))

	got, err := st.Profiles().Load(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2.0, got.Score("a"))
}

func TestProfileRepo_LoadMissing(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Profiles().Load(context.Background(), "nobody")
	require.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestProfileRepo_LoadOrCreate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p, err := st.Profiles().LoadOrCreate(ctx, "fresh", t0)
	require.NoError(t, err)
	require.Equal(t, "fresh", p.LearnerID)
	require.Empty(t, p.Scores)
	require.True(t, p.CreatedAt.Equal(t0))
}

func TestProfileRepo_Delete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := learner.NewProfile("u1", t0)
	require.NoError(t, st.Profiles().Save(ctx, p))
	require.NoError(t, st.Profiles().Delete(ctx, "u1"))

	_, err := st.Profiles().Load(ctx, "u1")
	require.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := st.Events().Append(ctx, "u1", learner.Attempt{
			QuizID:     "q1",
			Concepts:   []string{"a", "b"},
			Correct:    i%2 == 0,
			At:         t0.Add(time.Duration(i) * time.Minute),
			Difficulty: 2,
		})
		require.NoError(t, err)
	}

	events, err := st.Events().RecentByLearner(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	require.True(t, events[0].CreatedAt.After(events[1].CreatedAt))
	require.Equal(t, []string{"a", "b"}, events[0].Concepts)

	total, correct, err := st.Events().CountByLearner(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Equal(t, 3, correct)
}

func TestEventRepo_OtherLearnerInvisible(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Events().Append(ctx, "u1", learner.Attempt{
		QuizID: "q1", Concepts: []string{"a"}, Correct: true, At: t0, Difficulty: 1,
	}))

	events, err := st.Events().RecentByLearner(ctx, "u2", 10)
	require.NoError(t, err)
	require.Empty(t, events)
}
