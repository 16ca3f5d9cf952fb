package selection

import (
	"testing"
	"time"

	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
)

func TestBandForTarget_ZeroWindowDefaults(t *testing.T) {
	pol := policy.Default()
	pol.RecentWindow = 0
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -4.0)

	got := BandForTarget(p, "A", pol)
	if got != (Band{2, 3}) {
		t.Errorf("got %v, want 2-3", got)
	}
}

func TestBandForTarget_HigherBandWins(t *testing.T) {
	pol := policy.Default()
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -2.0)
	// Strong recent accuracy despite a weak score.
	for i := 0; i < 4; i++ {
		p.AppendAttempt(learner.Attempt{
			QuizID: "q", Concepts: []string{"A"}, Correct: true,
			At: t0.Add(time.Duration(i) * time.Minute), Difficulty: 2,
		}, 15)
	}

	got := BandForTarget(p, "A", pol)
	if got != (Band{4, 5}) {
		t.Errorf("got %v, want 4-5 (accuracy band wins)", got)
	}
}

func TestBandForTarget_EmptyWindowTreatedAsHalf(t *testing.T) {
	pol := policy.Default()
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 0.5)

	got := BandForTarget(p, "A", pol)
	if got != (Band{2, 3}) {
		t.Errorf("got %v, want 2-3", got)
	}
}

func TestBandForTarget_NearMastery(t *testing.T) {
	pol := policy.Default()
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 2.5)
	// One miss keeps the accuracy band low so the score band decides.
	p.AppendAttempt(learner.Attempt{
		QuizID: "q", Concepts: []string{"A"}, Correct: false, At: t0, Difficulty: 4,
	}, 15)

	got := BandForTarget(p, "A", pol)
	if got != (Band{4, 5}) {
		t.Errorf("got %v, want 4-5 (approaching mastery)", got)
	}
}

func TestBand_Widen(t *testing.T) {
	tests := []struct {
		in, want Band
	}{
		{Band{1, 2}, Band{1, 3}},
		{Band{2, 3}, Band{1, 4}},
		{Band{4, 5}, Band{3, 5}},
		{Band{1, 5}, Band{1, 5}},
	}
	for _, tt := range tests {
		if got := tt.in.Widen(); got != tt.want {
			t.Errorf("Widen(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBand_Contains(t *testing.T) {
	b := Band{2, 3}
	for d, want := range map[int]bool{1: false, 2: true, 3: true, 4: false} {
		if got := b.Contains(d); got != want {
			t.Errorf("Contains(%d) = %t, want %t", d, got, want)
		}
	}
}
