package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizpath/internal/knowledge"
	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
	"github.com/abhisek/quizpath/internal/quiz"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func mustGraph(t *testing.T, concepts []knowledge.Concept, edges []knowledge.Edge) *knowledge.Graph {
	t.Helper()
	g, err := knowledge.NewGraph(concepts, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func mustBank(t *testing.T, quizzes ...quiz.Quiz) *quiz.Bank {
	t.Helper()
	b, err := quiz.NewBank(quizzes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestSuggest_PrerequisiteGating(t *testing.T) {
	// A is a prerequisite of B and A is weak: the engine walks up.
	g := mustGraph(t,
		[]knowledge.Concept{{ID: "A"}, {ID: "B"}},
		[]knowledge.Edge{{From: "A", To: "B"}},
	)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 1, Style: "mc"},
		quiz.Quiz{ID: "Q_B", LinkedConcepts: []string{"B"}, Difficulty: 3, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -1.0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_A" {
		t.Errorf("got %q, want Q_A", got.ID)
	}
}

func TestSuggest_WeaknessFirst(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}, {ID: "B"}, {ID: "C"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_B", LinkedConcepts: []string{"B"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_C", LinkedConcepts: []string{"C"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 2.0)
	p.SetScore("B", -1.0)
	p.SetScore("C", 0.0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_B" {
		t.Errorf("got %q, want Q_B (lowest score)", got.ID)
	}
}

func TestSuggest_ScoreTieBrokenByID(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "a"}, {ID: "b"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_b", LinkedConcepts: []string{"b"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_a", LinkedConcepts: []string{"a"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_a" {
		t.Errorf("got %q, want Q_a (concept tie broken by ID)", got.ID)
	}
}

func TestSuggest_ReviewDue(t *testing.T) {
	// A is in-progress (score 2), is the only concept in the bank, and
	// its review is overdue.
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 2.0)
	p.Schedule["A"] = &learner.ScheduleEntry{
		NextDueAt: t0.Add(-time.Hour),
	}

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_A" {
		t.Errorf("got %q, want Q_A", got.ID)
	}
}

func TestSuggest_EmptyBankRaise(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t)
	pol := policy.Default()
	pol.Fallback = policy.FallbackRaise

	e := New(g, bank, pol, nil)
	_, err := e.Suggest(learner.NewProfile("u1", t0), t0)
	var noQuiz *NoQuizAvailableError
	if !errors.As(err, &noQuiz) {
		t.Fatalf("expected *NoQuizAvailableError, got %v", err)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	g := mustGraph(t,
		[]knowledge.Concept{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]knowledge.Edge{{From: "A", To: "C"}},
	)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q1", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q2", LinkedConcepts: []string{"B"}, Difficulty: 2, Style: "fill"},
		quiz.Quiz{ID: "Q3", LinkedConcepts: []string{"C"}, Difficulty: 3, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -0.5)
	p.SetScore("B", -0.5)

	e := New(g, bank, policy.Default(), nil)
	first, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Suggest(p, t0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("call %d returned %q, first returned %q", i, again.ID, first.ID)
		}
	}
}

func TestSuggest_SeededRNGReproducible(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q1", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q2", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	pol := policy.Default().WithSeed(99)

	e := New(g, bank, pol, nil)
	first, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Suggest(p, t0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("seeded suggestion not reproducible: %q vs %q", again.ID, first.ID)
		}
	}
}

func TestSuggest_DifficultyBandForWeakTarget(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_hard", LinkedConcepts: []string{"A"}, Difficulty: 5, Style: "mc"},
		quiz.Quiz{ID: "Q_easy", LinkedConcepts: []string{"A"}, Difficulty: 1, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -2.0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_easy" {
		t.Errorf("got %q, want Q_easy (weak target: band 2-3 widened to 1-4)", got.ID)
	}
}

func TestSuggest_BandWidensWhenEmpty(t *testing.T) {
	// Weak target wants band 1-2, but only a difficulty-3 item exists:
	// the band widens and the item is still served.
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q3", LinkedConcepts: []string{"A"}, Difficulty: 3, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -2.0)
	// A recent miss keeps the accuracy band at 1-2 as well.
	p.AppendAttempt(learner.Attempt{
		QuizID: "Q3", Concepts: []string{"A"}, Correct: false, At: t0.Add(-time.Minute), Difficulty: 3,
	}, 15)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q3" {
		t.Errorf("got %q, want Q3", got.ID)
	}
}

func TestSuggest_VarietyPreferred(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_mc", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_fill", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "fill"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 0.5)
	// The learner just saw an "mc" item.
	p.AppendAttempt(learner.Attempt{
		QuizID: "Q_mc", Concepts: []string{"A"}, Correct: true, At: t0.Add(-time.Minute), Difficulty: 2,
	}, 15)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_fill" {
		t.Errorf("got %q, want Q_fill (style variety)", got.ID)
	}
}

func TestSuggest_NoveltyPreferred(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q1", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q2", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 0.5)
	p.AppendAttempt(learner.Attempt{
		QuizID: "Q1", Concepts: []string{"A"}, Correct: true, At: t0.Add(-time.Minute), Difficulty: 2,
	}, 15)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q2" {
		t.Errorf("got %q, want Q2 (novelty)", got.ID)
	}
}

func TestSuggest_MultiTargetBonus(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}, {ID: "B"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_single", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_double", LinkedConcepts: []string{"A", "B"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -1.0)
	p.SetScore("B", -0.5)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_double" {
		t.Errorf("got %q, want Q_double (covers another weak concept)", got.ID)
	}
}

func TestSuggest_LowerDifficultyBreaksTies(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_3", LinkedConcepts: []string{"A"}, Difficulty: 3, Style: "mc"},
		quiz.Quiz{ID: "Q_2", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 0.5)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_2" {
		t.Errorf("got %q, want Q_2 (lower difficulty)", got.ID)
	}
}

func TestSuggest_FallbackEasiest(t *testing.T) {
	// Everything is mastered; the easiest fallback serves a review of a
	// mastered concept.
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A1", LinkedConcepts: []string{"A"}, Difficulty: 1, Style: "mc"},
		quiz.Quiz{ID: "Q_A5", LinkedConcepts: []string{"A"}, Difficulty: 5, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 5.0)
	p.Schedule["A"] = &learner.ScheduleEntry{NextDueAt: t0.AddDate(0, 0, 7)}

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_A1" {
		t.Errorf("got %q, want Q_A1 (band 1-2 under easiest fallback)", got.ID)
	}
}

func TestSuggest_FallbackRandomDeterministicUnderSeed(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}, {ID: "B"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_B", LinkedConcepts: []string{"B"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 6.0)
	p.SetScore("B", 6.0)

	pol := policy.Default().WithSeed(7)
	pol.Fallback = policy.FallbackRandom

	e := New(g, bank, pol, nil)
	first, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Suggest(p, t0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("seeded random fallback not reproducible: %q vs %q", again.ID, first.ID)
		}
	}
}

func TestSuggest_TopologicalLastResort(t *testing.T) {
	// All concepts mastered-adjacent but not mastered, yet locked by a
	// weak prerequisite with no quiz of its own... the walk-up dead-ends
	// and the last-resort topological pass still serves something.
	g := mustGraph(t,
		[]knowledge.Concept{{ID: "A"}, {ID: "B"}},
		[]knowledge.Edge{{From: "A", To: "B"}},
	)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_B", LinkedConcepts: []string{"B"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", -1.0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_B" {
		t.Errorf("got %q, want Q_B (topological last resort)", got.ID)
	}
}

func TestSuggest_UnknownBankConceptsFiltered(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_ghost", LinkedConcepts: []string{"ghost"}, Difficulty: 1, Style: "mc"},
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_A" {
		t.Errorf("got %q, want Q_A (unknown concept filtered)", got.ID)
	}
}

func TestSuggest_MasteredExcludedFromPrimary(t *testing.T) {
	g := mustGraph(t, []knowledge.Concept{{ID: "A"}, {ID: "B"}}, nil)
	bank := mustBank(t,
		quiz.Quiz{ID: "Q_A", LinkedConcepts: []string{"A"}, Difficulty: 2, Style: "mc"},
		quiz.Quiz{ID: "Q_B", LinkedConcepts: []string{"B"}, Difficulty: 2, Style: "mc"},
	)
	p := learner.NewProfile("u1", t0)
	p.SetScore("A", 4.0)
	p.SetScore("B", 1.0)

	e := New(g, bank, policy.Default(), nil)
	got, err := e.Suggest(p, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "Q_B" {
		t.Errorf("got %q, want Q_B (mastered A excluded)", got.ID)
	}
}
