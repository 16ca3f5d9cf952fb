package quiz

import (
	"fmt"
	"slices"
	"sort"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Choice is one answer option. The selection core treats choices as
// opaque presentation content.
type Choice struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Quiz is a single item from the quiz bank. Identity is by ID.
type Quiz struct {
	ID             string   `json:"id"`
	LinkedConcepts []string `json:"linked_concepts"`
	Difficulty     int      `json:"difficulty"`
	Style          string   `json:"style"`
	Prompt         string   `json:"prompt"`
	Choices        []Choice `json:"choices,omitempty"`
}

// Links reports whether the quiz exercises the given concept.
func (q Quiz) Links(conceptID string) bool {
	return slices.Contains(q.LinkedConcepts, conceptID)
}

// CorrectIndex returns the index of the first correct choice, or -1.
func (q Quiz) CorrectIndex() int {
	for i, c := range q.Choices {
		if c.Correct {
			return i
		}
	}
	return -1
}

// Bank is an immutable collection of quizzes indexed by linked concept.
type Bank struct {
	quizzes   []Quiz
	byID      map[string]int
	byConcept map[string][]int
}

// NewBank validates items and builds the indices. Items must have a
// unique non-empty ID, at least one linked concept, and a difficulty in
// [MinDifficulty, MaxDifficulty].
func NewBank(quizzes []Quiz) (*Bank, error) {
	b := &Bank{
		quizzes:   slices.Clone(quizzes),
		byID:      make(map[string]int, len(quizzes)),
		byConcept: make(map[string][]int),
	}
	for i, q := range b.quizzes {
		if q.ID == "" {
			return nil, fmt.Errorf("quiz at index %d has empty ID", i)
		}
		if _, ok := b.byID[q.ID]; ok {
			return nil, fmt.Errorf("duplicate quiz ID: %q", q.ID)
		}
		if len(q.LinkedConcepts) == 0 {
			return nil, fmt.Errorf("quiz %q has no linked concepts", q.ID)
		}
		if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
			return nil, fmt.Errorf("quiz %q difficulty %d out of range [%d,%d]", q.ID, q.Difficulty, MinDifficulty, MaxDifficulty)
		}
		b.byID[q.ID] = i
		for _, c := range uniqueStrings(q.LinkedConcepts) {
			b.byConcept[c] = append(b.byConcept[c], i)
		}
	}
	return b, nil
}

// Len returns the number of quizzes in the bank.
func (b *Bank) Len() int {
	return len(b.quizzes)
}

// All returns every quiz in bank order.
func (b *Bank) All() []Quiz {
	return slices.Clone(b.quizzes)
}

// Get returns a quiz by ID.
func (b *Bank) Get(id string) (Quiz, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Quiz{}, false
	}
	return b.quizzes[i], true
}

// ForConcept returns the quizzes whose linked concepts include id,
// in bank order.
func (b *Bank) ForConcept(id string) []Quiz {
	idxs := b.byConcept[id]
	result := make([]Quiz, 0, len(idxs))
	for _, i := range idxs {
		result = append(result, b.quizzes[i])
	}
	return result
}

// ConceptIDs returns every concept referenced by at least one quiz,
// sorted by ID.
func (b *Bank) ConceptIDs() []string {
	ids := make([]string, 0, len(b.byConcept))
	for id := range b.byConcept {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
