package policy

import (
	"fmt"
	"strings"
)

// FallbackStrategy selects what the engine does when no quiz matches the
// primary criteria.
type FallbackStrategy string

const (
	FallbackEasiest FallbackStrategy = "easiest"
	FallbackRandom  FallbackStrategy = "random"
	FallbackRaise   FallbackStrategy = "raise"
)

// Policy holds the tunables consumed by the scoring system and the
// selection engine. Treat values as frozen after Validate.
type Policy struct {
	// Clamp bounds for mastery scores.
	ScoreMin float64
	ScoreMax float64

	// Score >= MasteryThreshold means mastered; score <= WeakThreshold
	// means weak. In-progress is the open interval between them.
	MasteryThreshold float64
	WeakThreshold    float64

	// Deltas applied to every linked concept on an answer.
	CorrectDelta   float64
	IncorrectDelta float64

	// Bonus applied once per unique direct prerequisite on a correct answer.
	PrereqBonus float64

	// Spaced-repetition ladder, in days, indexed by a schedule entry's
	// interval index.
	ReviewIntervals []int

	// Attempts inspected for difficulty adaptation and variety.
	RecentWindow int

	// Maximum retained attempt records per profile.
	HistoryCap int

	// Cap on overdue items surfaced in one suggestion call.
	MaxDueReviewsPerSuggestion int

	Fallback FallbackStrategy

	// When set, all tie-breaking randomness is seeded with this value.
	RNGSeed *int64

	// When true, UpdateScores rejects writers whose clock precedes the
	// profile's LastUpdated with a StaleProfile error.
	RejectStaleWrites bool
}

// Default returns the stock policy.
func Default() Policy {
	return Policy{
		ScoreMin:                   -5.0,
		ScoreMax:                   10.0,
		MasteryThreshold:           3.0,
		WeakThreshold:              0.0,
		CorrectDelta:               1.0,
		IncorrectDelta:             -1.0,
		PrereqBonus:                0.1,
		ReviewIntervals:            []int{1, 3, 7, 14, 30, 60, 120},
		RecentWindow:               10,
		HistoryCap:                 15,
		MaxDueReviewsPerSuggestion: 1,
		Fallback:                   FallbackEasiest,
	}
}

// WithSeed returns a copy of the policy with the RNG seed set.
func (p Policy) WithSeed(seed int64) Policy {
	p.RNGSeed = &seed
	return p
}

// Clamp bounds a score to [ScoreMin, ScoreMax].
func (p Policy) Clamp(x float64) float64 {
	if x < p.ScoreMin {
		return p.ScoreMin
	}
	if x > p.ScoreMax {
		return p.ScoreMax
	}
	return x
}

// IntervalDays returns the review interval for an index, saturating at
// the ends of the ladder.
func (p Policy) IntervalDays(index int) int {
	if index < 0 {
		return p.ReviewIntervals[0]
	}
	if index >= len(p.ReviewIntervals) {
		return p.ReviewIntervals[len(p.ReviewIntervals)-1]
	}
	return p.ReviewIntervals[index]
}

// MaxIntervalIndex is the highest valid interval index.
func (p Policy) MaxIntervalIndex() int {
	return len(p.ReviewIntervals) - 1
}

// Validate checks threshold ordering and structural constraints.
// Returns *InvalidPolicyError describing every problem found.
func (p Policy) Validate() error {
	var problems []string

	if p.ScoreMin >= p.ScoreMax {
		problems = append(problems, fmt.Sprintf("ScoreMin (%.2f) must be below ScoreMax (%.2f)", p.ScoreMin, p.ScoreMax))
	}
	if p.WeakThreshold > p.MasteryThreshold {
		problems = append(problems, fmt.Sprintf("WeakThreshold (%.2f) must not exceed MasteryThreshold (%.2f)", p.WeakThreshold, p.MasteryThreshold))
	}
	if p.MasteryThreshold > p.ScoreMax {
		problems = append(problems, fmt.Sprintf("MasteryThreshold (%.2f) must be reachable within ScoreMax (%.2f)", p.MasteryThreshold, p.ScoreMax))
	}
	if p.WeakThreshold < p.ScoreMin {
		problems = append(problems, fmt.Sprintf("WeakThreshold (%.2f) must be at or above ScoreMin (%.2f)", p.WeakThreshold, p.ScoreMin))
	}
	if p.CorrectDelta <= 0 {
		problems = append(problems, fmt.Sprintf("CorrectDelta must be positive, got %.2f", p.CorrectDelta))
	}
	if p.IncorrectDelta >= 0 {
		problems = append(problems, fmt.Sprintf("IncorrectDelta must be negative, got %.2f", p.IncorrectDelta))
	}
	if p.PrereqBonus < 0 {
		problems = append(problems, fmt.Sprintf("PrereqBonus must not be negative, got %.2f", p.PrereqBonus))
	}
	if len(p.ReviewIntervals) == 0 {
		problems = append(problems, "ReviewIntervals must not be empty")
	}
	for i, d := range p.ReviewIntervals {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("ReviewIntervals[%d] must be positive, got %d", i, d))
		}
		if i > 0 && d <= p.ReviewIntervals[i-1] {
			problems = append(problems, fmt.Sprintf("ReviewIntervals must be strictly ascending, got %d after %d", d, p.ReviewIntervals[i-1]))
		}
	}
	if p.RecentWindow < 0 {
		problems = append(problems, fmt.Sprintf("RecentWindow must not be negative, got %d", p.RecentWindow))
	}
	if p.HistoryCap < 1 {
		problems = append(problems, fmt.Sprintf("HistoryCap must be at least 1, got %d", p.HistoryCap))
	}
	if p.MaxDueReviewsPerSuggestion < 0 {
		problems = append(problems, fmt.Sprintf("MaxDueReviewsPerSuggestion must not be negative, got %d", p.MaxDueReviewsPerSuggestion))
	}
	switch p.Fallback {
	case FallbackEasiest, FallbackRandom, FallbackRaise:
	default:
		problems = append(problems, fmt.Sprintf("unknown fallback strategy %q", p.Fallback))
	}

	if len(problems) > 0 {
		return &InvalidPolicyError{Problems: problems}
	}
	return nil
}

// InvalidPolicyError reports a policy whose values cannot be honored.
type InvalidPolicyError struct {
	Problems []string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid policy: %s", strings.Join(e.Problems, "; "))
}
