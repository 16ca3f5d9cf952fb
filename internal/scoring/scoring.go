package scoring

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizpath/internal/knowledge"
	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
	"github.com/abhisek/quizpath/internal/quiz"
)

// Scorer applies score deltas and schedule transitions after an answer.
// Apply is a pure transformation of the profile value; the input profile
// is never mutated.
type Scorer struct {
	graph *knowledge.Graph
	pol   policy.Policy
	log   *zap.Logger
}

// New creates a scorer. A nil logger disables logging.
func New(graph *knowledge.Graph, pol policy.Policy, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{graph: graph, pol: pol, log: log}
}

// Apply records one answered quiz: clamped score deltas on the linked
// concepts, a one-time bonus on their direct prerequisites when correct,
// schedule advancement or lapse, history append, and aggregate counters.
// On validation failure the input profile is returned unchanged.
func (s *Scorer) Apply(p *learner.Profile, q quiz.Quiz, correct bool, now time.Time) (*learner.Profile, error) {
	if missing := s.graph.MissingIDs(q.LinkedConcepts); len(missing) > 0 {
		return p, &knowledge.UnknownConceptError{ID: missing[0]}
	}
	if s.pol.RejectStaleWrites && now.Before(p.LastUpdated) {
		return p, &StaleProfileError{WriterTime: now, LastUpdated: p.LastUpdated}
	}

	next := p.Clone()

	delta := s.pol.CorrectDelta
	if !correct {
		delta = s.pol.IncorrectDelta
	}
	linked := uniqueIDs(q.LinkedConcepts)
	for _, c := range linked {
		old := next.Score(c)
		next.SetScore(c, s.pol.Clamp(old+delta))
		s.log.Debug("score delta",
			zap.String("concept", c),
			zap.Float64("old", old),
			zap.Float64("new", next.Score(c)))
	}

	if correct {
		for _, prereq := range s.prerequisiteSet(linked) {
			old := next.Score(prereq)
			next.SetScore(prereq, s.pol.Clamp(old+s.pol.PrereqBonus))
			s.log.Debug("prerequisite bonus",
				zap.String("concept", prereq),
				zap.Float64("old", old),
				zap.Float64("new", next.Score(prereq)))
		}
	}

	for _, c := range linked {
		s.updateSchedule(next, c, correct, now)
	}

	next.AppendAttempt(learner.Attempt{
		QuizID:     q.ID,
		Concepts:   slices.Clone(q.LinkedConcepts),
		Correct:    correct,
		At:         now,
		Difficulty: q.Difficulty,
	}, s.pol.HistoryCap)

	next.TotalAttempts++
	if correct {
		next.TotalCorrect++
	}
	next.LastUpdated = now

	return next, nil
}

// prerequisiteSet is the union of direct prerequisites of the linked
// concepts, minus the linked set itself, sorted for stable application.
func (s *Scorer) prerequisiteSet(linked []string) []string {
	linkedSet := make(map[string]bool, len(linked))
	for _, c := range linked {
		linkedSet[c] = true
	}
	seen := make(map[string]bool)
	var result []string
	for _, c := range linked {
		prereqs, err := s.graph.DirectPrerequisites(c)
		if err != nil {
			continue
		}
		for _, p := range prereqs {
			if linkedSet[p] || seen[p] {
				continue
			}
			seen[p] = true
			result = append(result, p)
		}
	}
	slices.Sort(result)
	return result
}

// updateSchedule advances or resets the spaced-repetition entry for one
// concept. Rolling accuracy is exponentially smoothed over the recent
// window; a correct answer with accuracy still below 0.5 regresses the
// interval one step as a safety margin.
func (s *Scorer) updateSchedule(p *learner.Profile, conceptID string, correct bool, now time.Time) {
	entry := p.Entry(conceptID)
	if entry == nil {
		entry = &learner.ScheduleEntry{}
		p.Schedule[conceptID] = entry
	}

	// The current attempt counts toward the window; a zero window keeps
	// no memory at all.
	n := 1
	if s.pol.RecentWindow > 0 {
		_, observed := p.RecentAccuracy(conceptID, s.pol.RecentWindow)
		n = observed + 1
		if n > s.pol.RecentWindow {
			n = s.pol.RecentWindow
		}
	}
	hit := 0.0
	if correct {
		hit = 1.0
	}
	entry.RollingAccuracy = (entry.RollingAccuracy*float64(n-1) + hit) / float64(n)

	if correct {
		entry.SuccessStreak++
		if entry.IntervalIndex < s.pol.MaxIntervalIndex() {
			entry.IntervalIndex++
		}
		if entry.RollingAccuracy < 0.5 && entry.IntervalIndex > 0 {
			entry.IntervalIndex--
		}
	} else {
		entry.Lapses++
		entry.SuccessStreak = 0
		entry.IntervalIndex = 0
	}

	entry.LastSeenAt = now
	entry.NextDueAt = now.AddDate(0, 0, s.pol.IntervalDays(entry.IntervalIndex))

	s.log.Debug("schedule transition",
		zap.String("concept", conceptID),
		zap.Bool("correct", correct),
		zap.Int("interval_index", entry.IntervalIndex),
		zap.Int("streak", entry.SuccessStreak),
		zap.Int("lapses", entry.Lapses),
		zap.Float64("rolling_accuracy", entry.RollingAccuracy),
		zap.Time("next_due_at", entry.NextDueAt))
}

func uniqueIDs(in []string) []string {
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
