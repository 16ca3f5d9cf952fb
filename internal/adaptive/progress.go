package adaptive

import (
	"sort"
	"time"

	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/selection"
)

// Progress summarizes a learner's standing against the graph.
type Progress struct {
	Mastered   []string `json:"mastered"`
	InProgress []string `json:"in_progress"`
	Weak       []string `json:"weak"`

	// CoveragePct is the share of graph concepts holding a nonzero
	// score, in percent.
	CoveragePct float64 `json:"coverage_pct"`

	TotalAttempts int     `json:"total_attempts"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"accuracy"`

	// DueReviews counts schedule entries with next_due_at <= now.
	DueReviews int `json:"due_reviews"`

	// DueByBand breaks the due count down by the difficulty band each
	// concept would currently select, keyed "lo-hi".
	DueByBand map[string]int `json:"due_by_band"`
}

// LearningProgress computes the read-only progress view. The profile is
// never mutated.
func (s *Service) LearningProgress(p *learner.Profile, now time.Time) Progress {
	var prog Progress
	prog.DueByBand = make(map[string]int)

	for id, score := range p.Scores {
		switch {
		case score >= s.pol.MasteryThreshold:
			prog.Mastered = append(prog.Mastered, id)
		case score <= s.pol.WeakThreshold:
			prog.Weak = append(prog.Weak, id)
		default:
			prog.InProgress = append(prog.InProgress, id)
		}
	}
	sort.Strings(prog.Mastered)
	sort.Strings(prog.InProgress)
	sort.Strings(prog.Weak)

	if total := s.graph.Len(); total > 0 {
		covered := 0
		for id, score := range p.Scores {
			if score != 0 && s.graph.Contains(id) {
				covered++
			}
		}
		prog.CoveragePct = float64(covered) / float64(total) * 100
	}

	prog.TotalAttempts = p.TotalAttempts
	prog.TotalCorrect = p.TotalCorrect
	prog.Accuracy = p.OverallAccuracy()

	for id, entry := range p.Schedule {
		if entry == nil || entry.NextDueAt.After(now) {
			continue
		}
		prog.DueReviews++
		band := selection.BandForTarget(p, id, s.pol)
		prog.DueByBand[band.String()]++
	}

	return prog
}
