package learner

import (
	"maps"
	"slices"
	"time"
)

// ScheduleEntry is the spaced-repetition state for one concept.
type ScheduleEntry struct {
	LastSeenAt      time.Time `json:"last_seen_at"`
	NextDueAt       time.Time `json:"next_due_at"`
	IntervalIndex   int       `json:"interval_index"`
	SuccessStreak   int       `json:"success_streak"`
	Lapses          int       `json:"lapses"`
	RollingAccuracy float64   `json:"rolling_accuracy"`
}

// Attempt records one answered quiz.
type Attempt struct {
	QuizID     string    `json:"quiz_id"`
	Concepts   []string  `json:"concepts"`
	Correct    bool      `json:"correct"`
	At         time.Time `json:"at"`
	Difficulty int       `json:"difficulty"`
}

// Profile is the per-learner mutable state. It is owned by a single
// writer; the scoring system mutates it only through cloned values.
type Profile struct {
	LearnerID     string                    `json:"learner_id"`
	Scores        map[string]float64        `json:"scores"`
	Schedule      map[string]*ScheduleEntry `json:"schedule"`
	History       []Attempt                 `json:"history"`
	TotalAttempts int                       `json:"total_attempts"`
	TotalCorrect  int                       `json:"total_correct"`
	CreatedAt     time.Time                 `json:"created_at"`
	LastUpdated   time.Time                 `json:"last_updated"`
}

// NewProfile creates an empty profile for a learner.
func NewProfile(learnerID string, now time.Time) *Profile {
	return &Profile{
		LearnerID:   learnerID,
		Scores:      make(map[string]float64),
		Schedule:    make(map[string]*ScheduleEntry),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Score returns the effective score for a concept; missing means 0.
func (p *Profile) Score(conceptID string) float64 {
	return p.Scores[conceptID]
}

// SetScore stores a score. Callers are responsible for clamping.
func (p *Profile) SetScore(conceptID string, score float64) {
	if p.Scores == nil {
		p.Scores = make(map[string]float64)
	}
	p.Scores[conceptID] = score
}

// Entry returns the schedule entry for a concept, or nil.
func (p *Profile) Entry(conceptID string) *ScheduleEntry {
	return p.Schedule[conceptID]
}

// Clone deep-copies the profile.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Scores = maps.Clone(p.Scores)
	if cp.Scores == nil {
		cp.Scores = make(map[string]float64)
	}
	cp.Schedule = make(map[string]*ScheduleEntry, len(p.Schedule))
	for id, e := range p.Schedule {
		ecp := *e
		cp.Schedule[id] = &ecp
	}
	cp.History = make([]Attempt, len(p.History))
	for i, a := range p.History {
		cp.History[i] = a
		cp.History[i].Concepts = slices.Clone(a.Concepts)
	}
	return &cp
}

// AppendAttempt records an attempt, discarding the oldest entry when the
// history would exceed cap.
func (p *Profile) AppendAttempt(a Attempt, cap int) {
	p.History = append(p.History, a)
	if cap > 0 && len(p.History) > cap {
		p.History = p.History[len(p.History)-cap:]
	}
}

// RecentAttempts returns up to k attempts, most recent first. An empty
// conceptID matches every attempt; otherwise only attempts whose linked
// concepts include it are returned. k <= 0 means no limit.
func (p *Profile) RecentAttempts(conceptID string, k int) []Attempt {
	var result []Attempt
	for i := len(p.History) - 1; i >= 0; i-- {
		a := p.History[i]
		if conceptID != "" && !slices.Contains(a.Concepts, conceptID) {
			continue
		}
		result = append(result, a)
		if k > 0 && len(result) == k {
			break
		}
	}
	return result
}

// RecentAccuracy computes accuracy over the most recent window attempts
// touching the concept. Returns the accuracy and the number of attempts
// observed; callers decide what an empty window means.
func (p *Profile) RecentAccuracy(conceptID string, window int) (float64, int) {
	attempts := p.RecentAttempts(conceptID, window)
	if len(attempts) == 0 {
		return 0, 0
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(attempts)), len(attempts)
}

// OverallAccuracy is total correct over total attempts, 0 when empty.
func (p *Profile) OverallAccuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.TotalCorrect) / float64(p.TotalAttempts)
}
