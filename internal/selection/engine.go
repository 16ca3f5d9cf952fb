package selection

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizpath/internal/knowledge"
	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
	"github.com/abhisek/quizpath/internal/quiz"
)

// Engine chooses the next quiz for a learner. For a fixed profile,
// graph, bank, clock, and policy the returned quiz is the same on every
// invocation; any randomness is reproducible under the policy seed.
type Engine struct {
	graph *knowledge.Graph
	bank  *quiz.Bank
	pol   policy.Policy
	log   *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(graph *knowledge.Graph, bank *quiz.Bank, pol policy.Policy, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{graph: graph, bank: bank, pol: pol, log: log}
}

// Suggest picks the single best next quiz: weakness-first over unlocked
// concepts, walking up through unmet prerequisites, then due reviews,
// then the configured fallback.
func (e *Engine) Suggest(p *learner.Profile, now time.Time) (quiz.Quiz, error) {
	universe := e.conceptUniverse()
	weakSet := e.weakSet(p, universe)
	rng := e.newRNG()

	if q, target, band, ok := e.suggestPrimary(p, universe, weakSet, rng); ok {
		e.log.Info("suggestion chosen",
			zap.String("quiz", q.ID),
			zap.String("target", target),
			zap.String("band", band.String()),
			zap.String("stage", "primary"))
		return q, nil
	}

	if q, target, band, ok := e.suggestReview(p, universe, weakSet, now, rng); ok {
		e.log.Info("suggestion chosen",
			zap.String("quiz", q.ID),
			zap.String("target", target),
			zap.String("band", band.String()),
			zap.String("stage", "review"))
		return q, nil
	}

	return e.suggestFallback(p, universe, weakSet, rng)
}

// conceptUniverse is the set of graph concepts referenced by the bank,
// sorted by ID. Unknown references are filtered out and logged.
func (e *Engine) conceptUniverse() []string {
	var universe []string
	for _, id := range e.bank.ConceptIDs() {
		if !e.graph.Contains(id) {
			e.log.Warn("quiz references unknown concept, filtering", zap.String("concept", id))
			continue
		}
		universe = append(universe, id)
	}
	return universe
}

func (e *Engine) weakSet(p *learner.Profile, universe []string) map[string]bool {
	weak := make(map[string]bool)
	for _, id := range universe {
		if p.Score(id) <= e.pol.WeakThreshold {
			weak[id] = true
		}
	}
	return weak
}

// newRNG returns a seeded RNG when the policy configures one, else nil.
// Without an RNG, randomized choices take the first candidate so that
// unseeded runs stay deterministic.
func (e *Engine) newRNG() *rand.Rand {
	if e.pol.RNGSeed == nil {
		return nil
	}
	return rand.New(rand.NewSource(*e.pol.RNGSeed))
}

// suggestPrimary walks the weakness-ordered queue, replacing locked
// candidates by their unmet direct prerequisites until an unlocked
// target yields a quiz.
func (e *Engine) suggestPrimary(p *learner.Profile, universe []string, weakSet map[string]bool, rng *rand.Rand) (quiz.Quiz, string, Band, bool) {
	var queue []string
	for _, id := range universe {
		if p.Score(id) < e.pol.MasteryThreshold {
			queue = append(queue, id)
		}
	}
	sortByScore(queue, p)

	expanded := make(map[string]bool)
	tried := make(map[string]bool)

	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]
		if tried[target] {
			continue
		}

		unmet := e.unmetPrerequisites(p, target)
		if len(unmet) > 0 {
			// Locked: walk up. The deferred candidate stays locked for
			// the rest of this call, so it is not re-enqueued.
			tried[target] = true
			if !expanded[target] {
				expanded[target] = true
				sortByScore(unmet, p)
				queue = append(unmet, queue...)
			}
			continue
		}

		tried[target] = true
		band := BandForTarget(p, target, e.pol)
		if q, ok := e.pickForTarget(p, target, band, weakSet, rng); ok {
			return q, target, band, true
		}
	}
	return quiz.Quiz{}, "", Band{}, false
}

// unmetPrerequisites returns the direct prerequisites of id whose score
// is below the unlock threshold.
func (e *Engine) unmetPrerequisites(p *learner.Profile, id string) []string {
	prereqs, err := e.graph.DirectPrerequisites(id)
	if err != nil {
		return nil
	}
	var unmet []string
	for _, pre := range prereqs {
		if p.Score(pre) < e.pol.WeakThreshold {
			unmet = append(unmet, pre)
		}
	}
	return unmet
}

// suggestReview surfaces at most MaxDueReviewsPerSuggestion in-progress
// concepts whose review is due, most overdue first.
func (e *Engine) suggestReview(p *learner.Profile, universe []string, weakSet map[string]bool, now time.Time, rng *rand.Rand) (quiz.Quiz, string, Band, bool) {
	type due struct {
		id    string
		at    time.Time
		score float64
	}
	var pool []due
	for _, id := range universe {
		entry := p.Entry(id)
		if entry == nil || entry.NextDueAt.After(now) {
			continue
		}
		score := p.Score(id)
		if score < e.pol.WeakThreshold || score >= e.pol.MasteryThreshold {
			continue
		}
		pool = append(pool, due{id: id, at: entry.NextDueAt, score: score})
	}
	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].at.Equal(pool[j].at) {
			return pool[i].at.Before(pool[j].at)
		}
		if pool[i].score != pool[j].score {
			return pool[i].score < pool[j].score
		}
		return pool[i].id < pool[j].id
	})

	limit := e.pol.MaxDueReviewsPerSuggestion
	if limit > len(pool) {
		limit = len(pool)
	}
	for i := 0; i < limit; i++ {
		target := pool[i].id
		band := BandForTarget(p, target, e.pol)
		if q, ok := e.pickForTarget(p, target, band, weakSet, rng); ok {
			return q, target, band, true
		}
	}
	return quiz.Quiz{}, "", Band{}, false
}

// suggestFallback applies the configured fallback strategy, then the
// last-resort topological walk.
func (e *Engine) suggestFallback(p *learner.Profile, universe []string, weakSet map[string]bool, rng *rand.Rand) (quiz.Quiz, error) {
	e.log.Warn("primary and review selection empty, using fallback",
		zap.String("strategy", string(e.pol.Fallback)))

	switch e.pol.Fallback {
	case policy.FallbackRaise:
		return quiz.Quiz{}, &NoQuizAvailableError{Reason: "no candidate matched and fallback is disabled"}

	case policy.FallbackEasiest:
		if target, ok := e.easiestReviewTarget(p, universe); ok {
			band := Band{Lo: 1, Hi: 2}
			if q, ok := e.pickForTarget(p, target, band, weakSet, rng); ok {
				e.log.Info("suggestion chosen",
					zap.String("quiz", q.ID),
					zap.String("target", target),
					zap.String("band", band.String()),
					zap.String("stage", "fallback-easiest"))
				return q, nil
			}
		}

	case policy.FallbackRandom:
		if len(universe) > 0 {
			target := universe[e.intn(rng, len(universe))]
			band := BandForTarget(p, target, e.pol)
			if q, ok := e.pickForTarget(p, target, band, weakSet, rng); ok {
				e.log.Info("suggestion chosen",
					zap.String("quiz", q.ID),
					zap.String("target", target),
					zap.String("band", band.String()),
					zap.String("stage", "fallback-random"))
				return q, nil
			}
		}
	}

	// Last resort: topologically earliest unmastered concept with a quiz.
	for _, id := range e.graph.TopologicalOrder() {
		if p.Score(id) >= e.pol.MasteryThreshold {
			continue
		}
		if len(e.bank.ForConcept(id)) == 0 {
			continue
		}
		band := BandForTarget(p, id, e.pol)
		if q, ok := e.pickForTarget(p, id, band, weakSet, rng); ok {
			e.log.Info("suggestion chosen",
				zap.String("quiz", q.ID),
				zap.String("target", id),
				zap.String("band", band.String()),
				zap.String("stage", "fallback-topological"))
			return q, nil
		}
	}

	return quiz.Quiz{}, &NoQuizAvailableError{Reason: "quiz bank exhausted"}
}

// easiestReviewTarget picks the mastered concept with the earliest next
// due date, or the first mastered concept by ID when none is scheduled.
func (e *Engine) easiestReviewTarget(p *learner.Profile, universe []string) (string, bool) {
	best := ""
	var bestDue time.Time
	fallback := ""
	for _, id := range universe {
		if p.Score(id) < e.pol.MasteryThreshold {
			continue
		}
		if fallback == "" {
			fallback = id
		}
		entry := p.Entry(id)
		if entry == nil {
			continue
		}
		if best == "" || entry.NextDueAt.Before(bestDue) || (entry.NextDueAt.Equal(bestDue) && id < best) {
			best = id
			bestDue = entry.NextDueAt
		}
	}
	if best != "" {
		return best, true
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// pickForTarget selects an item for the target concept: filter by band,
// widening once by one level and then to the full range when empty, and
// break ties by variety, novelty, weak-coverage, difficulty, then ID.
func (e *Engine) pickForTarget(p *learner.Profile, target string, band Band, weakSet map[string]bool, rng *rand.Rand) (quiz.Quiz, bool) {
	candidates := e.bank.ForConcept(target)
	if len(candidates) == 0 {
		return quiz.Quiz{}, false
	}

	bands := []Band{band, band.Widen(), FullBand}
	var pool []quiz.Quiz
	for _, b := range bands {
		pool = filterByBand(candidates, b)
		if len(pool) > 0 {
			break
		}
	}
	if len(pool) == 0 {
		return quiz.Quiz{}, false
	}

	return e.breakTies(p, pool, target, weakSet, rng), true
}

func filterByBand(quizzes []quiz.Quiz, band Band) []quiz.Quiz {
	var out []quiz.Quiz
	for _, q := range quizzes {
		if band.Contains(q.Difficulty) {
			out = append(out, q)
		}
	}
	return out
}

// breakTies applies the tie-breaking ladder: (a) style unseen in the
// recent window, (b) quiz unseen in the recent window, (c) most
// additional weak concepts covered, (d) lowest difficulty, (e) quiz ID
// ascending, or a seeded random pick among the survivors.
func (e *Engine) breakTies(p *learner.Profile, pool []quiz.Quiz, target string, weakSet map[string]bool, rng *rand.Rand) quiz.Quiz {
	var recent []learner.Attempt
	if e.pol.RecentWindow > 0 {
		recent = p.RecentAttempts("", e.pol.RecentWindow)
	}
	recentStyles := make(map[string]bool, len(recent))
	recentQuizzes := make(map[string]bool, len(recent))
	for _, a := range recent {
		recentQuizzes[a.QuizID] = true
		if q, ok := e.bank.Get(a.QuizID); ok {
			recentStyles[q.Style] = true
		}
	}

	pool = preferQuizzes(pool, func(q quiz.Quiz) bool { return !recentStyles[q.Style] })
	pool = preferQuizzes(pool, func(q quiz.Quiz) bool { return !recentQuizzes[q.ID] })

	if len(pool) > 1 {
		best := -1
		for _, q := range pool {
			if c := weakCoverage(q, target, weakSet); c > best {
				best = c
			}
		}
		pool = keepQuizzes(pool, func(q quiz.Quiz) bool { return weakCoverage(q, target, weakSet) == best })
	}

	if len(pool) > 1 {
		min := pool[0].Difficulty
		for _, q := range pool[1:] {
			if q.Difficulty < min {
				min = q.Difficulty
			}
		}
		pool = keepQuizzes(pool, func(q quiz.Quiz) bool { return q.Difficulty == min })
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	if rng != nil && len(pool) > 1 {
		return pool[rng.Intn(len(pool))]
	}
	return pool[0]
}

// preferQuizzes restricts the pool to items matching the predicate when
// any do; otherwise the pool passes through unchanged.
func preferQuizzes(pool []quiz.Quiz, pred func(quiz.Quiz) bool) []quiz.Quiz {
	if len(pool) <= 1 {
		return pool
	}
	kept := keepQuizzes(pool, pred)
	if len(kept) == 0 {
		return pool
	}
	return kept
}

func keepQuizzes(pool []quiz.Quiz, pred func(quiz.Quiz) bool) []quiz.Quiz {
	var out []quiz.Quiz
	for _, q := range pool {
		if pred(q) {
			out = append(out, q)
		}
	}
	return out
}

// weakCoverage counts the weak concepts a quiz exercises besides the
// target itself.
func weakCoverage(q quiz.Quiz, target string, weakSet map[string]bool) int {
	count := 0
	seen := make(map[string]bool, len(q.LinkedConcepts))
	for _, c := range q.LinkedConcepts {
		if c == target || seen[c] {
			continue
		}
		seen[c] = true
		if weakSet[c] {
			count++
		}
	}
	return count
}

// intn draws from the seeded RNG when configured, else picks 0 so the
// unseeded path stays deterministic.
func (e *Engine) intn(rng *rand.Rand, n int) int {
	if rng == nil {
		return 0
	}
	return rng.Intn(n)
}

// sortByScore orders concept IDs by effective score ascending, ties by
// ID ascending.
func sortByScore(ids []string, p *learner.Profile) {
	sort.Slice(ids, func(i, j int) bool {
		si, sj := p.Score(ids[i]), p.Score(ids[j])
		if si != sj {
			return si < sj
		}
		return ids[i] < ids[j]
	})
}
