package selection

import (
	"fmt"

	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
	"github.com/abhisek/quizpath/internal/quiz"
)

// Band is an inclusive difficulty sub-range of [1,5].
type Band struct {
	Lo, Hi int
}

func (b Band) String() string {
	return fmt.Sprintf("%d-%d", b.Lo, b.Hi)
}

// Contains reports whether a difficulty level falls inside the band.
func (b Band) Contains(difficulty int) bool {
	return difficulty >= b.Lo && difficulty <= b.Hi
}

// Widen grows the band by one level on each side, within [1,5].
func (b Band) Widen() Band {
	w := Band{Lo: b.Lo - 1, Hi: b.Hi + 1}
	if w.Lo < quiz.MinDifficulty {
		w.Lo = quiz.MinDifficulty
	}
	if w.Hi > quiz.MaxDifficulty {
		w.Hi = quiz.MaxDifficulty
	}
	return w
}

// FullBand covers every difficulty level.
var FullBand = Band{Lo: quiz.MinDifficulty, Hi: quiz.MaxDifficulty}

var defaultBand = Band{Lo: 2, Hi: 3}

// BandForTarget maps the target's score and recent accuracy to a
// difficulty band; the higher of the two bands wins. With a zero recent
// window the band defaults to 2-3.
func BandForTarget(p *learner.Profile, target string, pol policy.Policy) Band {
	if pol.RecentWindow == 0 {
		return defaultBand
	}

	score := p.Score(target)
	accuracy, observed := p.RecentAccuracy(target, pol.RecentWindow)
	if observed == 0 {
		accuracy = 0.5
	}

	sb := scoreBand(score, pol)
	ab := accuracyBand(accuracy)
	if ab.Lo > sb.Lo {
		return ab
	}
	return sb
}

func scoreBand(score float64, pol policy.Policy) Band {
	switch {
	case score <= -1:
		return Band{1, 2}
	case score < 0:
		return Band{1, 2}
	case score <= 1:
		return Band{2, 3}
	case score <= 2:
		return Band{3, 4}
	case score < pol.MasteryThreshold:
		return Band{4, 5}
	default:
		// Mastered targets only appear via reviews and fallbacks.
		return Band{4, 5}
	}
}

func accuracyBand(accuracy float64) Band {
	switch {
	case accuracy < 0.50:
		return Band{1, 2}
	case accuracy < 0.70:
		return Band{2, 3}
	case accuracy < 0.85:
		return Band{3, 4}
	default:
		return Band{4, 5}
	}
}
