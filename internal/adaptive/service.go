package adaptive

import (
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizpath/internal/knowledge"
	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/policy"
	"github.com/abhisek/quizpath/internal/quiz"
	"github.com/abhisek/quizpath/internal/scoring"
	"github.com/abhisek/quizpath/internal/selection"
)

// Service is the adaptive core facade. The graph and bank are shared
// immutable references; profiles are owned by the caller and mutated
// only through the returned values.
type Service struct {
	graph  *knowledge.Graph
	bank   *quiz.Bank
	pol    policy.Policy
	log    *zap.Logger
	scorer *scoring.Scorer
	engine *selection.Engine
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New validates the policy and wires the scoring system and selection
// engine over the shared graph and bank.
func New(graph *knowledge.Graph, bank *quiz.Bank, pol policy.Policy, opts ...Option) (*Service, error) {
	if err := pol.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		graph: graph,
		bank:  bank,
		pol:   pol,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scorer = scoring.New(graph, pol, s.log)
	s.engine = selection.New(graph, bank, pol, s.log)
	return s, nil
}

// Graph returns the shared knowledge graph.
func (s *Service) Graph() *knowledge.Graph { return s.graph }

// Bank returns the shared quiz bank.
func (s *Service) Bank() *quiz.Bank { return s.bank }

// Policy returns the frozen policy value.
func (s *Service) Policy() policy.Policy { return s.pol }

// SuggestNextQuiz picks the single best next quiz for the learner.
func (s *Service) SuggestNextQuiz(p *learner.Profile, now time.Time) (quiz.Quiz, error) {
	return s.engine.Suggest(p, now)
}

// UpdateScores applies the outcome of an answered quiz and returns the
// new profile value; the input is logically superseded.
func (s *Service) UpdateScores(p *learner.Profile, q quiz.Quiz, correct bool, now time.Time) (*learner.Profile, error) {
	return s.scorer.Apply(p, q, correct, now)
}

// ResetProgress clears learner state. With nil conceptIDs the whole
// profile is reset: scores, schedule, history, and aggregates. With a
// list (possibly empty), only the named concepts are removed from
// scores and schedule; history and aggregates are preserved.
func (s *Service) ResetProgress(p *learner.Profile, conceptIDs []string) *learner.Profile {
	next := p.Clone()
	if conceptIDs == nil {
		fresh := learner.NewProfile(p.LearnerID, p.CreatedAt)
		fresh.LastUpdated = p.LastUpdated
		return fresh
	}
	for _, id := range conceptIDs {
		delete(next.Scores, id)
		delete(next.Schedule, id)
	}
	return next
}

// RecentAttempts returns up to k most recent attempts, optionally
// filtered to those linked to conceptID.
func (s *Service) RecentAttempts(p *learner.Profile, conceptID string, k int) []learner.Attempt {
	return p.RecentAttempts(conceptID, k)
}
