package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abhisek/quizpath/internal/learner"
)

// AttemptEvent is one row of the append-only analytic history. Unlike
// the profile's bounded attempt history, this log is never trimmed.
type AttemptEvent struct {
	ID         string    `db:"id"`
	LearnerID  string    `db:"learner_id"`
	QuizID     string    `db:"quiz_id"`
	Concepts   []string  `db:"-"`
	Correct    bool      `db:"correct"`
	Difficulty int       `db:"difficulty"`
	CreatedAt  time.Time `db:"-"`
}

// EventRepo appends and queries attempt events.
type EventRepo interface {
	// Append records one attempt for a learner.
	Append(ctx context.Context, learnerID string, a learner.Attempt) error

	// RecentByLearner returns up to limit events, newest first.
	RecentByLearner(ctx context.Context, learnerID string, limit int) ([]AttemptEvent, error)

	// CountByLearner returns total and correct event counts.
	CountByLearner(ctx context.Context, learnerID string) (total, correct int, err error)
}

type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) Append(ctx context.Context, learnerID string, a learner.Attempt) error {
	id := uuid.NewString()
	concepts, err := json.Marshal(a.Concepts)
	if err != nil {
		return fmt.Errorf("marshal concepts: %w", err)
	}
	// Fixed-width fractional seconds keep text order equal to time order,
	// which RecentByLearner relies on.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attempt_events (id, learner_id, quiz_id, concepts, correct, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, learnerID, a.QuizID, string(concepts), a.Correct, a.Difficulty,
		a.At.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"))
	if err != nil {
		return fmt.Errorf("append attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentByLearner(ctx context.Context, learnerID string, limit int) ([]AttemptEvent, error) {
	type row struct {
		ID         string `db:"id"`
		LearnerID  string `db:"learner_id"`
		QuizID     string `db:"quiz_id"`
		Concepts   string `db:"concepts"`
		Correct    bool   `db:"correct"`
		Difficulty int    `db:"difficulty"`
		CreatedAt  string `db:"created_at"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, learner_id, quiz_id, concepts, correct, difficulty, created_at
		FROM attempt_events
		WHERE learner_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}

	events := make([]AttemptEvent, 0, len(rows))
	for _, rw := range rows {
		ev := AttemptEvent{
			ID:         rw.ID,
			LearnerID:  rw.LearnerID,
			QuizID:     rw.QuizID,
			Correct:    rw.Correct,
			Difficulty: rw.Difficulty,
		}
		if err := json.Unmarshal([]byte(rw.Concepts), &ev.Concepts); err != nil {
			return nil, fmt.Errorf("decode concepts for event %s: %w", rw.ID, err)
		}
		t, err := time.Parse(time.RFC3339Nano, rw.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp for event %s: %w", rw.ID, err)
		}
		ev.CreatedAt = t
		events = append(events, ev)
	}
	return events, nil
}

func (r *eventRepo) CountByLearner(ctx context.Context, learnerID string) (int, int, error) {
	var total, correct int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM attempt_events WHERE learner_id = ?`, learnerID); err != nil {
		return 0, 0, fmt.Errorf("count attempt events: %w", err)
	}
	if err := r.db.GetContext(ctx, &correct,
		`SELECT COUNT(*) FROM attempt_events WHERE learner_id = ? AND correct = 1`, learnerID); err != nil {
		return 0, 0, fmt.Errorf("count correct events: %w", err)
	}
	return total, correct, nil
}
