package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/quizpath/internal/learner"
)

// ErrProfileNotFound is returned by Load when no profile is stored for
// the learner.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo persists learner profiles. Saves are idempotent; a
// round-trip preserves every profile field.
type ProfileRepo interface {
	// Save upserts the profile keyed by its learner ID.
	Save(ctx context.Context, p *learner.Profile) error

	// Load returns the stored profile, or ErrProfileNotFound.
	Load(ctx context.Context, learnerID string) (*learner.Profile, error)

	// LoadOrCreate returns the stored profile, or a fresh one stamped
	// with now when none exists.
	LoadOrCreate(ctx context.Context, learnerID string, now time.Time) (*learner.Profile, error)

	// Delete removes the stored profile, if any.
	Delete(ctx context.Context, learnerID string) error
}

type profileRepo struct {
	db *sqlx.DB
}

func (r *profileRepo) Save(ctx context.Context, p *learner.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (learner_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		p.LearnerID, string(data), p.LastUpdated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save profile %q: %w", p.LearnerID, err)
	}
	return nil
}

func (r *profileRepo) Load(ctx context.Context, learnerID string) (*learner.Profile, error) {
	var data string
	err := r.db.GetContext(ctx, &data,
		`SELECT data FROM profiles WHERE learner_id = ?`, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", learnerID, err)
	}

	var p learner.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", learnerID, err)
	}
	if p.Scores == nil {
		p.Scores = make(map[string]float64)
	}
	if p.Schedule == nil {
		p.Schedule = make(map[string]*learner.ScheduleEntry)
	}
	return &p, nil
}

func (r *profileRepo) LoadOrCreate(ctx context.Context, learnerID string, now time.Time) (*learner.Profile, error) {
	p, err := r.Load(ctx, learnerID)
	if errors.Is(err, ErrProfileNotFound) {
		return learner.NewProfile(learnerID, now), nil
	}
	return p, err
}

func (r *profileRepo) Delete(ctx context.Context, learnerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE learner_id = ?`, learnerID)
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", learnerID, err)
	}
	return nil
}
