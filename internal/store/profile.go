package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) IncrementPoints(ctx context.Context, learnerID string, delta int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (learner_id, points, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET points = points + excluded.points,
		updated_at = excluded.updated_at`,
		learnerID, delta, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	return nil
}

func (r *profileRepo) GetProfile(ctx context.Context, learnerID string) (*Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT learner_id, points, updated_at FROM profiles WHERE learner_id = ?`, learnerID,
	).Scan(&p.LearnerID, &p.Points, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) ResetProfile(ctx context.Context, learnerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE learner_id = ?`, learnerID); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	return nil
}
