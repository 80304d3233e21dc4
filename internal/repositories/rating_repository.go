package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type RatingRepository interface {
	Upsert(ctx context.Context, userID uuid.UUID, rating int) error
	// Get возвращает nil, если пользователь ещё не оценивал.
	Get(ctx context.Context, userID uuid.UUID) (*int, error)
}

type ratingRepository struct {
	DB *sql.DB
}

func NewRatingRepository(db *sql.DB) RatingRepository {
	return &ratingRepository{DB: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, userID uuid.UUID, rating int) error {
	const q = `
		INSERT INTO user_ratings (user_id, rating)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
	`
	if _, err := r.DB.ExecContext(ctx, q, userID, rating); err != nil {
		return fmt.Errorf("rating upsert: %w", err)
	}
	return nil
}

func (r *ratingRepository) Get(ctx context.Context, userID uuid.UUID) (*int, error) {
	var rating int
	err := r.DB.QueryRowContext(ctx, `SELECT rating FROM user_ratings WHERE user_id = $1`, userID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("rating get: %w", err)
	}
	return &rating, nil
}
