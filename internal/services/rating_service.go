package services

import (
	"context"

	"github.com/google/uuid"

	"skinmuse/internal/repositories"
)

const (
	minRating = 1
	maxRating = 5
)

type RatingService interface {
	Rate(ctx context.Context, userID uuid.UUID, rating int) error
	Get(ctx context.Context, userID uuid.UUID) (*int, error)
}

type ratingService struct {
	repo repositories.RatingRepository
}

func NewRatingService(repo repositories.RatingRepository) RatingService {
	return &ratingService{repo: repo}
}

func (s *ratingService) Rate(ctx context.Context, userID uuid.UUID, rating int) error {
	if rating < minRating || rating > maxRating {
		return ErrInvalidRating
	}
	return s.repo.Upsert(ctx, userID, rating)
}

func (s *ratingService) Get(ctx context.Context, userID uuid.UUID) (*int, error) {
	return s.repo.Get(ctx, userID)
}
