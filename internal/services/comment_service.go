package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

type CommentService interface {
	Create(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Comment, error)
	GetMine(ctx context.Context, id, userID uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, id, userID uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
}

type commentService struct {
	repo repositories.CommentRepository
}

func NewCommentService(repo repositories.CommentRepository) CommentService {
	return &commentService{repo: repo}
}

func (s *commentService) Create(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error) {
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyContent
	}
	c := &models.Comment{PostID: postID, UserID: userID, Comment: text}
	if err := s.repo.Create(ctx, c); err != nil {
		// FK на posts: поста нет
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Comment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *commentService) GetMine(ctx context.Context, id, userID uuid.UUID) (*models.Comment, error) {
	c, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, mapCommentErr(err)
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, id, userID uuid.UUID, text string) (*models.Comment, error) {
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyContent
	}
	c, err := s.repo.Update(ctx, id, userID, text)
	if err != nil {
		return nil, mapCommentErr(err)
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return mapCommentErr(s.repo.Delete(ctx, id, userID))
}

func (s *commentService) ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

func mapCommentErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}
