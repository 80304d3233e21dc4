package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

type PostService interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreatePostRequest) (*models.Post, error)
	List(ctx context.Context, viewerID uuid.UUID, skinType string) ([]models.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, id, userID uuid.UUID, req models.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Save(ctx context.Context, userID, postID uuid.UUID) ([]uuid.UUID, error)
	Unsave(ctx context.Context, userID, postID uuid.UUID) ([]uuid.UUID, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
}

type postService struct {
	repo repositories.PostRepository
}

func NewPostService(repo repositories.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) Create(ctx context.Context, userID uuid.UUID, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		UserID:      userID,
		Title:       utils.SanitizeText(req.Title),
		Description: utils.SanitizeText(req.Description),
		Image:       utils.SanitizeText(req.Image),
		SkinType:    utils.SanitizeText(req.SkinType),
	}
	if post.Title == "" || post.Description == "" {
		return nil, ErrEmptyContent
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, viewerID uuid.UUID, skinType string) ([]models.Post, error) {
	return s.repo.List(ctx, viewerID, skinType)
}

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, id, userID uuid.UUID, req models.UpdatePostRequest) (*models.Post, error) {
	upd := models.UpdatePostRequest{
		Title:       sanitizePtr(req.Title),
		Description: sanitizePtr(req.Description),
		Image:       sanitizePtr(req.Image),
		SkinType:    sanitizePtr(req.SkinType),
	}
	// пустой заголовок или описание затирать нельзя
	if (upd.Title != nil && *upd.Title == "") || (upd.Description != nil && *upd.Description == "") {
		return nil, ErrEmptyContent
	}
	p, err := s.repo.Update(ctx, id, userID, upd)
	if err != nil {
		return nil, mapPostErr(err)
	}
	return p, nil
}

func (s *postService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return mapPostErr(s.repo.Delete(ctx, id, userID))
}

func (s *postService) Save(ctx context.Context, userID, postID uuid.UUID) ([]uuid.UUID, error) {
	added, err := s.repo.Save(ctx, userID, postID)
	if err != nil {
		return nil, mapPostErr(err)
	}
	if !added {
		return nil, ErrAlreadySaved
	}
	return s.repo.SavedIDs(ctx, userID)
}

func (s *postService) Unsave(ctx context.Context, userID, postID uuid.UUID) ([]uuid.UUID, error) {
	if err := s.repo.Unsave(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.repo.SavedIDs(ctx, userID)
}

func (s *postService) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	return s.repo.ListSaved(ctx, userID)
}

func mapPostErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := utils.SanitizeText(*s)
	return &v
}
