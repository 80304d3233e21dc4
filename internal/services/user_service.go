package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"skinmuse/internal/audit"
	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

// AvatarStorage: объектное хранилище для аватаров (S3/MinIO).
type AvatarStorage interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

var avatarExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, email, newPassword, confirmPassword string) error
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	repo     repositories.UserRepository
	auth     AuthService
	storage  AvatarStorage
	audit    audit.Recorder
	maxBytes int64
}

func NewUserService(repo repositories.UserRepository, auth AuthService, storage AvatarStorage, rec audit.Recorder, maxUploadBytes int64) UserService {
	if rec == nil {
		rec = audit.Nop{}
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &userService{
		repo:     repo,
		auth:     auth,
		storage:  storage,
		audit:    rec,
		maxBytes: maxUploadBytes,
	}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword: email в теле должен принадлежать вызывающему.
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, email, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if !utils.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != utils.NormalizeEmail(email) {
		s.audit.Security(ctx, audit.EventAccessDenied, "Password change for foreign email", map[string]any{"user_id": userID.String()})
		return ErrUserNotFound
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.audit.Activity(ctx, &userID, "Password changed")
	s.audit.Security(ctx, audit.EventPasswordChange, "Password changed", map[string]any{"user_id": userID.String()})
	return nil
}

func (s *userService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	name = utils.SanitizeText(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.repo.UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.audit.Activity(ctx, &userID, "Profile details updated")
	return s.GetByID(ctx, userID)
}

// UpdateAvatar определяет тип по содержимому файла, а не по заголовку клиента.
func (s *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64) (*models.User, error) {
	if size > s.maxBytes {
		return nil, ErrUploadTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrUploadTooLarge
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := avatarExt[contentType]
	if !ok {
		return nil, ErrUnsupportedUpload
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), ext)
	url, err := s.storage.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.repo.UpdateAvatar(ctx, userID, url); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.audit.Activity(ctx, &userID, "Profile image updated")
	return s.GetByID(ctx, userID)
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// строки пользователя уже нет: activity_logs.user_id: внешний ключ
	s.audit.Activity(ctx, nil, "User deleted: "+userID.String())
	s.audit.Security(ctx, audit.EventAccountDeleted, "User deleted", map[string]any{"user_id": userID.String()})
	return nil
}
