package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/logger"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword, confirmPassword string) error
}

type PasswordResetConfig struct {
	TokenTTL        time.Duration
	BaseURL         string
	HideEnumeration bool
}

type passwordResetService struct {
	users  repositories.UserRepository
	emails EmailService
	auth   AuthService
	audit  audit.Recorder
	cfg    PasswordResetConfig
	now    func() time.Time
}

func NewPasswordResetService(users repositories.UserRepository, emails EmailService, auth AuthService, rec audit.Recorder, cfg PasswordResetConfig) PasswordResetService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &passwordResetService{
		users:  users,
		emails: emails,
		auth:   auth,
		audit:  rec,
		cfg:    cfg,
		now:    time.Now,
	}
}

// RequestReset: новый токен перезаписывает предыдущий незавершённый сброс.
// В БД хранится только sha256 от токена.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Info().Str("email", logger.MaskEmail(email)).Msg("[password-reset] request for unknown email")
			if s.cfg.HideEnumeration {
				return nil
			}
			return ErrUserNotFound
		}
		return err
	}

	token, err := utils.NewRandomToken(32)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordReset(ctx, user.ID, utils.HashToken(token), s.now().Add(s.cfg.TokenTTL)); err != nil {
		return err
	}

	link := BuildResetLink(s.cfg.BaseURL, token, user.Email)
	if err := s.emails.SendPasswordResetEmail(user.Email, link, int(s.cfg.TokenTTL/time.Minute)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.audit.Activity(ctx, &user.ID, "Password reset requested")
	s.audit.Security(ctx, audit.EventPasswordResetRq, "Password reset link sent", map[string]any{"user_id": user.ID.String()})
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, email, token, newPassword, confirmPassword string) error {
	email = utils.NormalizeEmail(email)
	token = strings.TrimSpace(token)
	if email == "" || token == "" || newPassword == "" || confirmPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if !utils.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	userID, err := s.users.RedeemPasswordReset(ctx, email, utils.HashToken(token), hash)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.audit.Security(ctx, audit.EventResetFailed, "Invalid or expired token", map[string]any{"email": email})
			return ErrInvalidResetToken
		}
		return err
	}

	s.audit.Activity(ctx, &userID, "Password reset")
	s.audit.Security(ctx, audit.EventPasswordReset, "Password reset completed", map[string]any{"user_id": userID.String()})
	return nil
}
