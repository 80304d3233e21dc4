package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/authz"
	"skinmuse/internal/logger"
	"skinmuse/internal/metrics"
	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

type SessionConfig struct {
	OTPTTL         time.Duration
	OTPMaxAttempts int
	OTPMaxResends  int
	DefaultAvatar  string
}

type SessionResult struct {
	User   *models.User
	Tokens TokenPair
}

// LoginOutcome: что произошло на шаге логина (OTP отправлен впервые или повторно).
type LoginOutcome struct {
	Resent bool
}

// SessionService: регистрация, вход с OTP, обновление access-токена, выход.
type SessionService interface {
	Signup(ctx context.Context, email, password, confirmPassword string) (*SessionResult, error)
	Login(ctx context.Context, email, password, captchaValue string) (*LoginOutcome, error)
	VerifyOTP(ctx context.Context, email, otp string) (*SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, uuid.UUID, error)
	Logout(ctx context.Context, userID uuid.UUID)
}

type sessionService struct {
	users   repositories.UserRepository
	auth    AuthService
	tokens  TokenService
	emails  EmailService
	captcha utils.CaptchaVerifier // nil: CAPTCHA выключена
	audit   audit.Recorder
	cfg     SessionConfig
	now     func() time.Time
}

func NewSessionService(
	users repositories.UserRepository,
	auth AuthService,
	tokens TokenService,
	emails EmailService,
	captcha utils.CaptchaVerifier,
	rec audit.Recorder,
	cfg SessionConfig,
) SessionService {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.OTPMaxAttempts <= 0 {
		cfg.OTPMaxAttempts = 5
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &sessionService{
		users:   users,
		auth:    auth,
		tokens:  tokens,
		emails:  emails,
		captcha: captcha,
		audit:   rec,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *sessionService) Signup(ctx context.Context, email, password, confirmPassword string) (*SessionResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" || confirmPassword == "" {
		return nil, ErrMissingFields
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !utils.IsStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         authz.RoleUser,
		Avatar:       s.cfg.DefaultAvatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			s.audit.Security(ctx, audit.EventSignupFailed, "Email already registered", map[string]any{"email": email})
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email); err != nil {
			log.Warn().Err(err).Str("email", logger.MaskEmail(user.Email)).Msg("[auth][signup] welcome email failed")
		}
	}

	s.audit.Activity(ctx, &user.ID, "Signup success")
	s.audit.Security(ctx, audit.EventSignupSuccess, "User registered", map[string]any{"user_id": user.ID.String()})
	return &SessionResult{User: user, Tokens: tokens}, nil
}

// Login проверяет пароль и выдаёт OTP. Свежий вход (нет живого OTP) требует CAPTCHA;
// повторная отправка при живом OTP её не требует, но не больше OTPMaxResends раз.
func (s *sessionService) Login(ctx context.Context, email, password, captchaValue string) (*LoginOutcome, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		s.audit.Security(ctx, audit.EventLoginFailed, "Missing fields", nil)
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.LoginOutcome("invalid_credentials")
			s.audit.Security(ctx, audit.EventLoginFailed, "Invalid email", map[string]any{"email": email})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		metrics.LoginOutcome("invalid_credentials")
		s.audit.Security(ctx, audit.EventLoginFailed, "Incorrect password", map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	resend := user.HasLiveOTP(now) && user.OTPResends < s.cfg.OTPMaxResends

	if !resend && s.captcha != nil {
		if strings.TrimSpace(captchaValue) == "" {
			metrics.LoginOutcome("captcha_missing")
			s.audit.Security(ctx, audit.EventLoginFailed, "Captcha missing", map[string]any{"email": email})
			return nil, ErrCaptchaRequired
		}
		res, err := s.captcha.Verify(ctx, captchaValue, audit.ClientIP(ctx))
		if err != nil || res == nil || !res.Success {
			meta := map[string]any{"email": email}
			if res != nil && len(res.ErrorCodes) > 0 {
				meta["error-codes"] = res.ErrorCodes
			}
			if err != nil {
				log.Warn().Err(err).Msg("[auth][login] captcha verify failed")
			}
			metrics.LoginOutcome("captcha_failed")
			s.audit.Security(ctx, audit.EventLoginFailed, "Captcha validation failed", meta)
			return nil, ErrCaptchaFailed
		}
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}
	otpHash, err := s.auth.HashPassword(code)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}
	if err := s.users.SetOTP(ctx, user.ID, otpHash, now.Add(s.cfg.OTPTTL), resend); err != nil {
		return nil, err
	}
	if err := s.emails.SendOTPEmail(user.Email, code, int(s.cfg.OTPTTL/time.Minute)); err != nil {
		return nil, fmt.Errorf("send otp: %w", err)
	}

	if resend {
		metrics.LoginOutcome("otp_resent")
		s.audit.Activity(ctx, &user.ID, "OTP resent for login")
		s.audit.Security(ctx, audit.EventOTPResent, "OTP resent", map[string]any{"user_id": user.ID.String()})
	} else {
		metrics.LoginOutcome("otp_sent")
		s.audit.Activity(ctx, &user.ID, "OTP sent for login")
		s.audit.Security(ctx, audit.EventOTPSent, "OTP sent", map[string]any{"user_id": user.ID.String()})
	}
	return &LoginOutcome{Resent: resend}, nil
}

func (s *sessionService) VerifyOTP(ctx context.Context, email, otp string) (*SessionResult, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.otpFailed(ctx, "no_challenge", "Unknown email", email)
			return nil, ErrNoActiveChallenge
		}
		return nil, err
	}
	if user.OTPHash == nil || *user.OTPHash == "" {
		s.otpFailed(ctx, "no_challenge", "No active OTP", email)
		return nil, ErrNoActiveChallenge
	}
	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		s.otpFailed(ctx, "expired", "OTP expired", email)
		return nil, ErrOTPExpired
	}

	otpHash := *user.OTPHash
	if !s.auth.CheckPassword(otpHash, otp) {
		attempts, err := s.users.IncrementOTPAttempts(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if attempts >= s.cfg.OTPMaxAttempts {
			if err := s.users.ClearOTP(ctx, user.ID); err != nil {
				return nil, err
			}
			s.otpFailed(ctx, "locked", "Too many invalid OTP attempts, challenge cleared", email)
			return nil, ErrInvalidOTP
		}
		s.otpFailed(ctx, "invalid", "Invalid OTP", email)
		return nil, ErrInvalidOTP
	}

	// условный UPDATE по хэшу: параллельная проверка того же кода проиграет
	ok, err := s.users.ConsumeOTP(ctx, user.ID, otpHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.otpFailed(ctx, "no_challenge", "OTP already used", email)
		return nil, ErrNoActiveChallenge
	}
	user.OTPHash, user.OTPExpiresAt, user.IsOTPVerified = nil, nil, true

	tokens, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	metrics.OTPOutcome("verified")
	s.audit.Activity(ctx, &user.ID, "OTP verified, login completed")
	s.audit.Security(ctx, audit.EventLoginSuccess, "Login successful", map[string]any{"user_id": user.ID.String()})
	return &SessionResult{User: user, Tokens: tokens}, nil
}

// Refresh выдаёт новый access по refresh-токену. Токены, выпущенные до
// последней смены пароля или в ту же секунду (iat с точностью до секунды), отклоняются.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (string, uuid.UUID, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", uuid.Nil, err
	}
	user, err := s.users.GetByID(ctx, claims.ID())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", uuid.Nil, ErrTokenInvalid
		}
		return "", uuid.Nil, err
	}
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		!claims.IssuedAt.Time.After(user.PasswordChangedAt.Truncate(time.Second)) {
		return "", uuid.Nil, ErrSessionInvalidated
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("issue access token: %w", err)
	}
	s.audit.Security(ctx, audit.EventTokenRefreshed, "Access token refreshed", map[string]any{"user_id": user.ID.String()})
	return access, user.ID, nil
}

func (s *sessionService) Logout(ctx context.Context, userID uuid.UUID) {
	s.audit.Activity(ctx, &userID, "Logout")
	s.audit.Security(ctx, audit.EventLogout, "User logged out", map[string]any{"user_id": userID.String()})
}

func (s *sessionService) otpFailed(ctx context.Context, outcome, msg, email string) {
	metrics.OTPOutcome(outcome)
	s.audit.Security(ctx, audit.EventOTPFailed, msg, map[string]any{"email": email})
}
