package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // не отдаём наружу
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar"`

	// MFA: в БД только bcrypt-хэш OTP
	OTPHash       *string    `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	IsOTPVerified bool       `json:"-"`
	OTPAttempts   int        `json:"-"`
	OTPResends    int        `json:"-"`

	// сброс пароля: sha256 от токена
	ResetTokenHash    *string    `json:"-"`
	ResetExpiresAt    *time.Time `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLiveOTP: есть неистёкший вызов OTP.
func (u *User) HasLiveOTP(now time.Time) bool {
	return u.OTPHash != nil && *u.OTPHash != "" && u.OTPExpiresAt != nil && now.Before(*u.OTPExpiresAt)
}

type SignupRequest struct {
	Email           string `json:"email" binding:"required,email,max=254,safestring"`
	Password        string `json:"password" binding:"required,min=6,max=72,bcryptlen,safestring"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=6,max=72,bcryptlen,safestring"`
}

type LoginRequest struct {
	Email        string `json:"email" binding:"required,email,max=254,safestring"`
	Password     string `json:"password" binding:"required,min=6,max=72,bcryptlen,safestring"`
	CaptchaValue string `json:"captchaValue" binding:"omitempty,max=4096"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
	OTP   string `json:"otp" binding:"required,len=6,safestring"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	Token           string `json:"token" binding:"required,hexadecimal,max=128"`
	NewPassword     string `json:"new_password" binding:"required,max=72,bcryptlen,safestring"`
	ConfirmPassword string `json:"confirm_password" binding:"required,max=72,bcryptlen,safestring"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72,bcryptlen,safestring"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=6,max=72,bcryptlen,safestring"`
}

type UpdateDetailsRequest struct {
	Name string `json:"name" binding:"max=100"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}
