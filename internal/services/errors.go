package services

import "errors"

// Ошибки валидации (400)
var (
	ErrMissingFields     = errors.New("all fields are required")
	ErrPasswordMismatch  = errors.New("passwords don't match")
	ErrWeakPassword      = errors.New("weak password")
	ErrPasswordTooLong   = errors.New("password exceeds 72 bytes")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidRating     = errors.New("invalid rating")
	ErrAlreadySaved      = errors.New("post already saved")
	ErrEmptyContent      = errors.New("content is required")
	ErrUnsupportedUpload = errors.New("unsupported file type")
	ErrUploadTooLarge    = errors.New("file too large")
)

// Ошибки аутентификации
var (
	ErrEmailTaken         = errors.New("email is taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCaptchaRequired    = errors.New("captcha is required")
	ErrCaptchaFailed      = errors.New("captcha validation failed")
	ErrNoActiveChallenge  = errors.New("otp verification failed")
	ErrOTPExpired         = errors.New("otp expired")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionInvalidated = errors.New("session invalidated by password change")
)

// Отсутствует или не принадлежит пользователю (404)
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)
