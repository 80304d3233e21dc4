// Package audit records user activity (database) and security events
// (JSON lines file, optional Telegram alert) without blocking requests.
package audit

import (
	"context"

	"github.com/google/uuid"
)

// Типы событий журнала безопасности.
const (
	EventSignupSuccess   = "SIGNUP_SUCCESS"
	EventSignupFailed    = "SIGNUP_FAILED"
	EventLoginFailed     = "LOGIN_FAILED"
	EventLoginSuccess    = "LOGIN_SUCCESS"
	EventOTPSent         = "OTP_SENT"
	EventOTPResent       = "OTP_RESENT"
	EventOTPFailed       = "OTP_FAILED"
	EventRateLimited     = "RATE_LIMITED"
	EventLogout          = "LOGOUT"
	EventPasswordChange  = "PASSWORD_CHANGE"
	EventPasswordResetRq = "PASSWORD_RESET_REQUEST"
	EventPasswordReset   = "PASSWORD_RESET"
	EventResetFailed     = "PASSWORD_RESET_FAILED"
	EventAccountDeleted  = "ACCOUNT_DELETED"
	EventAccessDenied    = "ACCESS_DENIED"
	EventTokenRefreshed  = "TOKEN_REFRESHED"
)

// Recorder: best-effort: ошибки никогда не возвращаются вызывающему.
type Recorder interface {
	Activity(ctx context.Context, userID *uuid.UUID, action string)
	Security(ctx context.Context, eventType, message string, meta map[string]any)
}

type Nop struct{}

func (Nop) Activity(context.Context, *uuid.UUID, string) {}
func (Nop) Security(context.Context, string, string, map[string]any) {}
