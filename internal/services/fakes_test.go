package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
	"skinmuse/internal/utils"
)

// fakeUserRepo: in-memory UserRepository с теми же условиями, что и SQL.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) get(id uuid.UUID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.users[id]
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) update(id uuid.UUID, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	return r.update(id, func(u *models.User) { u.Name = name })
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatar string) error {
	return r.update(id, func(u *models.User) { u.Avatar = avatar })
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(u *models.User) {
		now := time.Now()
		u.PasswordHash = hash
		u.PasswordChangedAt = &now
	})
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SetOTP(_ context.Context, id uuid.UUID, hash string, exp time.Time, resend bool) error {
	return r.update(id, func(u *models.User) {
		u.OTPHash, u.OTPExpiresAt = &hash, &exp
		u.IsOTPVerified, u.OTPAttempts = false, 0
		if resend {
			u.OTPResends++
		} else {
			u.OTPResends = 0
		}
	})
}

func (r *fakeUserRepo) ConsumeOTP(_ context.Context, id uuid.UUID, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.OTPHash == nil || *u.OTPHash != hash {
		return false, nil
	}
	u.OTPHash, u.OTPExpiresAt = nil, nil
	u.OTPAttempts, u.OTPResends, u.IsOTPVerified = 0, 0, true
	return true, nil
}

func (r *fakeUserRepo) IncrementOTPAttempts(_ context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.update(id, func(u *models.User) {
		u.OTPAttempts++
		n = u.OTPAttempts
	})
	return n, err
}

func (r *fakeUserRepo) ClearOTP(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *models.User) {
		u.OTPHash, u.OTPExpiresAt = nil, nil
		u.OTPAttempts, u.OTPResends = 0, 0
	})
}

func (r *fakeUserRepo) SetPasswordReset(_ context.Context, id uuid.UUID, hash string, exp time.Time) error {
	return r.update(id, func(u *models.User) { u.ResetTokenHash, u.ResetExpiresAt = &hash, &exp })
}

func (r *fakeUserRepo) RedeemPasswordReset(_ context.Context, email, hash, pw string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != email || u.ResetTokenHash == nil || *u.ResetTokenHash != hash ||
			u.ResetExpiresAt == nil || !time.Now().Before(*u.ResetExpiresAt) {
			continue
		}
		now := time.Now()
		u.PasswordHash, u.PasswordChangedAt = pw, &now
		u.ResetTokenHash, u.ResetExpiresAt = nil, nil
		return u.ID, nil
	}
	return uuid.Nil, repositories.ErrNotFound
}

type sentMail struct {
	kind, to, payload string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeEmail) record(kind, to, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind, to, payload})
	return nil
}

func (f *fakeEmail) SendWelcomeEmail(email string) error { return f.record("welcome", email, "") }
func (f *fakeEmail) SendOTPEmail(email, code string, _ int) error {
	return f.record("otp", email, code)
}
func (f *fakeEmail) SendPasswordResetEmail(email, link string, _ int) error {
	return f.record("reset", email, link)
}

func (f *fakeEmail) last(kind string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == kind {
			return f.sent[i].payload
		}
	}
	return ""
}

type fakeCaptcha struct {
	result *utils.CaptchaResult
	err    error
	calls  int
}

func (f *fakeCaptcha) Verify(context.Context, string, string) (*utils.CaptchaResult, error) {
	f.calls++
	return f.result, f.err
}

type recordedEvent struct {
	Type, Message string
	Meta          map[string]any
}

type fakeRecorder struct {
	mu         sync.Mutex
	activities []string
	events     []recordedEvent
}

func (f *fakeRecorder) Activity(_ context.Context, _ *uuid.UUID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, action)
}

func (f *fakeRecorder) Security(_ context.Context, typ, msg string, meta map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{typ, msg, meta})
}

func (f *fakeRecorder) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeStorage struct {
	key, contentType string
	size             int64
	err              error
}

func (f *fakeStorage) PutObject(_ context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.key, f.size, f.contentType = key, size, contentType
	return "https://cdn.example.com/" + key, nil
}

var errBoom = errors.New("boom")
