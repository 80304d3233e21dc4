package services

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"skinmuse/internal/audit"
	"skinmuse/internal/models"
	"skinmuse/internal/utils"
)

func newResetFixture(t *testing.T, hide bool) (*passwordResetService, *fakeUserRepo, *fakeEmail, *fakeRecorder) {
	t.Helper()
	repo, mail, rec := newFakeUserRepo(), &fakeEmail{}, &fakeRecorder{}
	svc := NewPasswordResetService(repo, mail, NewAuthService(bcrypt.MinCost), rec, PasswordResetConfig{
		TokenTTL:        30 * time.Minute,
		BaseURL:         "https://app.example.com/reset-password",
		HideEnumeration: hide,
	}).(*passwordResetService)
	return svc, repo, mail, rec
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	svc, _, mail, _ := newResetFixture(t, false)
	err := svc.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, mail.sent)
}

func TestRequestReset_UnknownEmailHidden(t *testing.T) {
	svc, _, mail, _ := newResetFixture(t, true)
	assert.NoError(t, svc.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mail.sent)
}

func TestRequestReset_StoresHashAndSendsLink(t *testing.T) {
	svc, repo, mail, rec := newResetFixture(t, false)
	u := repo.add(&models.User{Email: "amy@example.com"})

	require.NoError(t, svc.RequestReset(context.Background(), "AMY@example.com"))

	link := mail.last("reset")
	require.NotEmpty(t, link)
	token := tokenFromLink(t, link)
	assert.Len(t, token, 64)
	assert.Contains(t, link, "email=amy%40example.com")

	stored := repo.get(u.ID)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, utils.HashToken(token), *stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *stored.ResetExpiresAt, 5*time.Second)
	assert.Contains(t, rec.types(), audit.EventPasswordResetRq)
}

func TestResetPassword_Success(t *testing.T) {
	svc, repo, mail, _ := newResetFixture(t, false)
	u := repo.add(&models.User{Email: "bea@example.com", PasswordHash: "old"})
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, "bea@example.com"))
	token := tokenFromLink(t, mail.last("reset"))

	require.NoError(t, svc.ResetPassword(ctx, "bea@example.com", token, "NewPass123", "NewPass123"))

	stored := repo.get(u.ID)
	assert.True(t, svc.auth.CheckPassword(stored.PasswordHash, "NewPass123"))
	assert.Nil(t, stored.ResetTokenHash)
	assert.NotNil(t, stored.PasswordChangedAt)

	// повторное использование
	err := svc.ResetPassword(ctx, "bea@example.com", token, "Other1234", "Other1234")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_Validation(t *testing.T) {
	svc, _, _, _ := newResetFixture(t, false)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@example.com", "", "NewPass123", "NewPass123"), ErrMissingFields)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@example.com", "ab", "NewPass123", "NewPass124"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@example.com", "ab", "weakpass", "weakpass"), ErrWeakPassword)
}

func TestResetPassword_WrongEmailOrExpired(t *testing.T) {
	svc, repo, mail, rec := newResetFixture(t, false)
	u := repo.add(&models.User{Email: "cat@example.com"})
	repo.add(&models.User{Email: "dog@example.com"})
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, "cat@example.com"))
	token := tokenFromLink(t, mail.last("reset"))

	err := svc.ResetPassword(ctx, "dog@example.com", token, "NewPass123", "NewPass123")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.Contains(t, rec.types(), audit.EventResetFailed)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, repo.update(u.ID, func(u *models.User) { u.ResetExpiresAt = &past }))
	err = svc.ResetPassword(ctx, "cat@example.com", token, "NewPass123", "NewPass123")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_ConcurrentRedeemOneWinner(t *testing.T) {
	svc, repo, mail, _ := newResetFixture(t, false)
	repo.add(&models.User{Email: "eli@example.com"})
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, "eli@example.com"))
	token := tokenFromLink(t, mail.last("reset"))

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.ResetPassword(ctx, "eli@example.com", token, "NewPass123", "NewPass123") == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok)
}
