package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"skinmuse/internal/audit"
	"skinmuse/internal/models"
)

// минимальный PNG: сигнатура + IHDR
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newUserFixture(t *testing.T) (*userService, *fakeUserRepo, *fakeStorage, *fakeRecorder) {
	t.Helper()
	repo, store, rec := newFakeUserRepo(), &fakeStorage{}, &fakeRecorder{}
	svc := NewUserService(repo, NewAuthService(bcrypt.MinCost), store, rec, 1024).(*userService)
	return svc, repo, store, rec
}

func TestChangePassword_Success(t *testing.T) {
	svc, repo, _, rec := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com", PasswordHash: "old"})

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "ann@example.com", "Brand1234", "Brand1234"))

	stored := repo.get(u.ID)
	assert.True(t, svc.auth.CheckPassword(stored.PasswordHash, "Brand1234"))
	assert.NotNil(t, stored.PasswordChangedAt)
	assert.Contains(t, rec.types(), audit.EventPasswordChange)
}

func TestChangePassword_ForeignEmail(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com", PasswordHash: "old"})
	repo.add(&models.User{Email: "bob@example.com"})

	err := svc.ChangePassword(context.Background(), u.ID, "bob@example.com", "Brand1234", "Brand1234")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, "old", repo.get(u.ID).PasswordHash)
}

func TestChangePassword_Validation(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com"})
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "ann@example.com", "Brand1234", "Brand12345"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "ann@example.com", "short", "short"), ErrWeakPassword)
}

func TestUpdateName(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com"})
	ctx := context.Background()

	_, err := svc.UpdateName(ctx, u.ID, "   ")
	assert.ErrorIs(t, err, ErrNameRequired)

	got, err := svc.UpdateName(ctx, u.ID, " <b>Ann</b> ")
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Ann&lt;/b&gt;", got.Name)
}

func TestUpdateAvatar_UploadsImage(t *testing.T) {
	svc, repo, store, _ := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com"})

	got, err := svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", store.contentType)
	assert.True(t, strings.HasPrefix(store.key, "avatars/"+u.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(store.key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+store.key, got.Avatar)
}

func TestUpdateAvatar_Rejects(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com"})
	ctx := context.Background()

	_, err := svc.UpdateAvatar(ctx, u.ID, strings.NewReader("just some text"), 14)
	assert.ErrorIs(t, err, ErrUnsupportedUpload)

	big := bytes.Repeat([]byte{0}, 2048)
	_, err = svc.UpdateAvatar(ctx, u.ID, bytes.NewReader(big), -1)
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestDeleteUser(t *testing.T) {
	svc, repo, _, rec := newUserFixture(t)
	u := repo.add(&models.User{Email: "ann@example.com"})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.Contains(t, rec.types(), audit.EventAccountDeleted)

	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrUserNotFound)
	_, err := svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
