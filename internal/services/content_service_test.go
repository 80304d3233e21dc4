package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinmuse/internal/models"
	"skinmuse/internal/repositories"
)

type fakePostRepo struct {
	created  *models.Post
	updated  *models.UpdatePostRequest
	saveErr  error
	added    bool
	savedIDs []uuid.UUID
	err      error
}

func (f *fakePostRepo) Create(_ context.Context, p *models.Post) error {
	p.ID = uuid.New()
	f.created = p
	return f.err
}
func (f *fakePostRepo) List(context.Context, uuid.UUID, string) ([]models.Post, error) {
	return nil, f.err
}
func (f *fakePostRepo) GetByID(context.Context, uuid.UUID) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{}, nil
}
func (f *fakePostRepo) Update(_ context.Context, _, _ uuid.UUID, upd models.UpdatePostRequest) (*models.Post, error) {
	f.updated = &upd
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{}, nil
}
func (f *fakePostRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return f.err }
func (f *fakePostRepo) Save(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.added, f.saveErr
}
func (f *fakePostRepo) Unsave(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakePostRepo) SavedIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.savedIDs, nil
}
func (f *fakePostRepo) ListSaved(context.Context, uuid.UUID) ([]models.Post, error) {
	return nil, nil
}

func TestPostService_CreateSanitizesAndValidates(t *testing.T) {
	repo := &fakePostRepo{}
	svc := NewPostService(repo)
	uid := uuid.New()

	_, err := svc.Create(context.Background(), uid, models.CreatePostRequest{Title: " ", Description: "d"})
	assert.ErrorIs(t, err, ErrEmptyContent)

	p, err := svc.Create(context.Background(), uid, models.CreatePostRequest{
		Title: "<script>x</script>", Description: "Dry skin", SkinType: "dry",
	})
	require.NoError(t, err)
	assert.Equal(t, uid, p.UserID)
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", repo.created.Title)
}

func TestPostService_UpdateRejectsBlankingTitle(t *testing.T) {
	repo := &fakePostRepo{}
	svc := NewPostService(repo)
	blank := "  "

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), models.UpdatePostRequest{Title: &blank})
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Nil(t, repo.updated)
}

func TestPostService_NotFoundMapping(t *testing.T) {
	repo := &fakePostRepo{err: repositories.ErrNotFound}
	svc := NewPostService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), uuid.New()), ErrPostNotFound)

	title := "t"
	_, err = svc.Update(ctx, uuid.New(), uuid.New(), models.UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_Save(t *testing.T) {
	ctx := context.Background()
	pid := uuid.New()

	repo := &fakePostRepo{added: true, savedIDs: []uuid.UUID{pid}}
	ids, err := NewPostService(repo).Save(ctx, uuid.New(), pid)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pid}, ids)

	_, err = NewPostService(&fakePostRepo{added: false}).Save(ctx, uuid.New(), pid)
	assert.ErrorIs(t, err, ErrAlreadySaved)

	_, err = NewPostService(&fakePostRepo{saveErr: repositories.ErrNotFound}).Save(ctx, uuid.New(), pid)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

type fakeCommentRepo struct {
	err  error
	text string
}

func (f *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	f.text = c.Comment
	return f.err
}
func (f *fakeCommentRepo) ListByUser(context.Context, uuid.UUID) ([]models.Comment, error) {
	return nil, f.err
}
func (f *fakeCommentRepo) ListByPost(context.Context, uuid.UUID) ([]models.Comment, error) {
	return nil, f.err
}
func (f *fakeCommentRepo) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Comment, error) {
	return nil, f.err
}
func (f *fakeCommentRepo) Update(_ context.Context, _, _ uuid.UUID, text string) (*models.Comment, error) {
	f.text = text
	return &models.Comment{Comment: text}, f.err
}
func (f *fakeCommentRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return f.err }

func TestCommentService_Create(t *testing.T) {
	ctx := context.Background()

	_, err := NewCommentService(&fakeCommentRepo{}).Create(ctx, uuid.New(), uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	repo := &fakeCommentRepo{}
	_, err = NewCommentService(repo).Create(ctx, uuid.New(), uuid.New(), "a & b")
	require.NoError(t, err)
	assert.Equal(t, "a &amp; b", repo.text)

	_, err = NewCommentService(&fakeCommentRepo{err: repositories.ErrNotFound}).Create(ctx, uuid.New(), uuid.New(), "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCommentService_NotOwned(t *testing.T) {
	svc := NewCommentService(&fakeCommentRepo{err: repositories.ErrNotFound})
	ctx := context.Background()

	_, err := svc.GetMine(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = svc.Update(ctx, uuid.New(), uuid.New(), "x")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), uuid.New()), ErrCommentNotFound)
}

type fakeRatingRepo struct{ saved *int }

func (f *fakeRatingRepo) Upsert(_ context.Context, _ uuid.UUID, r int) error {
	f.saved = &r
	return nil
}
func (f *fakeRatingRepo) Get(context.Context, uuid.UUID) (*int, error) { return f.saved, nil }

func TestRatingService_Bounds(t *testing.T) {
	repo := &fakeRatingRepo{}
	svc := NewRatingService(repo)
	ctx := context.Background()

	for _, bad := range []int{0, 6, -1} {
		assert.ErrorIs(t, svc.Rate(ctx, uuid.New(), bad), ErrInvalidRating)
	}
	got, err := svc.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, svc.Rate(ctx, uuid.New(), 5))
	got, _ = svc.Get(ctx, uuid.New())
	require.NotNil(t, got)
	assert.Equal(t, 5, *got)
}

type fakeActivityRepo struct {
	logs  []models.ActivityLog
	limit int
}

func (f *fakeActivityRepo) Insert(context.Context, *uuid.UUID, string, string) error { return nil }
func (f *fakeActivityRepo) List(_ context.Context, limit int) ([]models.ActivityLog, error) {
	f.limit = limit
	return f.logs, nil
}

type fakeReport struct{ rows int }

func (f *fakeReport) ActivityReport(w io.Writer, logs []models.ActivityLog, _ time.Time) error {
	f.rows = len(logs)
	_, err := w.Write([]byte("%PDF-1.3"))
	return err
}

func TestAdminService_ActivityReport(t *testing.T) {
	repo := &fakeActivityRepo{logs: []models.ActivityLog{{Action: "Logout"}, {Action: "Signup success"}}}
	report := &fakeReport{}
	svc := NewAdminService(repo, report)

	var buf bytes.Buffer
	require.NoError(t, svc.ActivityReport(context.Background(), &buf, 100))
	assert.Equal(t, 100, repo.limit)
	assert.Equal(t, 2, report.rows)
	assert.Equal(t, "%PDF-1.3", buf.String())
}
