package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinmuse/internal/models"
)

var postCols = []string{"id", "user_id", "title", "description", "image", "skin_type", "created_at", "updated_at"}

func TestPostRepository_List_FlagsSavedAndEscapesFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	viewer := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(append(postCols, "exists")).
		AddRow(uuid.NewString(), uuid.NewString(), "A", "a", "", "Oily", now, now, true).
		AddRow(uuid.NewString(), uuid.NewString(), "B", "b", "", "oily_combo", now, now, false)

	mock.ExpectQuery(`ILIKE`).
		WithArgs(viewer, `oily\_`).
		WillReturnRows(rows)

	posts, err := repo.List(context.Background(), viewer, "oily_")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[0].IsSaved)
	assert.False(t, posts[1].IsSaved)
}

func TestPostRepository_Update_NotOwned(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	id, owner := uuid.New(), uuid.New()
	title := "new"
	mock.ExpectQuery(`UPDATE posts p`).
		WithArgs(id, owner, sql.NullString{String: "new", Valid: true}, sql.NullString{}, sql.NullString{}, sql.NullString{}).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), id, owner, models.UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_Save_AlreadySaved(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	user, post := uuid.New(), uuid.New()
	mock.ExpectExec(`INSERT INTO saved_posts`).
		WithArgs(user, post).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Save(context.Background(), user, post)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestPostRepository_Save_MissingPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectExec(`INSERT INTO saved_posts`).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.Save(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_Delete_OwnerScoped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	id, owner := uuid.New(), uuid.New()
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id, owner))
}
