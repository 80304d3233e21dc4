package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"skinmuse/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, id, userID uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{DB: db}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.comment, u.name, u.email, p.title, c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.user_id
	JOIN posts p ON p.id = c.post_id
`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &c.AuthorName, &c.AuthorMail, &c.PostTitle, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	const q = `
		INSERT INTO comments (post_id, user_id, comment)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q, c.PostID, c.UserID, c.Comment).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("comment create: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Comment, error) {
	return r.list(ctx, commentSelect+` WHERE c.user_id = $1 ORDER BY c.created_at DESC`, userID)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	return r.list(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at DESC`, postID)
}

func (r *commentRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(r.DB.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1 AND c.user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("comment get: %w", err)
	}
	return c, nil
}

func (r *commentRepository) Update(ctx context.Context, id, userID uuid.UUID, text string) (*models.Comment, error) {
	const q = `
		UPDATE comments
		SET comment = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, post_id, user_id, comment, created_at, updated_at
	`
	c := &models.Comment{}
	err := r.DB.QueryRowContext(ctx, q, id, userID, text).
		Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("comment update: %w", err)
	}
	return c, nil
}

func (r *commentRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return execOne(ctx, r.DB, "comment delete", `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *commentRepository) list(ctx context.Context, q string, arg any) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("comment list: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("comment list scan: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
