package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"skinmuse/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context, viewerID uuid.UUID, skinType string) ([]models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, upd models.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// сохранённые посты
	Save(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Unsave(ctx context.Context, userID, postID uuid.UUID) error
	SavedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
}

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{DB: db}
}

const postColumns = `p.id, p.user_id, p.title, p.description, p.image, p.skin_type, p.created_at, p.updated_at`

func scanPost(row interface{ Scan(...any) error }, extra ...any) (*models.Post, error) {
	p := &models.Post{}
	dest := append([]any{&p.ID, &p.UserID, &p.Title, &p.Description, &p.Image, &p.SkinType, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	const q = `
		INSERT INTO posts (user_id, title, description, image, skin_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		post.UserID, post.Title, post.Description, post.Image, post.SkinType,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("post create: %w", err)
	}
	return nil
}

// List фильтрует по вхождению skin_type без учёта регистра и помечает сохранённые viewer'ом.
func (r *postRepository) List(ctx context.Context, viewerID uuid.UUID, skinType string) ([]models.Post, error) {
	q := `
		SELECT ` + postColumns + `,
			EXISTS (SELECT 1 FROM saved_posts s WHERE s.post_id = p.id AND s.user_id = $1)
		FROM posts p
		WHERE ($2 = '' OR p.skin_type ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY p.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, q, viewerID, escapeLike(skinType))
	if err != nil {
		return nil, fmt.Errorf("post list: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var saved bool
		p, err := scanPost(rows, &saved)
		if err != nil {
			return nil, fmt.Errorf("post list scan: %w", err)
		}
		p.IsSaved = saved
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	p, err := scanPost(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("post get: %w", err)
	}
	return p, nil
}

// Update меняет только переданные поля; чужой или несуществующий пост: ErrNotFound.
func (r *postRepository) Update(ctx context.Context, id, ownerID uuid.UUID, upd models.UpdatePostRequest) (*models.Post, error) {
	q := `
		UPDATE posts p
		SET title = COALESCE($3, p.title),
			description = COALESCE($4, p.description),
			image = COALESCE($5, p.image),
			skin_type = COALESCE($6, p.skin_type),
			updated_at = NOW()
		WHERE p.id = $1 AND p.user_id = $2
		RETURNING ` + postColumns
	p, err := scanPost(r.DB.QueryRowContext(ctx, q, id, ownerID,
		nullString(upd.Title), nullString(upd.Description), nullString(upd.Image), nullString(upd.SkinType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("post update: %w", err)
	}
	return p, nil
}

func (r *postRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return execOne(ctx, r.DB, "post delete", `DELETE FROM posts WHERE id = $1 AND user_id = $2`, id, ownerID)
}

// Save возвращает false, если пост уже был сохранён.
func (r *postRepository) Save(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	const q = `
		INSERT INTO saved_posts (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, q, userID, postID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("post save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("post save: %w", err)
	}
	return n == 1, nil
}

func (r *postRepository) Unsave(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM saved_posts WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("post unsave: %w", err)
	}
	return nil
}

func (r *postRepository) SavedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT post_id FROM saved_posts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("post saved ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("post saved ids scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postRepository) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	q := `
		SELECT ` + postColumns + `
		FROM saved_posts s
		JOIN posts p ON p.id = s.post_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("post list saved: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("post list saved scan: %w", err)
		}
		p.IsSaved = true
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
