package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"skinmuse/internal/models"
)

type ActivityLogRepository interface {
	Insert(ctx context.Context, userID *uuid.UUID, action, ip string) error
	List(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	DB *sql.DB
}

func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{DB: db}
}

func (r *activityLogRepository) Insert(ctx context.Context, userID *uuid.UUID, action, ip string) error {
	const q = `INSERT INTO activity_logs (user_id, action, ip_address) VALUES ($1, $2, $3)`
	var uid uuid.NullUUID
	if userID != nil {
		uid = uuid.NullUUID{UUID: *userID, Valid: true}
	}
	if _, err := r.DB.ExecContext(ctx, q, uid, action, ip); err != nil {
		return fmt.Errorf("activity log insert: %w", err)
	}
	return nil
}

// List: новые сверху, с email/ролью автора (если пользователь ещё существует).
func (r *activityLogRepository) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 500
	}
	const q = `
		SELECT a.id, a.user_id, COALESCE(u.email, ''), COALESCE(u.role, ''), a.action, a.ip_address, a.created_at
		FROM activity_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("activity log list: %w", err)
	}
	defer rows.Close()

	out := make([]models.ActivityLog, 0)
	for rows.Next() {
		var (
			l   models.ActivityLog
			uid uuid.NullUUID
		)
		if err := rows.Scan(&l.ID, &uid, &l.UserEmail, &l.UserRole, &l.Action, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("activity log scan: %w", err)
		}
		if uid.Valid {
			id := uid.UUID
			l.UserID = &id
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
