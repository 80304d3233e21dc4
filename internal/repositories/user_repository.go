package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skinmuse/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// OTP
	SetOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time, resend bool) error
	ConsumeOTP(ctx context.Context, id uuid.UUID, otpHash string) (bool, error)
	IncrementOTPAttempts(ctx context.Context, id uuid.UUID) (int, error)
	ClearOTP(ctx context.Context, id uuid.UUID) error

	// сброс пароля
	SetPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	RedeemPasswordReset(ctx context.Context, email, tokenHash, passwordHash string) (uuid.UUID, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, role, avatar,
	otp_hash, otp_expires_at, is_otp_verified, otp_attempts, otp_resends,
	password_reset_token_hash, password_reset_expires, password_changed_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		otpHash    sql.NullString
		otpExp     sql.NullTime
		resetHash  sql.NullString
		resetExp   sql.NullTime
		pwdChanged sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
		&otpHash, &otpExp, &u.IsOTPVerified, &u.OTPAttempts, &u.OTPResends,
		&resetHash, &resetExp, &pwdChanged,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if otpHash.Valid {
		s := otpHash.String
		u.OTPHash = &s
	}
	if otpExp.Valid {
		t := otpExp.Time
		u.OTPExpiresAt = &t
	}
	if resetHash.Valid {
		s := resetHash.String
		u.ResetTokenHash = &s
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetExpiresAt = &t
	}
	if pwdChanged.Valid {
		t := pwdChanged.Time
		u.PasswordChangedAt = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash, role, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Avatar,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user get by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return execOne(ctx, r.DB, "user update name",
		`UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	return execOne(ctx, r.DB, "user update avatar",
		`UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1`, id, avatar)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return execOne(ctx, r.DB, "user update password", `
		UPDATE users
		SET password_hash = $2, password_changed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.DB, "user delete", `DELETE FROM users WHERE id = $1`, id)
}

// SetOTP перезаписывает текущий OTP (старый перестаёт действовать).
// resend=true увеличивает otp_resends, иначе счётчик сбрасывается.
func (r *userRepository) SetOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time, resend bool) error {
	return execOne(ctx, r.DB, "user set otp", `
		UPDATE users
		SET otp_hash = $2,
			otp_expires_at = $3,
			is_otp_verified = FALSE,
			otp_attempts = 0,
			otp_resends = CASE WHEN $4 THEN otp_resends + 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1
	`, id, otpHash, expiresAt, resend)
}

// ConsumeOTP: условный UPDATE по текущему хэшу: из двух параллельных
// проверок одного кода проходит только одна.
func (r *userRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, otpHash string) (bool, error) {
	const q = `
		UPDATE users
		SET otp_hash = NULL,
			otp_expires_at = NULL,
			otp_attempts = 0,
			otp_resends = 0,
			is_otp_verified = TRUE,
			updated_at = NOW()
		WHERE id = $1 AND otp_hash = $2
	`
	res, err := r.DB.ExecContext(ctx, q, id, otpHash)
	if err != nil {
		return false, fmt.Errorf("user consume otp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("user consume otp: %w", err)
	}
	return n == 1, nil
}

func (r *userRepository) IncrementOTPAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	const q = `
		UPDATE users
		SET otp_attempts = otp_attempts + 1
		WHERE id = $1
		RETURNING otp_attempts
	`
	var attempts int
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("user increment otp attempts: %w", err)
	}
	return attempts, nil
}

func (r *userRepository) ClearOTP(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.DB, "user clear otp", `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL, otp_attempts = 0, otp_resends = 0, updated_at = NOW()
		WHERE id = $1
	`, id)
}

// SetPasswordReset заменяет любой предыдущий незавершённый сброс.
func (r *userRepository) SetPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return execOne(ctx, r.DB, "user set password reset", `
		UPDATE users
		SET password_reset_token_hash = $2, password_reset_expires = $3, updated_at = NOW()
		WHERE id = $1
	`, id, tokenHash, expiresAt)
}

// RedeemPasswordReset: один атомарный UPDATE: совпадение (email, хэш, срок)
// меняет пароль и гасит токен. Нет строки: ErrNotFound.
func (r *userRepository) RedeemPasswordReset(ctx context.Context, email, tokenHash, passwordHash string) (uuid.UUID, error) {
	const q = `
		UPDATE users
		SET password_hash = $3,
			password_changed_at = NOW(),
			password_reset_token_hash = NULL,
			password_reset_expires = NULL,
			updated_at = NOW()
		WHERE email = $1
			AND password_reset_token_hash = $2
			AND password_reset_expires > NOW()
		RETURNING id
	`
	var id uuid.UUID
	if err := r.DB.QueryRowContext(ctx, q, email, tokenHash, passwordHash).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("user redeem password reset: %w", err)
	}
	return id, nil
}
