package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO auth_users (uid, email, password_hash, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		account.UID,
		normalizeEmail(account.Email),
		account.PasswordHash,
		account.EmailVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, uid string) (*entity.Account, error) {
	query := `
		SELECT uid, email, password_hash, email_verified, created_at, updated_at
		FROM auth_users
		WHERE uid = $1
	`
	return r.get(ctx, query, uid)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := `
		SELECT uid, email, password_hash, email_verified, created_at, updated_at
		FROM auth_users
		WHERE email = $1
	`
	return r.get(ctx, query, normalizeEmail(email))
}

func (r *accountRepository) get(ctx context.Context, query string, arg any) (*entity.Account, error) {
	var account entity.Account
	err := r.db.GetContext(ctx, &account, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	query := `UPDATE auth_users SET password_hash = $1, updated_at = NOW() WHERE uid = $2`
	return r.exec(ctx, query, passwordHash, uid)
}

func (r *accountRepository) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	query := `UPDATE auth_users SET email_verified = $1, updated_at = NOW() WHERE uid = $2`
	return r.exec(ctx, query, verified, uid)
}

func (r *accountRepository) DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM auth_users WHERE email_verified = FALSE AND created_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrDatabaseError, err)
	}
	return result.RowsAffected()
}

func (r *accountRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrDatabaseError, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrDatabaseError, err)
	}
	if rows == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
