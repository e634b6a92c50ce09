package repository

import (
	"context"
	"time"

	"github.com/ds124wfegd/trainhub/internal/entity"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, uid string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)

	// CRUD операции
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	SetEmailVerified(ctx context.Context, uid string, verified bool) error

	// DeleteUnverifiedBefore удаляет неподтверждённые аккаунты, созданные до before
	DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error)
}
