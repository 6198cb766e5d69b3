// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"pointshop/internal/domain/entity"
)

var ErrUserNotFound = errors.New("user not found")

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	FindByHandle(ctx context.Context, handle string) (*entity.User, error)

	// Create inserts user and sets its ID. Returns ErrDuplicate when the handle exists.
	Create(ctx context.Context, user *entity.User) error

	SetPasswordHash(ctx context.Context, userID int64, hash string) error

	// SetPoints overwrites the balance of handle, creating the user when missing.
	SetPoints(ctx context.Context, handle string, points int) (*entity.User, error)

	// DebitPoints subtracts amount only when the balance covers it, in one
	// conditional update. ok is false when no row qualified.
	DebitPoints(ctx context.Context, userID int64, amount int) (ok bool, err error)

	// ListByPoints returns users ordered by balance, highest first.
	ListByPoints(ctx context.Context, offset, limit int) ([]*entity.User, error)

	Count(ctx context.Context) (int64, error)

	ListHandles(ctx context.Context) ([]string, error)
}
