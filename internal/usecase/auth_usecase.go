// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"pointshop/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register or claim an account.
type RegisterInput struct {
	Handle          string
	Password        string
	PasswordConfirm string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Handle   string
	Password string
}

// AuthUsecase covers the user and admin sign-in flows. Session state itself
// is owned by the delivery layer.
type AuthUsecase interface {
	// Register creates a user, or attaches a password to a user that an admin
	// created by granting points.
	Register(ctx context.Context, input RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input LoginInput) (*entity.User, error)
	// AdminLogin checks the shared back office password.
	AdminLogin(ctx context.Context, password string) error
	// CurrentUser loads the user behind identity. A handle without a user row
	// is treated as logged out.
	CurrentUser(ctx context.Context, identity entity.Identity) (*entity.User, error)
}
