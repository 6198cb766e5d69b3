// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"pointshop/config"
	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	hasher        service.PasswordHasher
	adminPassword string
	minPassword   int
	maxPassword   int
	logger        *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		hasher:        params.Hasher,
		adminPassword: params.Config.Admin.Password,
		minPassword:   params.Config.Auth.MinPasswordLength,
		maxPassword:   params.Config.Auth.MaxPasswordLength,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*entity.User, error) {
	handle, ok := entity.NormalizeHandle(input.Handle)
	if !ok {
		return nil, domainerrors.ErrInvalidHandle
	}

	password := strings.TrimSpace(input.Password)
	if err := srv.validatePassword(password); err != nil {
		return nil, err
	}
	if password != strings.TrimSpace(input.PasswordConfirm) {
		return nil, domainerrors.ErrPasswordMismatch
	}

	hash, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	var registered *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		existing, err := userRepo.FindByHandle(ctx, handle)
		if errors.Is(err, repository.ErrUserNotFound) {
			user := &entity.User{Handle: handle, PasswordHash: &hash}
			if err := userRepo.Create(ctx, user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return domainerrors.ErrUserAlreadyExists
				}

				return errors.Wrap(err, "failed to create user")
			}
			registered = user

			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		if existing.HasPassword() {
			return domainerrors.ErrUserAlreadyExists
		}

		// The admin granted points before the user ever signed up.
		if err := userRepo.SetPasswordHash(ctx, existing.ID, hash); err != nil {
			return errors.Wrap(err, "failed to attach password")
		}
		existing.PasswordHash = &hash
		registered = existing

		return nil
	})
	if err != nil {
		if !errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Error("Failed to execute registration transaction", slog.String("handle", handle), slog.Any("error", err))
		}

		return nil, err
	}

	srv.log(ctx).Info("User registered", slog.String("handle", handle), slog.Int64("userID", registered.ID))

	return registered, nil
}

func (srv *authService) validatePassword(password string) error {
	if n := len([]rune(password)); n < srv.minPassword || n > srv.maxPassword {
		return domainerrors.ErrPasswordStrength
	}

	return nil
}

func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*entity.User, error) {
	handle, ok := entity.NormalizeHandle(input.Handle)
	if !ok {
		return nil, domainerrors.ErrInvalidCredentials
	}

	user, err := srv.userRepo.FindByHandle(ctx, handle)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	if !user.HasPassword() || !srv.hasher.Check(strings.TrimSpace(input.Password), *user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("handle", handle))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return user, nil
}

func (srv *authService) AdminLogin(ctx context.Context, password string) error {
	if srv.adminPassword == "" {
		srv.log(ctx).Warn("Admin login attempted but admin.password is not configured")

		return domainerrors.ErrInvalidAdminPassword
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(srv.adminPassword)) != 1 {
		srv.log(ctx).Warn("Admin login failed")

		return domainerrors.ErrInvalidAdminPassword
	}

	return nil
}

func (srv *authService) CurrentUser(ctx context.Context, identity entity.Identity) (*entity.User, error) {
	if !identity.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := srv.userRepo.FindByHandle(ctx, identity.Handle)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}
