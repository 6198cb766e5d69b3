package usecase

import (
	"context"

	"pointshop/internal/domain/entity"
)

type UsersPage struct {
	Users      []*entity.User
	Page       int
	TotalPages int
	Total      int64
}

// AdminUsecase covers allow-lists, balances and shop schedules.
type AdminUsecase interface {
	ListAllowlist(ctx context.Context) ([]*entity.AllowlistEntry, error)
	// AddToAllowlist is a no-op returning the existing entry when the pair is present.
	AddToAllowlist(ctx context.Context, handle, shop string) (*entity.AllowlistEntry, error)
	RemoveFromAllowlist(ctx context.Context, entryID int64) error
	// AllowAllUsers grants shop to every user lacking an entry and returns how many were added.
	AllowAllUsers(ctx context.Context, shop string) (int, error)
	RevokeShop(ctx context.Context, shop string) (int64, error)

	// SetPoints overwrites a balance, creating the user when missing.
	SetPoints(ctx context.Context, handle string, points int) (*entity.User, error)
	ListUsers(ctx context.Context, page int) (*UsersPage, error)

	ListShopSettings(ctx context.Context) ([]*entity.ShopSettings, error)
	// SetShopSchedule parses local ISO-8601 datetimes. Blank clears a bound.
	SetShopSchedule(ctx context.Context, shop, opensAt, closesAt string) (*entity.ShopSettings, error)
}
