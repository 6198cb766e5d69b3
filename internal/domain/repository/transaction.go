package repository

import "context"

// TransactionManager runs a unit of work atomically. If fn returns an error
// every write made through the factory is rolled back.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to one transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	CatalogRepo() CatalogRepository
	OrderRepo() OrderRepository
	ShopSettingsRepo() ShopSettingsRepository
	AllowlistRepo() AllowlistRepository
}
