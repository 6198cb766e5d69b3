// Package memory is an in-process storage driver. A transaction holds the
// store's write lock and works on a private copy of the dataset that replaces
// the live one only on commit, so conditional updates and rollbacks behave as
// they do on Postgres.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
)

type Store struct {
	mu   sync.RWMutex
	data *dataset
	now  func() time.Time
}

type sequences struct {
	user, settings, allowlist, product, variant, order int64
}

type dataset struct {
	users     map[int64]entity.User
	settings  map[string]entity.ShopSettings
	allowlist map[int64]entity.AllowlistEntry
	products  map[int64]entity.Product
	variants  map[int64]entity.ProductVariant
	orders    map[int64]entity.Order
	seq       sequences
}

func NewStore() *Store {
	return &Store{
		data: &dataset{
			users:     make(map[int64]entity.User),
			settings:  make(map[string]entity.ShopSettings),
			allowlist: make(map[int64]entity.AllowlistEntry),
			products:  make(map[int64]entity.Product),
			variants:  make(map[int64]entity.ProductVariant),
			orders:    make(map[int64]entity.Order),
		},
		now: time.Now,
	}
}

// SetNow overrides the timestamp source used for CreatedAt fields.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// clone copies every table. Stored values never share mutable state: pointer
// fields are replaced on update, never written through.
func (d *dataset) clone() *dataset {
	return &dataset{
		users:     maps.Clone(d.users),
		settings:  maps.Clone(d.settings),
		allowlist: maps.Clone(d.allowlist),
		products:  maps.Clone(d.products),
		variants:  maps.Clone(d.variants),
		orders:    maps.Clone(d.orders),
		seq:       d.seq,
	}
}

// scope is embedded by every repository. A non-nil tx means the repository
// belongs to a transaction that already holds the write lock.
type scope struct {
	store *Store
	tx    *dataset
}

func (s scope) read(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	return fn(s.store.data)
}

func (s scope) write(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return fn(s.store.data)
}

func (s scope) now() time.Time {
	return s.store.now()
}

type transactionManager struct {
	store *Store
}

func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	snapshot := tm.store.data.clone()
	if err := fn(&repositoryFactory{scope: scope{store: tm.store, tx: snapshot}}); err != nil {
		return err
	}

	tm.store.data = snapshot

	return nil
}

type repositoryFactory struct {
	scope scope
}

func (f *repositoryFactory) UserRepo() repository.UserRepository {
	return &userRepository{scope: f.scope}
}

func (f *repositoryFactory) CatalogRepo() repository.CatalogRepository {
	return &catalogRepository{scope: f.scope}
}

func (f *repositoryFactory) OrderRepo() repository.OrderRepository {
	return &orderRepository{scope: f.scope}
}

func (f *repositoryFactory) ShopSettingsRepo() repository.ShopSettingsRepository {
	return &shopSettingsRepository{scope: f.scope}
}

func (f *repositoryFactory) AllowlistRepo() repository.AllowlistRepository {
	return &allowlistRepository{scope: f.scope}
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{scope: scope{store: store}}
}

func NewCatalogRepository(store *Store) repository.CatalogRepository {
	return &catalogRepository{scope: scope{store: store}}
}

func NewOrderRepository(store *Store) repository.OrderRepository {
	return &orderRepository{scope: scope{store: store}}
}

func NewShopSettingsRepository(store *Store) repository.ShopSettingsRepository {
	return &shopSettingsRepository{scope: scope{store: store}}
}

func NewAllowlistRepository(store *Store) repository.AllowlistRepository {
	return &allowlistRepository{scope: scope{store: store}}
}
