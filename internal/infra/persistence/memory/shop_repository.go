package memory

import (
	"cmp"
	"context"
	"slices"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
)

type shopSettingsRepository struct {
	scope scope
}

func (repo *shopSettingsRepository) FindByShop(_ context.Context, shop string) (*entity.ShopSettings, error) {
	var found entity.ShopSettings
	err := repo.scope.read(func(d *dataset) error {
		s, ok := d.settings[shop]
		if !ok {
			return repository.ErrShopSettingsNotFound
		}
		found = s

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &found, nil
}

func (repo *shopSettingsRepository) List(_ context.Context) ([]*entity.ShopSettings, error) {
	var list []*entity.ShopSettings
	err := repo.scope.read(func(d *dataset) error {
		for _, s := range d.settings {
			list = append(list, &s)
		}

		return nil
	})
	slices.SortFunc(list, func(a, b *entity.ShopSettings) int { return cmp.Compare(a.ID, b.ID) })

	return list, err
}

func (repo *shopSettingsRepository) Save(_ context.Context, settings *entity.ShopSettings) error {
	return repo.scope.write(func(d *dataset) error {
		current, ok := d.settings[settings.Shop]
		if !ok {
			d.seq.settings++
			current = entity.ShopSettings{ID: d.seq.settings, Shop: settings.Shop}
		}
		current.OpensAt = settings.OpensAt
		current.ClosesAt = settings.ClosesAt
		current.UpdatedAt = repo.scope.now()
		d.settings[settings.Shop] = current

		settings.ID = current.ID
		settings.UpdatedAt = current.UpdatedAt

		return nil
	})
}

func (repo *shopSettingsRepository) EnsureShops(_ context.Context, shops []string) error {
	return repo.scope.write(func(d *dataset) error {
		for _, shop := range shops {
			if _, ok := d.settings[shop]; ok {
				continue
			}
			d.seq.settings++
			d.settings[shop] = entity.ShopSettings{ID: d.seq.settings, Shop: shop, UpdatedAt: repo.scope.now()}
		}

		return nil
	})
}

type allowlistRepository struct {
	scope scope
}

func (repo *allowlistRepository) Exists(_ context.Context, handle, shop string) (bool, error) {
	exists := false
	err := repo.scope.read(func(d *dataset) error {
		for _, e := range d.allowlist {
			if e.Handle == handle && e.Shop == shop {
				exists = true

				break
			}
		}

		return nil
	})

	return exists, err
}

func (repo *allowlistRepository) Create(_ context.Context, entry *entity.AllowlistEntry) error {
	return repo.scope.write(func(d *dataset) error {
		d.seq.allowlist++
		entry.ID = d.seq.allowlist
		entry.CreatedAt = repo.scope.now()
		d.allowlist[entry.ID] = *entry

		return nil
	})
}

func (repo *allowlistRepository) List(_ context.Context) ([]*entity.AllowlistEntry, error) {
	var list []*entity.AllowlistEntry
	err := repo.scope.read(func(d *dataset) error {
		for _, e := range d.allowlist {
			list = append(list, &e)
		}

		return nil
	})
	slices.SortFunc(list, func(a, b *entity.AllowlistEntry) int { return cmp.Compare(a.ID, b.ID) })

	return list, err
}

func (repo *allowlistRepository) ListHandles(ctx context.Context, shop string) ([]string, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var handles []string
	for _, e := range entries {
		if e.Shop == shop {
			handles = append(handles, e.Handle)
		}
	}

	return handles, nil
}

func (repo *allowlistRepository) Delete(_ context.Context, id int64) error {
	return repo.scope.write(func(d *dataset) error {
		if _, ok := d.allowlist[id]; !ok {
			return repository.ErrAllowlistEntryNotFound
		}
		delete(d.allowlist, id)

		return nil
	})
}

func (repo *allowlistRepository) DeleteByShop(_ context.Context, shop string) (int64, error) {
	var removed int64
	err := repo.scope.write(func(d *dataset) error {
		for id, e := range d.allowlist {
			if e.Shop == shop {
				delete(d.allowlist, id)
				removed++
			}
		}

		return nil
	})

	return removed, err
}
