package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
)

type userRepository struct {
	scope scope
}

func findUser(d *dataset, handle string) (entity.User, bool) {
	for _, u := range d.users {
		if u.Handle == handle {
			return u, true
		}
	}

	return entity.User{}, false
}

func (repo *userRepository) FindByHandle(_ context.Context, handle string) (*entity.User, error) {
	var found entity.User
	err := repo.scope.read(func(d *dataset) error {
		u, ok := findUser(d, handle)
		if !ok {
			return repository.ErrUserNotFound
		}
		found = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &found, nil
}

func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	return repo.scope.write(func(d *dataset) error {
		if _, ok := findUser(d, user.Handle); ok {
			return repository.ErrDuplicate
		}

		d.seq.user++
		user.ID = d.seq.user
		user.CreatedAt = repo.scope.now()
		d.users[user.ID] = *user

		return nil
	})
}

func (repo *userRepository) SetPasswordHash(_ context.Context, userID int64, hash string) error {
	return repo.scope.write(func(d *dataset) error {
		u, ok := d.users[userID]
		if !ok {
			return repository.ErrUserNotFound
		}
		u.PasswordHash = &hash
		d.users[userID] = u

		return nil
	})
}

func (repo *userRepository) SetPoints(_ context.Context, handle string, points int) (*entity.User, error) {
	var updated entity.User
	err := repo.scope.write(func(d *dataset) error {
		u, ok := findUser(d, handle)
		if !ok {
			d.seq.user++
			u = entity.User{ID: d.seq.user, Handle: handle, CreatedAt: repo.scope.now()}
		}
		u.Points = points
		d.users[u.ID] = u
		updated = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (repo *userRepository) DebitPoints(_ context.Context, userID int64, amount int) (bool, error) {
	debited := false
	err := repo.scope.write(func(d *dataset) error {
		u, ok := d.users[userID]
		if !ok || u.Points < amount {
			return nil
		}
		u.Points -= amount
		d.users[userID] = u
		debited = true

		return nil
	})

	return debited, err
}

func (repo *userRepository) ListByPoints(_ context.Context, offset, limit int) ([]*entity.User, error) {
	var users []*entity.User
	err := repo.scope.read(func(d *dataset) error {
		all := make([]entity.User, 0, len(d.users))
		for _, u := range d.users {
			all = append(all, u)
		}
		slices.SortFunc(all, func(a, b entity.User) int {
			if c := cmp.Compare(b.Points, a.Points); c != 0 {
				return c
			}

			return cmp.Compare(a.ID, b.ID)
		})

		for _, u := range page(all, offset, limit) {
			users = append(users, &u)
		}

		return nil
	})

	return users, err
}

func (repo *userRepository) Count(_ context.Context) (int64, error) {
	var count int64
	err := repo.scope.read(func(d *dataset) error {
		count = int64(len(d.users))

		return nil
	})

	return count, err
}

func (repo *userRepository) ListHandles(_ context.Context) ([]string, error) {
	var handles []string
	err := repo.scope.read(func(d *dataset) error {
		ids := slices.Sorted(maps.Keys(d.users))
		for _, id := range ids {
			handles = append(handles, d.users[id].Handle)
		}

		return nil
	})

	return handles, err
}

// page slices items to [offset, offset+limit). A non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
