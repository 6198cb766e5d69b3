package memory

import (
	"cmp"
	"context"
	"slices"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
)

type catalogRepository struct {
	scope scope
}

func compareVariants(a, b *entity.ProductVariant) int {
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

func compareProducts(a, b *entity.Product) int {
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// assemble copies a stored product and attaches its variants.
func assemble(d *dataset, p entity.Product, activeOnly bool) *entity.Product {
	product := p
	product.Variants = nil
	for _, v := range d.variants {
		if v.ProductID != p.ID || (activeOnly && !v.IsActive) {
			continue
		}
		product.Variants = append(product.Variants, &v)
	}
	slices.SortFunc(product.Variants, compareVariants)

	return &product
}

func (repo *catalogRepository) CreateProduct(_ context.Context, product *entity.Product) error {
	return repo.scope.write(func(d *dataset) error {
		now := repo.scope.now()

		d.seq.product++
		product.ID = d.seq.product
		product.CreatedAt = now

		stored := *product
		stored.Variants = nil
		d.products[product.ID] = stored

		for _, v := range product.Variants {
			d.seq.variant++
			v.ID = d.seq.variant
			v.ProductID = product.ID
			v.CreatedAt = now
			stored := *v
			stored.Product = nil
			stored.Stock = copyInt(v.Stock)
			d.variants[v.ID] = stored
		}

		return nil
	})
}

func (repo *catalogRepository) UpdateProduct(_ context.Context, product *entity.Product) error {
	return repo.scope.write(func(d *dataset) error {
		current, ok := d.products[product.ID]
		if !ok {
			return repository.ErrProductNotFound
		}
		current.Shop = product.Shop
		current.Title = product.Title
		current.Description = product.Description
		current.ImageURL = product.ImageURL
		current.IsActive = product.IsActive
		current.Position = product.Position
		d.products[product.ID] = current

		return nil
	})
}

func (repo *catalogRepository) FindProduct(_ context.Context, id int64) (*entity.Product, error) {
	var product *entity.Product
	err := repo.scope.read(func(d *dataset) error {
		p, ok := d.products[id]
		if !ok {
			return repository.ErrProductNotFound
		}
		product = assemble(d, p, false)

		return nil
	})

	return product, err
}

func (repo *catalogRepository) ListProducts(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var products []*entity.Product
	err := repo.scope.read(func(d *dataset) error {
		for _, p := range d.products {
			if filter.Shop != "" && p.Shop != filter.Shop {
				continue
			}
			if filter.ActiveOnly && !p.IsActive {
				continue
			}
			products = append(products, assemble(d, p, filter.ActiveOnly))
		}

		return nil
	})
	slices.SortFunc(products, compareProducts)

	return products, err
}

func (repo *catalogRepository) DeleteProduct(_ context.Context, id int64) error {
	return repo.scope.write(func(d *dataset) error {
		if _, ok := d.products[id]; !ok {
			return repository.ErrProductNotFound
		}
		for vid, v := range d.variants {
			if v.ProductID == id {
				delete(d.variants, vid)
			}
		}
		delete(d.products, id)

		return nil
	})
}

func (repo *catalogRepository) FindVariant(_ context.Context, id int64) (*entity.ProductVariant, error) {
	var variant entity.ProductVariant
	err := repo.scope.read(func(d *dataset) error {
		v, ok := d.variants[id]
		if !ok {
			return repository.ErrVariantNotFound
		}
		if p, ok := d.products[v.ProductID]; ok {
			p.Variants = nil
			v.Product = &p
		}
		variant = v

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func (repo *catalogRepository) CreateVariant(_ context.Context, variant *entity.ProductVariant) error {
	return repo.scope.write(func(d *dataset) error {
		if _, ok := d.products[variant.ProductID]; !ok {
			return repository.ErrProductNotFound
		}

		d.seq.variant++
		variant.ID = d.seq.variant
		variant.CreatedAt = repo.scope.now()
		stored := *variant
		stored.Product = nil
		stored.Stock = copyInt(variant.Stock)
		d.variants[variant.ID] = stored

		return nil
	})
}

func (repo *catalogRepository) UpdateVariant(_ context.Context, variant *entity.ProductVariant) error {
	return repo.scope.write(func(d *dataset) error {
		current, ok := d.variants[variant.ID]
		if !ok {
			return repository.ErrVariantNotFound
		}
		current.Label = variant.Label
		current.PointsCost = variant.PointsCost
		current.Stock = copyInt(variant.Stock)
		current.IsActive = variant.IsActive
		current.Position = variant.Position
		d.variants[variant.ID] = current

		return nil
	})
}

func (repo *catalogRepository) DeleteVariant(_ context.Context, id int64) error {
	return repo.scope.write(func(d *dataset) error {
		if _, ok := d.variants[id]; !ok {
			return repository.ErrVariantNotFound
		}
		delete(d.variants, id)

		return nil
	})
}

func (repo *catalogRepository) DecrementStock(_ context.Context, variantID int64) (bool, error) {
	decremented := false
	err := repo.scope.write(func(d *dataset) error {
		v, ok := d.variants[variantID]
		if !ok || v.Stock == nil || *v.Stock <= 0 {
			return nil
		}
		v.Stock = copyInt(v.Stock)
		*v.Stock--
		d.variants[variantID] = v
		decremented = true

		return nil
	})

	return decremented, err
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v

	return &n
}
