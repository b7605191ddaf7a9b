package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository.
type ProductRepository struct {
	b base
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.b.read(func(d *snapshot) error {
		if _, ok := d.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		d.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(d *snapshot) error {
		if p, ok := d.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.b.read(func(d *snapshot) error {
		if _, ok := d.products[product.ID]; !ok {
			return domain.ErrNotFound
		}
		d.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *ProductRepository) ListActive(ctx context.Context, filter repository.ProductFilter) ([]*entity.ProductWithStock, error) {
	var out []*entity.ProductWithStock
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	err := r.b.read(func(d *snapshot) error {
		var matched []*entity.ProductWithStock
		for _, p := range d.products {
			if !p.IsActive() {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
				continue
			}
			row := &entity.ProductWithStock{Product: *copyProduct(p)}
			if filter.StoreID != "" {
				if e, ok := d.stock[stockKey{p.ID, filter.StoreID}]; ok {
					qty := e.Quantity
					row.Stock = &qty
				}
			}
			matched = append(matched, row)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID < matched[j].ID
		})
		out = page(matched, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

// StoreRepository implementa repository.StoreRepository.
type StoreRepository struct {
	b base
}

func (r *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	return r.b.read(func(d *snapshot) error {
		if _, ok := d.stores[store.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *store
		d.stores[store.ID] = &c
		return nil
	})
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	err := r.b.read(func(d *snapshot) error {
		if s, ok := d.stores[id]; ok {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *StoreRepository) List(ctx context.Context) ([]*entity.Store, error) {
	var out []*entity.Store
	err := r.b.read(func(d *snapshot) error {
		for _, s := range d.stores {
			c := *s
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// UserRepository implementa repository.UserRepository.
type UserRepository struct {
	b base
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.b.read(func(d *snapshot) error {
		for _, u := range d.users {
			if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
				return domain.ErrDuplicate
			}
		}
		c := *user
		d.users[user.ID] = &c
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.b.read(func(d *snapshot) error {
		if u, ok := d.users[id]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.b.read(func(d *snapshot) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
				c := *u
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}
