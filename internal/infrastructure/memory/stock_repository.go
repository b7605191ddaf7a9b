package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// StockRepository implementa repository.StockRepository.
type StockRepository struct {
	b base
}

func (r *StockRepository) Get(ctx context.Context, productID, storeID string) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	err := r.b.read(func(d *snapshot) error {
		if e, ok := d.stock[stockKey{productID, storeID}]; ok {
			c := *e
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: la unidad de trabajo ya tiene el lock exclusivo del almacén.
func (r *StockRepository) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockEntry, error) {
	return r.Get(ctx, productID, storeID)
}

func (r *StockRepository) Create(ctx context.Context, entry *entity.StockEntry) error {
	return r.b.read(func(d *snapshot) error {
		k := stockKey{entry.ProductID, entry.StoreID}
		if _, ok := d.stock[k]; ok {
			return domain.NewError(domain.ErrDuplicate, "Ya existe stock para productId %s en la tienda", entry.ProductID)
		}
		c := *entry
		d.stock[k] = &c
		return nil
	})
}

func (r *StockRepository) Decrement(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	var ok bool
	err := r.b.read(func(d *snapshot) error {
		e, found := d.stock[stockKey{productID, storeID}]
		if !found || e.Quantity < amount {
			return nil
		}
		e.Quantity -= amount
		e.UpdatedAt = time.Now()
		ok = true
		return nil
	})
	return ok, err
}

func (r *StockRepository) Increment(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	var ok bool
	err := r.b.read(func(d *snapshot) error {
		e, found := d.stock[stockKey{productID, storeID}]
		if !found {
			return nil
		}
		e.Quantity += amount
		e.UpdatedAt = time.Now()
		ok = true
		return nil
	})
	return ok, err
}

func (r *StockRepository) ListByStore(ctx context.Context, storeID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	err := r.b.read(func(d *snapshot) error {
		for k, e := range d.stock {
			if k.storeID == storeID {
				c := *e
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}
