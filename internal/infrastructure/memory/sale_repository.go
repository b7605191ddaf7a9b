package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// SaleRepository implementa repository.SaleRepository.
type SaleRepository struct {
	b base
}

func (r *SaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return r.b.read(func(d *snapshot) error {
		if _, ok := d.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		d.saleSeq++
		sale.Number = d.saleSeq
		d.sales[sale.ID] = copySale(sale)
		return nil
	})
}

func (r *SaleRepository) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	return r.b.read(func(d *snapshot) error {
		if _, ok := d.sales[item.SaleID]; !ok {
			return domain.ErrNotFound
		}
		c := *item
		c.ProductName = ""
		d.items[item.SaleID] = append(d.items[item.SaleID], &c)
		return nil
	})
}

func (r *SaleRepository) DeleteItems(ctx context.Context, saleID string) error {
	return r.b.read(func(d *snapshot) error {
		delete(d.items, saleID)
		return nil
	})
}

func (r *SaleRepository) Update(ctx context.Context, sale *entity.Sale) error {
	return r.b.read(func(d *snapshot) error {
		cur, ok := d.sales[sale.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := copySale(sale)
		upd.Number = cur.Number
		upd.CreatedAt = cur.CreatedAt
		upd.UserID = cur.UserID
		d.sales[sale.ID] = upd
		return nil
	})
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.b.read(func(d *snapshot) error {
		out = loadSale(d, id)
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la unidad de trabajo ya tiene el lock exclusivo del almacén.
func (r *SaleRepository) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepository) ListActive(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	var out []*entity.Sale
	var total int
	err := r.b.read(func(d *snapshot) error {
		var matched []*entity.Sale
		for id, s := range d.sales {
			if !s.IsActive() || (filter.StoreID != "" && s.StoreID != filter.StoreID) {
				continue
			}
			matched = append(matched, loadSale(d, id))
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].Number > matched[j].Number
		})
		total = len(matched)
		out = page(matched, filter.Limit, filter.Offset)
		return nil
	})
	return out, total, err
}

func loadSale(d *snapshot, id string) *entity.Sale {
	s, ok := d.sales[id]
	if !ok {
		return nil
	}
	out := copySale(s)
	out.Items = copyItems(d.items[id])
	sort.SliceStable(out.Items, func(i, j int) bool { return out.Items[i].Position < out.Items[j].Position })
	for _, it := range out.Items {
		if p, ok := d.products[it.ProductID]; ok {
			it.ProductName = p.Name
		}
	}
	return out
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
