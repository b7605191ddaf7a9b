// Package memory implementa los repositorios y la unidad de trabajo en memoria.
// Se usa en tests y con STORE_DRIVER=memory en desarrollo.
//
// Cada unidad de trabajo toma el lock del Store, trabaja sobre una copia de los datos
// y la publica solo si la función no devuelve error (commit = intercambio de la copia).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

type stockKey struct {
	productID string
	storeID   string
}

type snapshot struct {
	products map[string]*entity.Product
	stores   map[string]*entity.Store
	users    map[string]*entity.User
	stock    map[stockKey]*entity.StockEntry
	sales    map[string]*entity.Sale // cabeceras sin Items
	items    map[string][]*entity.SaleItem
	saleSeq  int64
}

func newSnapshot() *snapshot {
	return &snapshot{
		products: map[string]*entity.Product{},
		stores:   map[string]*entity.Store{},
		users:    map[string]*entity.User{},
		stock:    map[stockKey]*entity.StockEntry{},
		sales:    map[string]*entity.Sale{},
		items:    map[string][]*entity.SaleItem{},
	}
}

func (s *snapshot) clone() *snapshot {
	c := newSnapshot()
	c.saleSeq = s.saleSeq
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.stores {
		st := *v
		c.stores[k] = &st
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.stock {
		e := *v
		c.stock[k] = &e
	}
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range s.items {
		c.items[k] = copyItems(v)
	}
	return c
}

// Store almacén en memoria. El valor cero no es usable; usar NewStore.
type Store struct {
	mu   sync.Mutex
	data *snapshot
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newSnapshot()}
}

// base da acceso a los datos: dentro de una unidad de trabajo opera sobre la copia (el lock
// ya está tomado); fuera de ella cada operación toma el lock y actúa sobre los datos publicados.
type base struct {
	store *Store
	tx    *snapshot
}

func (b base) read(fn func(d *snapshot) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.data)
}

// run ejecuta fn sobre una copia y la publica si no hay error.
func (s *Store) run(ctx context.Context, fn func(b base) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(base{store: s, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.run(ctx, func(b base) error {
		return fn(&StockRepository{b}, &SaleRepository{b}, &ProductRepository{b})
	})
}

// RunStock implementa inventory.TxRunner.
func (s *Store) RunStock(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return s.run(ctx, func(b base) error {
		return fn(&StockRepository{b})
	})
}

// Stock repositorio de stock fuera de transacción (lecturas y escrituras de una sola operación).
func (s *Store) Stock() *StockRepository { return &StockRepository{base{store: s}} }
func (s *Store) Sales() *SaleRepository { return &SaleRepository{base{store: s}} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{base{store: s}} }
func (s *Store) Stores() *StoreRepository { return &StoreRepository{base{store: s}} }
func (s *Store) Users() *UserRepository { return &UserRepository{base{store: s}} }

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func copySale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = nil
	if s.VoidedAt != nil {
		t := *s.VoidedAt
		c.VoidedAt = &t
	}
	return &c
}

func copyItems(items []*entity.SaleItem) []*entity.SaleItem {
	out := make([]*entity.SaleItem, len(items))
	for i, it := range items {
		c := *it
		out[i] = &c
	}
	return out
}
