package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ProductFilter criterios de búsqueda del catálogo.
type ProductFilter struct {
	Query   string // búsqueda por nombre, sin distinguir mayúsculas
	StoreID string // si se indica, se adjunta el stock de esa tienda
	Limit   int
	Offset  int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ListActive lista productos ACTIVE no borrados, más recientes primero.
	ListActive(ctx context.Context, filter ProductFilter) ([]*entity.ProductWithStock, error)
}
