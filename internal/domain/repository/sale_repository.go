package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas.
type SaleFilter struct {
	StoreID string // vacío = todas las tiendas
	Limit   int
	Offset  int
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// Create persiste la cabecera y asigna Number.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	DeleteItems(ctx context.Context, saleID string) error
	// Update persiste store, tipo de documento, totales, estado y fecha de anulación.
	Update(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con sus líneas (y nombre de producto) o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// ListActive devuelve ventas ACTIVE, más recientes primero, y el total sin paginar.
	ListActive(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
}
