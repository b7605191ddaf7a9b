package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// StockRepository define las primitivas de persistencia del ledger de stock por (producto, tienda).
// Usado dentro de transacciones; las operaciones de cantidad deben ser atómicas en el almacén.
type StockRepository interface {
	// Get devuelve la entrada o nil si no existe.
	Get(ctx context.Context, productID, storeID string) (*entity.StockEntry, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockEntry, error)
	// Create inserta una entrada nueva; domain.ErrDuplicate si el par ya existe.
	Create(ctx context.Context, entry *entity.StockEntry) error
	// Decrement resta amount en una sola sentencia, solo si quantity >= amount.
	// Devuelve false si la fila no existe o la guarda no se cumple (no se modifica nada).
	Decrement(ctx context.Context, productID, storeID string, amount int) (bool, error)
	// Increment suma amount en una sola sentencia. Devuelve false si la fila no existe.
	Increment(ctx context.Context, productID, storeID string, amount int) (bool, error)
	ListByStore(ctx context.Context, storeID string) ([]*entity.StockEntry, error)
}
