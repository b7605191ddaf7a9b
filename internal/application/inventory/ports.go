package inventory

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio de stock atado a esa tx.
// Garantiza atomicidad para las operaciones administrativas de stock.
type TxRunner interface {
	RunStock(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}
