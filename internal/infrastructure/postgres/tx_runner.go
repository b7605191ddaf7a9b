package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ sales.TxRunner     = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// El aislamiento frente a ventas concurrentes lo dan los bloqueos de fila (FOR UPDATE)
// y el descuento guardado de stock, no el nivel de aislamiento.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSales inicia una transacción con los repos de stock, ventas y productos atados a ella.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockRepository(tx), NewSaleRepository(tx), NewProductRepository(tx))
	})
}

// RunStock inicia una transacción con el repo de stock (apertura y reposición).
func (r *TxRunner) RunStock(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockRepository(tx))
	})
}

// run hace Begin, ejecuta fn y Commit; cualquier error (o panic) deja la tx en Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
