package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const selectStock = `
	SELECT product_id, store_id, quantity, updated_at
	FROM stock_entries WHERE product_id = $1 AND store_id = $2`

// Get obtiene el stock de un producto en una tienda; nil si no está configurado.
func (r *StockRepo) Get(ctx context.Context, productID, storeID string) (*entity.StockEntry, error) {
	return r.get(ctx, selectStock, productID, storeID)
}

// GetForUpdate obtiene el stock y bloquea la fila hasta el fin de la transacción.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockEntry, error) {
	return r.get(ctx, selectStock+` FOR UPDATE`, productID, storeID)
}

func (r *StockRepo) get(ctx context.Context, query, productID, storeID string) (*entity.StockEntry, error) {
	if !validID(productID) || !validID(storeID) {
		return nil, nil
	}
	var e entity.StockEntry
	err := r.q.QueryRow(ctx, query, productID, storeID).Scan(&e.ProductID, &e.StoreID, &e.Quantity, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &e, nil
}

// Create inserta la entrada de stock de un par (producto, tienda).
func (r *StockRepo) Create(ctx context.Context, entry *entity.StockEntry) error {
	if !validID(entry.ProductID) || !validID(entry.StoreID) {
		return domain.NewError(domain.ErrNotFound, "Producto o tienda no encontrados")
	}
	query := `
		INSERT INTO stock_entries (product_id, store_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, entry.ProductID, entry.StoreID, entry.Quantity, entry.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.NewError(domain.ErrDuplicate, "Ya existe stock para productId %s en la tienda", entry.ProductID)
		case isForeignKeyViolation(err):
			return domain.NewError(domain.ErrNotFound, "Producto o tienda no encontrados")
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// Decrement resta amount solo si alcanza (una sola sentencia, sin ventana entre lectura y escritura).
func (r *StockRepo) Decrement(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	if !validID(productID) || !validID(storeID) {
		return false, nil
	}
	query := `
		UPDATE stock_entries
		SET quantity = quantity - $3, updated_at = now()
		WHERE product_id = $1 AND store_id = $2 AND quantity >= $3`
	tag, err := r.q.Exec(ctx, query, productID, storeID, amount)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Increment suma amount a la entrada existente.
func (r *StockRepo) Increment(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	if !validID(productID) || !validID(storeID) {
		return false, nil
	}
	query := `
		UPDATE stock_entries
		SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND store_id = $2`
	tag, err := r.q.Exec(ctx, query, productID, storeID, amount)
	if err != nil {
		return false, fmt.Errorf("increment stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByStore lista el stock de una tienda ordenado por nombre de producto.
func (r *StockRepo) ListByStore(ctx context.Context, storeID string) ([]*entity.StockEntry, error) {
	if !validID(storeID) {
		return []*entity.StockEntry{}, nil
	}
	query := `
		SELECT s.product_id, s.store_id, s.quantity, s.updated_at
		FROM stock_entries s
		JOIN products p ON p.id = s.product_id
		WHERE s.store_id = $1
		ORDER BY p.name, s.product_id`
	rows, err := r.q.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.StockEntry, 0)
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ProductID, &e.StoreID, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
