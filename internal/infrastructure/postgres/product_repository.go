package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, price, status, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Price, product.Status,
		product.CreatedAt, product.UpdatedAt, product.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID (incluye inactivos y borrados); nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, name, price, status, created_at, updated_at, deleted_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update modifica nombre, precio y estado en sitio.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, price = $3, status = $4, updated_at = $5, deleted_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Price, product.Status, product.UpdatedAt, product.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lista productos activos y no borrados, con el stock de la tienda si se indica.
func (r *ProductRepo) ListActive(ctx context.Context, filter repository.ProductFilter) ([]*entity.ProductWithStock, error) {
	var sb strings.Builder
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`SELECT p.id, p.name, p.price, p.status, p.created_at, p.updated_at, p.deleted_at, `)
	storeID := strings.TrimSpace(filter.StoreID)
	if storeID != "" && validID(storeID) {
		sb.WriteString(`s.quantity FROM products p LEFT JOIN stock_entries s ON s.product_id = p.id AND s.store_id = ` + arg(storeID))
	} else {
		sb.WriteString(`NULL::int FROM products p`)
	}
	sb.WriteString(` WHERE p.status = 'ACTIVE' AND p.deleted_at IS NULL`)
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(` AND p.name ILIKE '%' || ` + arg(q) + ` || '%'`)
	}
	sb.WriteString(` ORDER BY p.created_at DESC, p.id`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		sb.WriteString(` OFFSET ` + arg(filter.Offset))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.ProductWithStock, 0)
	for rows.Next() {
		var p entity.ProductWithStock
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
