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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, number, store_id, user_id, document_type, subtotal, total, status, voided_at, created_at, updated_at`

// Create inserta la cabecera y completa sale.Number con el correlativo asignado por la DB.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, store_id, user_id, document_type, subtotal, total, status, voided_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING number`
	err := r.q.QueryRow(ctx, query,
		sale.ID, sale.StoreID, sale.UserID, sale.DocumentType,
		sale.Subtotal, sale.Total, sale.Status, sale.VoidedAt,
		sale.CreatedAt, sale.UpdatedAt,
	).Scan(&sale.Number)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewError(domain.ErrNotFound, "Tienda o usuario no encontrados")
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de la venta.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, position, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SaleID, item.Position, item.ProductID,
		item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewError(domain.ErrNotFound, "Producto no encontrado: %s", item.ProductID)
		}
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// DeleteItems borra todas las líneas de la venta (edición = reemplazo completo).
func (r *SaleRepo) DeleteItems(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return nil
}

// Update persiste los campos mutables de la cabecera.
func (r *SaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	query := `
		UPDATE sales
		SET store_id = $2, document_type = $3, subtotal = $4, total = $5,
		    status = $6, voided_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		sale.ID, sale.StoreID, sale.DocumentType, sale.Subtotal, sale.Total,
		sale.Status, sale.VoidedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewError(domain.ErrNotFound, "Tienda no encontrada")
		}
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la venta con sus líneas y el nombre de cada producto; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.load(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
// Dos anulaciones o ediciones concurrentes de la misma venta quedan serializadas.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.load(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) load(ctx context.Context, query, id string) (*entity.Sale, error) {
	if !validID(id) {
		return nil, nil
	}
	sale, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	byID := map[string]*entity.Sale{sale.ID: sale}
	if err := r.loadItems(ctx, []string{sale.ID}, byID); err != nil {
		return nil, err
	}
	return sale, nil
}

// ListActive lista ventas ACTIVE, más recientes primero, con sus líneas.
func (r *SaleRepo) ListActive(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	where := `WHERE status = 'ACTIVE'`
	args := []any{}
	if filter.StoreID != "" {
		if !validID(filter.StoreID) {
			return []*entity.Sale{}, 0, nil
		}
		where += ` AND store_id = $1`
		args = append(args, filter.StoreID)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM sales `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM sales %s ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d`,
		saleColumns, where, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]*entity.Sale, 0)
	byID := make(map[string]*entity.Sale)
	ids := make([]string, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		if err := r.loadItems(ctx, ids, byID); err != nil {
			return nil, 0, err
		}
	}
	return sales, total, nil
}

// loadItems carga las líneas de varias ventas en una sola consulta.
func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []string, byID map[string]*entity.Sale) error {
	query := `
		SELECT si.id, si.sale_id, si.position, si.product_id, COALESCE(p.name, ''),
		       si.quantity, si.unit_price, si.subtotal
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = ANY($1::uuid[])
		ORDER BY si.sale_id, si.position`
	rows, err := r.q.Query(ctx, query, saleIDs)
	if err != nil {
		return fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(
			&it.ID, &it.SaleID, &it.Position, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal,
		); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, &it)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.Number, &s.StoreID, &s.UserID, &s.DocumentType,
		&s.Subtotal, &s.Total, &s.Status, &s.VoidedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Items = make([]*entity.SaleItem, 0)
	return &s, nil
}
