package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Ledger es el único componente que modifica cantidades de stock.
// Se construye sobre un StockRepository atado a la transacción en curso, de modo que
// todas sus operaciones participan de la misma unidad de trabajo.
type Ledger struct {
	repo repository.StockRepository
	now  func() time.Time
}

// StockKey identifica una fila de stock.
type StockKey struct {
	ProductID string
	StoreID   string
}

// NewLedger construye el ledger sobre el repositorio de la transacción.
func NewLedger(repo repository.StockRepository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// WithClock reemplaza el reloj usado para UpdatedAt en Open.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// LockAll bloquea (SELECT FOR UPDATE) las filas indicadas ordenadas por (productId, storeId),
// sin repetir. Toda transacción que toque varias filas de stock debe llamarlo antes de
// modificar ninguna, así dos ventas con los mismos productos en distinto orden no se cruzan.
// Los pares sin entrada se ignoran: Reserve o Increment informan el error después.
func (l *Ledger) LockAll(ctx context.Context, keys []StockKey) error {
	sorted := make([]StockKey, 0, len(keys))
	seen := make(map[StockKey]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].StoreID < sorted[j].StoreID
	})
	for _, k := range sorted {
		if _, err := l.repo.GetForUpdate(ctx, k.ProductID, k.StoreID); err != nil {
			return err
		}
	}
	return nil
}

// Peek devuelve la cantidad actual. ErrStockNotConfigured si no hay entrada para el par.
func (l *Ledger) Peek(ctx context.Context, productID, storeID string) (int, error) {
	entry, err := l.repo.Get(ctx, productID, storeID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, notConfigured(productID)
	}
	return entry.Quantity, nil
}

// Reserve verifica que haya al menos amount unidades. No modifica la cantidad, pero bloquea
// la fila (SELECT FOR UPDATE) hasta el fin de la transacción: ninguna otra venta puede
// descontar ese par entre esta verificación y el Decrement posterior.
func (l *Ledger) Reserve(ctx context.Context, productID, storeID string, amount int) error {
	entry, err := l.repo.GetForUpdate(ctx, productID, storeID)
	if err != nil {
		return err
	}
	if entry == nil {
		return notConfigured(productID)
	}
	if entry.Quantity < amount {
		return insufficient(productID)
	}
	return nil
}

// Decrement resta amount en una sola sentencia guardada (quantity >= amount).
// Si la guarda falla la cantidad no cambia y se devuelve ErrInsufficientStock.
func (l *Ledger) Decrement(ctx context.Context, productID, storeID string, amount int) error {
	if amount <= 0 {
		return domain.NewError(domain.ErrInvalidInput, "cantidad a descontar inválida: %d", amount)
	}
	ok, err := l.repo.Decrement(ctx, productID, storeID, amount)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// Guarda no cumplida: distinguir fila inexistente de stock insuficiente.
	entry, err := l.repo.Get(ctx, productID, storeID)
	if err != nil {
		return err
	}
	if entry == nil {
		return notConfigured(productID)
	}
	return insufficient(productID)
}

// Increment suma amount (reversión por anulación o edición, o reposición).
func (l *Ledger) Increment(ctx context.Context, productID, storeID string, amount int) error {
	if amount <= 0 {
		return domain.NewError(domain.ErrInvalidInput, "cantidad a reponer inválida: %d", amount)
	}
	ok, err := l.repo.Increment(ctx, productID, storeID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return notConfigured(productID)
	}
	return nil
}

// Open crea la entrada de stock la primera vez que un producto se abastece en una tienda.
func (l *Ledger) Open(ctx context.Context, productID, storeID string, initial int) error {
	if productID == "" || storeID == "" || initial < 0 {
		return domain.NewError(domain.ErrInvalidInput, "productId, storeId y cantidad inicial >= 0 requeridos")
	}
	return l.repo.Create(ctx, &entity.StockEntry{
		ProductID: productID,
		StoreID:   storeID,
		Quantity:  initial,
		UpdatedAt: l.now(),
	})
}

func notConfigured(productID string) error {
	return domain.NewError(domain.ErrStockNotConfigured, "Sin stock configurado para productId %s", productID)
}

func insufficient(productID string) error {
	return domain.NewError(domain.ErrInsufficientStock, "Stock insuficiente para productId %s", productID)
}
