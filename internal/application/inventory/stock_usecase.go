package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// StockUseCase operaciones administrativas de stock: apertura, reposición y consulta.
// Las ventas no pasan por aquí; descuentan stock a través del Ledger dentro de su propia transacción.
type StockUseCase struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		log:         log.With().Str("component", "stock").Logger(),
		now:         time.Now,
	}
}

// Open crea la entrada de stock de un producto en una tienda. ErrDuplicate si ya existe.
func (uc *StockUseCase) Open(ctx context.Context, in dto.OpenStockRequest) (*dto.StockEntryResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.NewError(domain.ErrInvalidInput, "cantidad inicial inválida: %d", in.Quantity)
	}
	if err := uc.checkRefs(ctx, in.ProductID, in.StoreID); err != nil {
		return nil, err
	}
	err := uc.txRunner.RunStock(ctx, func(stockRepo repository.StockRepository) error {
		return NewLedger(stockRepo).WithClock(uc.now).Open(ctx, in.ProductID, in.StoreID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", in.ProductID).Str("store_id", in.StoreID).Int("quantity", in.Quantity).Msg("stock abierto")
	return uc.current(ctx, in.ProductID, in.StoreID)
}

// Restock suma unidades a una entrada existente. ErrStockNotConfigured si no existe.
func (uc *StockUseCase) Restock(ctx context.Context, in dto.RestockRequest) (*dto.StockEntryResponse, error) {
	if in.ProductID == "" || in.StoreID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "productId y storeId requeridos")
	}
	err := uc.txRunner.RunStock(ctx, func(stockRepo repository.StockRepository) error {
		return NewLedger(stockRepo).Increment(ctx, in.ProductID, in.StoreID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", in.ProductID).Str("store_id", in.StoreID).Int("quantity", in.Quantity).Msg("stock repuesto")
	return uc.current(ctx, in.ProductID, in.StoreID)
}

// ListByStore devuelve las entradas de stock de una tienda.
func (uc *StockUseCase) ListByStore(ctx context.Context, storeID string) ([]dto.StockEntryResponse, error) {
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("stock: obtener tienda: %w", err)
	}
	if store == nil {
		return nil, domain.NewError(domain.ErrNotFound, "Tienda no encontrada")
	}
	entries, err := uc.stockRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStockEntryResponse(e))
	}
	return out, nil
}

// LowStock entradas de la tienda con cantidad menor o igual a threshold, de menor a mayor.
func (uc *StockUseCase) LowStock(ctx context.Context, storeID string, threshold int) ([]dto.StockEntryResponse, error) {
	all, err := uc.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryResponse, 0)
	for _, e := range all {
		if e.Quantity <= threshold {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (uc *StockUseCase) checkRefs(ctx context.Context, productID, storeID string) error {
	if productID == "" || storeID == "" {
		return domain.NewError(domain.ErrInvalidInput, "productId y storeId requeridos")
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("stock: obtener producto: %w", err)
	}
	if product == nil || product.DeletedAt != nil {
		return domain.NewError(domain.ErrNotFound, "Producto no encontrado")
	}
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return fmt.Errorf("stock: obtener tienda: %w", err)
	}
	if store == nil {
		return domain.NewError(domain.ErrNotFound, "Tienda no encontrada")
	}
	return nil
}

func (uc *StockUseCase) current(ctx context.Context, productID, storeID string) (*dto.StockEntryResponse, error) {
	entry, err := uc.stockRepo.Get(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, notConfigured(productID)
	}
	resp := toStockEntryResponse(entry)
	return &resp, nil
}

func toStockEntryResponse(e *entity.StockEntry) dto.StockEntryResponse {
	return dto.StockEntryResponse{
		ProductID: e.ProductID,
		StoreID:   e.StoreID,
		Quantity:  e.Quantity,
		UpdatedAt: e.UpdatedAt,
	}
}

