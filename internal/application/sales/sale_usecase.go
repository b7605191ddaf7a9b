// Package sales implementa el motor transaccional de ventas: alta, edición y anulación
// manteniendo consistentes el stock por tienda y los totales de cada venta.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/domain/sale"
)

// Límites del listado de ventas.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// CreateSaleInput datos para registrar una venta. UserID viene de la identidad autenticada.
type CreateSaleInput struct {
	StoreID      string
	UserID       string
	DocumentType string
	Items        []sale.RawLine
}

// UpdateSaleInput reemplazo completo de las líneas de una venta activa.
// StoreID y DocumentType nil conservan los valores actuales.
type UpdateSaleInput struct {
	StoreID      *string
	DocumentType *string
	Items        []sale.RawLine
}

// ListSalesInput filtro y paginación del listado.
type ListSalesInput struct {
	StoreID string
	Limit   int
	Offset  int
}

// SalePage página de ventas activas.
type SalePage struct {
	Items  []*entity.Sale
	Total  int
	Limit  int
	Offset int
}

// SaleUseCase motor de ventas. Cada alta, edición o anulación es una sola llamada a RunSales.
type SaleUseCase struct {
	txRunner TxRunner
	saleRepo repository.SaleRepository
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el motor. saleRepo se usa para las lecturas fuera de transacción.
// recorder puede ser nil.
func NewSaleUseCase(txRunner TxRunner, saleRepo repository.SaleRepository, recorder Recorder, log zerolog.Logger) *SaleUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SaleUseCase{
		txRunner: txRunner,
		saleRepo: saleRepo,
		recorder: recorder,
		log:      log.With().Str("component", "sales").Logger(),
		now:      time.Now,
	}
}

// Create valida y valoriza las líneas, verifica stock de todas ellas y registra la venta
// descontando stock, todo en una transacción.
func (uc *SaleUseCase) Create(ctx context.Context, in CreateSaleInput) (*entity.Sale, error) {
	storeID := strings.TrimSpace(in.StoreID)
	userID := strings.TrimSpace(in.UserID)
	docType := strings.TrimSpace(in.DocumentType)
	switch {
	case storeID == "" || userID == "":
		return nil, uc.reject("create", domain.NewError(domain.ErrInvalidInput, "storeId y userId requeridos"))
	case docType == "":
		return nil, uc.reject("create", domain.NewError(domain.ErrInvalidInput, "tipoDocumento requerido"))
	case len(in.Items) == 0:
		return nil, uc.reject("create", domain.NewError(domain.ErrInvalidInput, "items requeridos"))
	}

	priced, err := sale.PriceLines(in.Items)
	if err != nil {
		return nil, uc.reject("create", err)
	}

	var created *entity.Sale
	err = uc.txRunner.RunSales(ctx, func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := checkSellable(ctx, productRepo, priced.Items); err != nil {
			return err
		}
		ledger := inventory.NewLedger(stockRepo)
		if err := reserveAll(ctx, ledger, storeID, priced.Items); err != nil {
			return err
		}

		now := uc.now()
		record := &entity.Sale{
			ID:           uuid.New().String(),
			StoreID:      storeID,
			UserID:       userID,
			DocumentType: docType,
			Subtotal:     priced.Subtotal,
			Total:        priced.Total,
			Status:       entity.SaleStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := saleRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		items, err := writeLines(ctx, ledger, saleRepo, record, priced.Items)
		if err != nil {
			return err
		}
		record.Items = items
		created = record
		return nil
	})
	if err != nil {
		return nil, uc.reject("create", err)
	}

	uc.recorder.SaleCreated(created.Total)
	uc.log.Info().
		Str("sale_id", created.ID).
		Str("store_id", created.StoreID).
		Str("user_id", created.UserID).
		Int("items", len(created.Items)).
		Str("total", created.Total.StringFixed(sale.MoneyPlaces)).
		Msg("venta creada")
	return uc.reread(ctx, created), nil
}

// Update reemplaza las líneas de una venta activa: repone el stock de las líneas anteriores
// en la tienda original, y descuenta las nuevas en la tienda destino. Todo o nada.
func (uc *SaleUseCase) Update(ctx context.Context, saleID string, in UpdateSaleInput) (*entity.Sale, error) {
	if strings.TrimSpace(saleID) == "" {
		return nil, uc.reject("update", notFound())
	}
	if len(in.Items) == 0 {
		return nil, uc.reject("update", domain.NewError(domain.ErrInvalidInput, "items requeridos"))
	}

	var updated *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		current, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("obtener venta: %w", err)
		}
		if current == nil {
			return notFound()
		}
		if !current.IsActive() {
			return domain.NewError(domain.ErrInvalidState, "Solo se puede editar ventas ACTIVAS")
		}

		priced, err := sale.PriceLines(in.Items)
		if err != nil {
			return err
		}

		targetStore := current.StoreID
		if in.StoreID != nil {
			targetStore = strings.TrimSpace(*in.StoreID)
			if targetStore == "" {
				return domain.NewError(domain.ErrInvalidInput, "storeId inválido")
			}
		}
		docType := current.DocumentType
		if in.DocumentType != nil {
			docType = strings.TrimSpace(*in.DocumentType)
			if docType == "" {
				return domain.NewError(domain.ErrInvalidInput, "tipoDocumento inválido")
			}
		}

		if err := checkSellable(ctx, productRepo, priced.Items); err != nil {
			return err
		}

		// Filas viejas (tienda original) y nuevas (tienda destino) se bloquean juntas y en orden
		// antes de reponer nada.
		ledger := inventory.NewLedger(stockRepo)
		keys := itemKeys(current.StoreID, current.Items)
		for _, l := range priced.Items {
			keys = append(keys, inventory.StockKey{ProductID: l.ProductID, StoreID: targetStore})
		}
		if err := ledger.LockAll(ctx, keys); err != nil {
			return err
		}
		for _, old := range current.Items {
			if err := ledger.Increment(ctx, old.ProductID, current.StoreID, old.Quantity); err != nil {
				return err
			}
		}
		if err := saleRepo.DeleteItems(ctx, current.ID); err != nil {
			return fmt.Errorf("borrar líneas: %w", err)
		}

		if err := reserveAll(ctx, ledger, targetStore, priced.Items); err != nil {
			return err
		}
		current.StoreID = targetStore
		items, err := writeLines(ctx, ledger, saleRepo, current, priced.Items)
		if err != nil {
			return err
		}

		current.DocumentType = docType
		current.Subtotal = priced.Subtotal
		current.Total = priced.Total
		current.UpdatedAt = uc.now()
		current.Items = items
		if err := saleRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, uc.reject("update", err)
	}

	uc.recorder.SaleUpdated(updated.Total)
	uc.log.Info().
		Str("sale_id", updated.ID).
		Str("store_id", updated.StoreID).
		Int("items", len(updated.Items)).
		Str("total", updated.Total.StringFixed(sale.MoneyPlaces)).
		Msg("venta actualizada")
	return uc.reread(ctx, updated), nil
}

// Void anula una venta activa reponiendo el stock de todas sus líneas. VOIDED es terminal.
func (uc *SaleUseCase) Void(ctx context.Context, saleID string) (*entity.Sale, error) {
	if strings.TrimSpace(saleID) == "" {
		return nil, uc.reject("void", notFound())
	}

	var voided *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		_ repository.ProductRepository,
	) error {
		current, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("obtener venta: %w", err)
		}
		if current == nil {
			return notFound()
		}
		if !current.IsActive() {
			return domain.NewError(domain.ErrAlreadyVoided, "Venta ya anulada")
		}

		ledger := inventory.NewLedger(stockRepo)
		if err := ledger.LockAll(ctx, itemKeys(current.StoreID, current.Items)); err != nil {
			return err
		}
		for _, it := range current.Items {
			if err := ledger.Increment(ctx, it.ProductID, current.StoreID, it.Quantity); err != nil {
				return err
			}
		}

		now := uc.now()
		current.Status = entity.SaleStatusVoided
		current.VoidedAt = &now
		current.UpdatedAt = now
		if err := saleRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("anular venta: %w", err)
		}
		voided = current
		return nil
	})
	if err != nil {
		return nil, uc.reject("void", err)
	}

	uc.recorder.SaleVoided()
	uc.log.Info().Str("sale_id", voided.ID).Str("store_id", voided.StoreID).Msg("venta anulada")
	return voided, nil
}

// GetByID devuelve una venta activa con sus líneas. Una venta anulada se considera borrada.
func (uc *SaleUseCase) GetByID(ctx context.Context, saleID string) (*entity.Sale, error) {
	if strings.TrimSpace(saleID) == "" {
		return nil, notFound()
	}
	record, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, storeFailure("getById", err)
	}
	if record == nil || !record.IsActive() {
		return nil, notFound()
	}
	return record, nil
}

// List devuelve ventas activas, más recientes primero.
func (uc *SaleUseCase) List(ctx context.Context, in ListSalesInput) (*SalePage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	items, total, err := uc.saleRepo.ListActive(ctx, repository.SaleFilter{
		StoreID: strings.TrimSpace(in.StoreID),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, storeFailure("list", err)
	}
	return &SalePage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// reserveAll verifica (y bloquea) el stock de todas las líneas antes de escribir nada,
// en orden de productId. Las cantidades de un mismo producto repetido en varias líneas se suman.
func reserveAll(ctx context.Context, ledger *inventory.Ledger, storeID string, lines []sale.PricedLine) error {
	order, qty := sale.QuantitiesByProduct(lines)
	for _, productID := range order {
		if err := ledger.Reserve(ctx, productID, storeID, qty[productID]); err != nil {
			return err
		}
	}
	return nil
}

// checkSellable exige que cada producto exista, esté ACTIVE y no esté borrado.
func checkSellable(ctx context.Context, productRepo repository.ProductRepository, lines []sale.PricedLine) error {
	order, _ := sale.QuantitiesByProduct(lines)
	for _, productID := range order {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("obtener producto: %w", err)
		}
		if p == nil || !p.IsActive() {
			return domain.NewError(domain.ErrNotFound, "Producto no encontrado o inactivo: %s", productID)
		}
	}
	return nil
}

func itemKeys(storeID string, items []*entity.SaleItem) []inventory.StockKey {
	keys := make([]inventory.StockKey, 0, len(items))
	for _, it := range items {
		keys = append(keys, inventory.StockKey{ProductID: it.ProductID, StoreID: storeID})
	}
	return keys
}

// writeLines crea cada línea y descuenta su cantidad en la tienda de la venta.
func writeLines(
	ctx context.Context,
	ledger *inventory.Ledger,
	saleRepo repository.SaleRepository,
	record *entity.Sale,
	lines []sale.PricedLine,
) ([]*entity.SaleItem, error) {
	items := make([]*entity.SaleItem, 0, len(lines))
	for i, l := range lines {
		item := &entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    record.ID,
			Position:  i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		}
		if err := saleRepo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("crear línea %d: %w", i+1, err)
		}
		if err := ledger.Decrement(ctx, l.ProductID, record.StoreID, l.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// reread recarga la venta confirmada para devolverla con nombres de producto.
// Si la lectura falla se devuelve el registro escrito en la transacción.
func (uc *SaleUseCase) reread(ctx context.Context, written *entity.Sale) *entity.Sale {
	record, err := uc.saleRepo.GetByID(ctx, written.ID)
	if err != nil || record == nil {
		uc.log.Warn().Err(err).Str("sale_id", written.ID).Msg("no se pudo releer la venta confirmada")
		return written
	}
	return record
}

// reject registra el rechazo y normaliza el error: los errores de dominio pasan tal cual,
// cualquier otro se envuelve como ErrStoreFailure.
func (uc *SaleUseCase) reject(op string, err error) error {
	if !domain.IsDomain(err) {
		err = storeFailure(op, err)
		uc.log.Error().Err(err).Str("op", op).Msg("fallo de almacenamiento")
	} else {
		uc.log.Debug().Err(err).Str("op", op).Msg("venta rechazada")
	}
	uc.recorder.SaleRejected(op, strings.ToLower(domain.Code(err)))
	return err
}

func storeFailure(op string, err error) error {
	if err == nil || domain.IsDomain(err) || errors.Is(err, domain.ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: ventas %s: %w", domain.ErrStoreFailure, op, err)
}

func notFound() error {
	return domain.NewError(domain.ErrNotFound, "Venta no encontrada")
}
