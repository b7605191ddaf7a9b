package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// PDFUseCase genera la boleta impresa de una venta activa.
type PDFUseCase struct {
	sales     *SaleUseCase
	storeRepo repository.StoreRepository
	generator SalePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(sales *SaleUseCase, storeRepo repository.StoreRepository, generator SalePDFGenerator) *PDFUseCase {
	return &PDFUseCase{sales: sales, storeRepo: storeRepo, generator: generator}
}

// DownloadSalePDF lee la venta con GetByID (ErrNotFound si no existe o está anulada)
// y devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *PDFUseCase) DownloadSalePDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	record, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}

	store, err := uc.storeRepo.GetByID(ctx, record.StoreID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener tienda: %w", err)
	}
	if store == nil {
		store = &entity.Store{ID: record.StoreID}
	}

	pdfBytes, err = uc.generator.GenerateSalePDF(ctx, record, store)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta-%06d.pdf", record.Number), nil
}
