package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una única transacción con los repositorios de stock, ventas y
// productos atados a ella. Si fn devuelve error se hace rollback y no queda ningún efecto.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Recorder recibe los resultados del motor de ventas (métricas).
type Recorder interface {
	SaleCreated(total decimal.Decimal)
	SaleUpdated(total decimal.Decimal)
	SaleVoided()
	SaleRejected(op, reason string)
}

// SalePDFGenerator genera la representación impresa de una venta.
type SalePDFGenerator interface {
	GenerateSalePDF(ctx context.Context, sale *entity.Sale, store *entity.Store) ([]byte, error)
}

type nopRecorder struct{}

func (nopRecorder) SaleCreated(decimal.Decimal) {}
func (nopRecorder) SaleUpdated(decimal.Decimal) {}
func (nopRecorder) SaleVoided() {}
func (nopRecorder) SaleRejected(string, string) {}
