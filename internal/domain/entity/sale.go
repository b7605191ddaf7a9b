package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una venta. VOIDED es terminal.
const (
	SaleStatusActive = "ACTIVE"
	SaleStatusVoided = "VOIDED"
)

// Tipos de documento habituales (el campo acepta cualquier valor no vacío).
const (
	DocumentTypeBoleta  = "BOLETA"
	DocumentTypeFactura = "FACTURA"
)

// Sale representa la cabecera de una venta.
// Invariante: Subtotal == Total == suma de Items[i].Subtotal.
type Sale struct {
	ID           string
	Number       int64 // correlativo legible (N° 000123 en el documento impreso)
	StoreID      string
	UserID       string
	DocumentType string
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	Status       string // ACTIVE, VOIDED
	VoidedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []*SaleItem // orden de inserción = orden de línea
}

// IsActive indica si la venta puede editarse o anularse.
func (s *Sale) IsActive() bool {
	return s.Status == SaleStatusActive
}
