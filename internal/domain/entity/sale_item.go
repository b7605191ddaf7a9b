package entity

import "github.com/shopspring/decimal"

// SaleItem representa una línea de una venta. Pertenece exclusivamente a su Sale.
type SaleItem struct {
	ID          string
	SaleID      string
	Position    int // orden de la línea dentro de la venta (desde 1)
	ProductID   string
	ProductName string // solo lectura: se completa al consultar la venta
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal // Round(Quantity * UnitPrice, 2)
}
