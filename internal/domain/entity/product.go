package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Product.
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product representa un producto del catálogo.
// La desactivación es un cambio de Status; DeletedAt marca el borrado lógico.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta (IGV incluido)
	Status    string          // ACTIVE, INACTIVE
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsActive indica si el producto puede venderse.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive && p.DeletedAt == nil
}

// ProductWithStock proyección de listado: producto y su stock en la tienda consultada.
// Stock es nil si el producto no tiene entrada de stock configurada en esa tienda.
type ProductWithStock struct {
	Product
	Stock *int
}
