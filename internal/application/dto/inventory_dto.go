package dto

import "time"

// OpenStockRequest body para POST /api/stock (primer abastecimiento de un producto en una tienda).
type OpenStockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// RestockRequest body para POST /api/stock/restock.
type RestockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// StockEntryResponse stock de un producto en una tienda.
type StockEntryResponse struct {
	ProductID string    `json:"product_id"`
	StoreID   string    `json:"store_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}
