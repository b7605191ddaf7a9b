package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta (producto, cantidad, precio unitario).
type SaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales. El usuario se toma del token.
type CreateSaleRequest struct {
	StoreID      string            `json:"store_id" validate:"required"`
	DocumentType string            `json:"document_type" validate:"required,max=30"`
	Items        []SaleItemRequest `json:"items" validate:"required,min=1"`
}

// UpdateSaleRequest body para PUT /api/sales/:id. StoreID y DocumentType son opcionales.
type UpdateSaleRequest struct {
	StoreID      *string           `json:"store_id,omitempty" validate:"omitempty,min=1"`
	DocumentType *string           `json:"document_type,omitempty" validate:"omitempty,min=1,max=30"`
	Items        []SaleItemRequest `json:"items" validate:"required,min=1"`
}

// SaleResponse venta con su detalle.
type SaleResponse struct {
	ID           string             `json:"id"`
	Number       int64              `json:"number"`
	StoreID      string             `json:"store_id"`
	UserID       string             `json:"user_id"`
	DocumentType string             `json:"document_type"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	Total        decimal.Decimal    `json:"total"`
	Status       string             `json:"status"`
	VoidedAt     *time.Time         `json:"voided_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	Items        []SaleItemResponse `json:"items"`
}

// SaleItemResponse línea de detalle en la respuesta.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
