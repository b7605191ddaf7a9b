package entity

import "time"

// StockEntry representa la cantidad disponible de un producto en una tienda.
// El par (ProductID, StoreID) es único; Quantity nunca es negativa.
type StockEntry struct {
	ProductID string
	StoreID   string
	Quantity  int
	UpdatedAt time.Time
}
