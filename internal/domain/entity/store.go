package entity

import "time"

// Store representa una tienda o punto de venta con stock propio.
type Store struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
