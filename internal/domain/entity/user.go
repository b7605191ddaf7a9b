package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "ADMIN"
	RoleVendedor = "VENDEDOR"
)

// Estados de User.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User representa un usuario del personal (cajero o administrador).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	Role         string // ADMIN, VENDEDOR
	Status       string // ACTIVE, INACTIVE
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
