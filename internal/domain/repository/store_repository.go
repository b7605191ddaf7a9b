package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store (DIP).
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	List(ctx context.Context) ([]*entity.Store, error)
}
