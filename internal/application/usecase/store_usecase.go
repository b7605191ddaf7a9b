package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// StoreUseCase casos de uso de tiendas.
type StoreUseCase struct {
	repo repository.StoreRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo}
}

// Create crea una nueva tienda.
func (uc *StoreUseCase) Create(ctx context.Context, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "nombre requerido")
	}
	now := time.Now()
	store := &entity.Store{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("crear tienda: %w", err)
	}
	return toStoreResponse(store), nil
}

// List devuelve todas las tiendas ordenadas por nombre.
func (uc *StoreUseCase) List(ctx context.Context) ([]dto.StoreResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tiendas: %w", err)
	}
	out := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toStoreResponse(s))
	}
	return out, nil
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}
