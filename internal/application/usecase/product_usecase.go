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

// Límites del listado de catálogo.
const (
	DefaultProductLimit = 50
	MaxProductLimit     = 100
)

// ProductUseCase casos de uso del catálogo. El stock se maneja por tienda en inventory.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto ACTIVE.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "nombre requerido")
	}
	if !in.Price.IsPositive() {
		return nil, domain.NewError(domain.ErrInvalidInput, "precio inválido")
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     in.Price,
		Status:    entity.ProductStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre y/o precio. El precio de las ventas ya registradas no cambia.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrInvalidInput, "nombre requerido")
		}
		product.Name = name
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, domain.NewError(domain.ErrInvalidInput, "precio inválido")
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("actualizar producto: %w", err)
	}
	return toProductResponse(product), nil
}

// Deactivate pasa el producto a INACTIVE: deja de listarse y de poder abrirse stock.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status != entity.ProductStatusInactive {
		product.Status = entity.ProductStatusInactive
		product.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, product); err != nil {
			return nil, fmt.Errorf("desactivar producto: %w", err)
		}
	}
	return toProductResponse(product), nil
}

// List lista productos activos con búsqueda por nombre y stock de la tienda indicada.
func (uc *ProductUseCase) List(ctx context.Context, q, storeID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Clamp(DefaultProductLimit, MaxProductLimit)
	list, err := uc.repo.ListActive(ctx, repository.ProductFilter{
		Query:   strings.TrimSpace(q),
		StoreID: storeID,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	items := make([]dto.ProductListItem, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ProductListItem{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock})
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil || product.DeletedAt != nil {
		return nil, domain.NewError(domain.ErrNotFound, "Producto no encontrado")
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
