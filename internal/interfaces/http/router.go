package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/auth"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	StoreUC     *usecase.StoreUseCase
	StockUC     *inventory.StockUseCase
	SaleUC      *sales.SaleUseCase
	SalePDF     *sales.PDFUseCase
	Idempotency IdempotencyStore // nil = sin idempotencia
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := NewRequestValidator()
	api := app.Group("/api")

	adminOnly := RequireRole(entity.RoleAdmin)
	cashier := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	authRequired := AuthMiddleware(deps.JWTSecret)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, validate)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", authRequired, authHandler.Me)
	api.Post("/users", authRequired, adminOnly, authHandler.CreateUser)

	// Products
	products := api.Group("/products", authRequired)
	productHandler := NewProductHandler(deps.ProductUC, validate)
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Post("/:id/deactivate", adminOnly, productHandler.Deactivate)

	// Stores
	stores := api.Group("/stores", authRequired)
	storeHandler := NewStoreHandler(deps.StoreUC, validate)
	stores.Get("/", storeHandler.List)
	stores.Post("/", adminOnly, storeHandler.Create)

	// Stock por tienda
	stock := api.Group("/stock", authRequired)
	stockHandler := NewStockHandler(deps.StockUC, validate)
	stock.Post("/", adminOnly, stockHandler.Open)
	stock.Post("/restock", adminOnly, stockHandler.Restock)
	stock.Get("/:store_id", stockHandler.ListByStore)
	stock.Get("/:store_id/low", stockHandler.LowStock)

	// Sales
	salesGroup := api.Group("/sales", authRequired)
	saleHandler := NewSaleHandler(deps.SaleUC, deps.SalePDF, validate)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Post("/", cashier, Idempotency(deps.Idempotency, deps.Log), saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", cashier, saleHandler.Update)
	salesGroup.Post("/:id/anular", adminOnly, saleHandler.Void)
	salesGroup.Get("/:id/pdf", saleHandler.PDF)
}
