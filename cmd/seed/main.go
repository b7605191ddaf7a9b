// seed aplica las migraciones y carga datos de demostración: una tienda, un usuario
// ADMIN y dos productos con stock. Si admin@demo.com ya existe no hace nada.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

const (
	adminEmail    = "admin@demo.com"
	adminPassword = "123456"
)

var demoProducts = []struct {
	name  string
	price string
	stock int
}{
	{"Coca Cola 500ml", "3.50", 100},
	{"Inca Kola 500ml", "3.50", 80},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}

	if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	existing, err := users.FindByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar admin")
	}
	if existing != nil {
		log.Info().Str("email", adminEmail).Msg("datos de demo ya cargados")
		return
	}

	// Todo en una transacción: o se carga el set completo o nada.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("iniciar transacción")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	store := &entity.Store{ID: uuid.NewString(), Name: "Tienda Central", Address: "Av. Principal 123", CreatedAt: now, UpdatedAt: now}
	if err := postgres.NewStoreRepository(tx).Create(ctx, store); err != nil {
		log.Fatal().Err(err).Msg("crear tienda")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de password")
	}
	if err := postgres.NewUserRepository(tx).Create(ctx, &entity.User{
		ID: uuid.NewString(), Name: "Administrador", Email: adminEmail, PasswordHash: string(hash),
		Role: entity.RoleAdmin, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		log.Fatal().Err(err).Msg("crear admin")
	}

	products := postgres.NewProductRepository(tx)
	stock := postgres.NewStockRepository(tx)
	for _, p := range demoProducts {
		prod := &entity.Product{
			ID: uuid.NewString(), Name: p.name, Price: decimal.RequireFromString(p.price),
			Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
		}
		if err := products.Create(ctx, prod); err != nil {
			log.Fatal().Err(err).Str("product", p.name).Msg("crear producto")
		}
		if err := stock.Create(ctx, &entity.StockEntry{ProductID: prod.ID, StoreID: store.ID, Quantity: p.stock, UpdatedAt: now}); err != nil {
			log.Fatal().Err(err).Str("product", p.name).Msg("abrir stock")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit")
	}
	log.Info().
		Str("store_id", store.ID).
		Str("email", adminEmail).
		Int("products", len(demoProducts)).
		Msg("datos de demo cargados")
}
