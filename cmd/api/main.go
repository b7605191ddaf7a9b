package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-api/docs"
	"github.com/jhoicas/ventas-api/internal/application/auth"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ventas-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// storage repositorios y unidad de trabajo del driver elegido (postgres o memory).
type storage struct {
	tx interface {
		sales.TxRunner
		inventory.TxRunner
	}
	products repository.ProductRepository
	stores   repository.StoreRepository
	users    repository.UserRepository
	stock    repository.StockRepository
	sales    repository.SaleRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store_driver", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st storage
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		mem := memory.NewStore()
		st = storage{tx: mem, products: mem.Products(), stores: mem.Stores(), users: mem.Users(), stock: mem.Stock(), sales: mem.Sales()}
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		var pool *pgxpool.Pool
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		st = storage{
			tx:       postgres.NewTxRunner(pool),
			products: postgres.NewProductRepository(pool),
			stores:   postgres.NewStoreRepository(pool),
			users:    postgres.NewUserRepository(pool),
			stock:    postgres.NewStockRepository(pool),
			sales:    postgres.NewSaleRepository(pool),
		}
	}

	// Idempotency-Key en POST /api/sales solo con Redis configurado.
	var idem httpRouter.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idem = cache.NewRedisIdempotencyStore(client, cache.DefaultIdempotencyTTL)
	}

	salesMetrics := metrics.NewSalesMetrics()

	saleUC := sales.NewSaleUseCase(st.tx, st.sales, salesMetrics, log.Zerolog())
	pdfGenerator := infrapdf.NewMarotoSalePDFGenerator(infrapdf.Company{
		Name:    cfg.Company.Name,
		RUC:     cfg.Company.RUC,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	})
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	if _, err := os.Stat(docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: docs.SwaggerFile,
			Path:     "docs",
			Title:    "Ventas API",
		}))
	} else {
		log.Warn().Str("file", docs.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(salesMetrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(st.users),
		ProductUC:   usecase.NewProductUseCase(st.products),
		StoreUC:     usecase.NewStoreUseCase(st.stores),
		StockUC:     inventory.NewStockUseCase(st.tx, st.stock, st.products, st.stores, log.Zerolog()),
		SaleUC:      saleUC,
		SalePDF:     sales.NewPDFUseCase(saleUC, st.stores, pdfGenerator),
		Idempotency: idem,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("idempotency"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
