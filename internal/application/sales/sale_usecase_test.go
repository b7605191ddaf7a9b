package sales_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/domain/sale"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	storeS  = "store-s"
	storeT  = "store-t"
	prodP   = "prod-p"
	prodQ   = "prod-q"
	userU1  = "user-1"
	boleta  = entity.DocumentTypeBoleta
	factura = entity.DocumentTypeFactura
)

type fixture struct {
	st  *memory.Store
	uc  *sales.SaleUseCase
	rec *spyRecorder
}

// newFixture crea un almacén con dos tiendas, dos productos y el stock indicado en la tienda S
// (y la misma cantidad de P en la tienda T).
func newFixture(t *testing.T, stockP, stockQ int) *fixture {
	t.Helper()
	st := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{storeS, storeT} {
		require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: id, Name: "Tienda " + id}))
	}
	for id, name := range map[string]string{prodP: "Coca Cola 500ml", prodQ: "Inca Kola 500ml"} {
		require.NoError(t, st.Products().Create(ctx, &entity.Product{
			ID: id, Name: name, Price: decimal.RequireFromString("3.50"), Status: entity.ProductStatusActive,
		}))
	}
	open := func(p, s string, q int) {
		require.NoError(t, st.Stock().Create(ctx, &entity.StockEntry{ProductID: p, StoreID: s, Quantity: q}))
	}
	open(prodP, storeS, stockP)
	open(prodQ, storeS, stockQ)
	open(prodP, storeT, stockP)

	rec := &spyRecorder{}
	return &fixture{st: st, uc: sales.NewSaleUseCase(st, st.Sales(), rec, zerolog.Nop()), rec: rec}
}

func (f *fixture) stock(t *testing.T, productID, storeID string) int {
	t.Helper()
	e, err := f.st.Stock().Get(context.Background(), productID, storeID)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e.Quantity
}

func line(productID string, qty int, price string) sale.RawLine {
	return sale.RawLine{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func createInput(items ...sale.RawLine) sales.CreateSaleInput {
	return sales.CreateSaleInput{StoreID: storeS, UserID: userU1, DocumentType: boleta, Items: items}
}

func assertTotalsConsistent(t *testing.T, s *entity.Sale) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, s.Subtotal.Equal(s.Total), "subtotal %s != total %s", s.Subtotal, s.Total)
	assert.True(t, s.Total.Equal(sum), "total %s != Σ líneas %s", s.Total, sum)
}

type spyRecorder struct {
	mu       sync.Mutex
	created  int
	updated  int
	voided   int
	rejected map[string]int
}

func (r *spyRecorder) SaleCreated(decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *spyRecorder) SaleUpdated(decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated++
}

func (r *spyRecorder) SaleVoided() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voided++
}

func (r *spyRecorder) SaleRejected(op, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejected == nil {
		r.rejected = map[string]int{}
	}
	r.rejected[op+":"+reason]++
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

// Escenario 1: venta simple descuenta stock y calcula total.
func TestCreate_DescuentaStockYCalculaTotal(t *testing.T) {
	f := newFixture(t, 100, 80)

	s, err := f.uc.Create(context.Background(), createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	assert.Equal(t, "35.00", s.Total.StringFixed(2))
	assert.Equal(t, entity.SaleStatusActive, s.Status)
	assert.Equal(t, int64(1), s.Number)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Coca Cola 500ml", s.Items[0].ProductName)
	assert.Equal(t, 90, f.stock(t, prodP, storeS))
	assertTotalsConsistent(t, s)
	assert.Equal(t, 1, f.rec.created)
}

// Escenario 2: anular repone el stock y deja la venta en VOIDED.
func TestVoid_RepondeStock(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	voided, err := f.uc.Void(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusVoided, voided.Status)
	require.NotNil(t, voided.VoidedAt)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))

	_, err = f.uc.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "una venta anulada no es visible")
}

// Escenario 3: stock insuficiente no modifica nada.
func TestCreate_StockInsuficiente(t *testing.T) {
	f := newFixture(t, 5, 80)

	_, err := f.uc.Create(context.Background(), createInput(line(prodP, 10, "3.5")))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.Code(err))
	assert.Equal(t, "Stock insuficiente para productId "+prodP, domain.Message(err))

	assert.Equal(t, 5, f.stock(t, prodP, storeS))
	page, err := f.uc.List(context.Background(), sales.ListSalesInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "no debe quedar ninguna venta registrada")
	assert.Equal(t, 1, f.rec.rejected["create:insufficient_stock"])
}

// Escenario 4: editar repone las líneas anteriores y descuenta las nuevas.
func TestUpdate_ReemplazaLineas(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)
	require.Equal(t, 90, f.stock(t, prodP, storeS))

	upd, err := f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, 20, "3.5")}})
	require.NoError(t, err)

	assert.Equal(t, 80, f.stock(t, prodP, storeS))
	assert.Equal(t, "70.00", upd.Total.StringFixed(2))
	assert.Equal(t, s.Number, upd.Number)
	assert.Equal(t, boleta, upd.DocumentType)
	require.Len(t, upd.Items, 1)
	assertTotalsConsistent(t, upd)
}

// Escenario 5: dos ventas concurrentes sobre el mismo stock; solo una puede pasar.
func TestCreate_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()

	const workers = 2
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Create(ctx, createInput(line(prodP, 60, "3.5")))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 40, f.stock(t, prodP, storeS))
}

// Muchas ventas concurrentes de una unidad: el stock nunca es negativo y cuadra con las ventas.
func TestCreate_ConcurrenciaStockNuncaNegativo(t *testing.T) {
	f := newFixture(t, 25, 80)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Create(ctx, createInput(line(prodP, 1, "3.5"))); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, succeeded)
	assert.Equal(t, 0, f.stock(t, prodP, storeS))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()

	cases := []struct {
		name string
		in   sales.CreateSaleInput
		kind error
		code string
	}{
		{"sin tienda", sales.CreateSaleInput{UserID: userU1, DocumentType: boleta, Items: []sale.RawLine{line(prodP, 1, "1")}}, domain.ErrInvalidInput, "VALIDATION"},
		{"sin usuario", sales.CreateSaleInput{StoreID: storeS, DocumentType: boleta, Items: []sale.RawLine{line(prodP, 1, "1")}}, domain.ErrInvalidInput, "VALIDATION"},
		{"sin tipo documento", sales.CreateSaleInput{StoreID: storeS, UserID: userU1, Items: []sale.RawLine{line(prodP, 1, "1")}}, domain.ErrInvalidInput, "VALIDATION"},
		{"sin items", createInput(), domain.ErrInvalidInput, "VALIDATION"},
		{"cantidad cero", createInput(line(prodP, 0, "1")), domain.ErrInvalidLine, "INVALID_LINE"},
		{"precio negativo", createInput(line(prodP, 1, "-1")), domain.ErrInvalidLine, "INVALID_LINE"},
		{"producto vacío", createInput(line(" ", 1, "1")), domain.ErrInvalidLine, "INVALID_LINE"},
		{"sin stock configurado", sales.CreateSaleInput{StoreID: storeT, UserID: userU1, DocumentType: boleta, Items: []sale.RawLine{line(prodQ, 1, "1")}}, domain.ErrStockNotConfigured, "STOCK_NOT_CONFIGURED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.in)
			require.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.code, domain.Code(err))
		})
	}
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
	assert.Equal(t, 80, f.stock(t, prodQ, storeS))
}

// Una línea sin stock en medio de la venta aborta todas las demás.
func TestCreate_TodoONada(t *testing.T) {
	f := newFixture(t, 100, 3)

	_, err := f.uc.Create(context.Background(), createInput(
		line(prodP, 10, "3.5"),
		line(prodQ, 4, "3.5"),
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
	assert.Equal(t, 3, f.stock(t, prodQ, storeS))
}

// El mismo producto en varias líneas se verifica por la suma de cantidades.
func TestCreate_ProductoRepetidoSeAgrega(t *testing.T) {
	f := newFixture(t, 10, 80)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, createInput(line(prodP, 6, "3.5"), line(prodP, 6, "3.5")))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, f.stock(t, prodP, storeS))

	s, err := f.uc.Create(ctx, createInput(line(prodP, 4, "3.5"), line(prodP, 6, "3.5")))
	require.NoError(t, err)
	require.Len(t, s.Items, 2)
	assert.Equal(t, 1, s.Items[0].Position)
	assert.Equal(t, 2, s.Items[1].Position)
	assert.Equal(t, 0, f.stock(t, prodP, storeS))
}

func TestCreate_RedondeoDeLineas(t *testing.T) {
	f := newFixture(t, 100, 80)

	s, err := f.uc.Create(context.Background(), createInput(
		line(prodP, 3, "0.333"),
		line(prodQ, 1, "0.1"),
	))
	require.NoError(t, err)
	assert.Equal(t, "1.00", s.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "1.10", s.Total.StringFixed(2))
	assertTotalsConsistent(t, s)
}

// Si la nueva versión de la venta no tiene stock, la edición no deja rastro.
func TestUpdate_AtomicidadAnteStockInsuficiente(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, 500, "3.5")}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 90, f.stock(t, prodP, storeS))
	got, err := f.uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 10, got.Items[0].Quantity)
	assert.Equal(t, "35.00", got.Total.StringFixed(2))
}

// Cambiar de tienda repone en la tienda original y descuenta en la nueva.
func TestUpdate_CambioDeTienda(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	target := storeT
	doc := factura
	upd, err := f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{
		StoreID:      &target,
		DocumentType: &doc,
		Items:        []sale.RawLine{line(prodP, 15, "3.5")},
	})
	require.NoError(t, err)

	assert.Equal(t, storeT, upd.StoreID)
	assert.Equal(t, factura, upd.DocumentType)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
	assert.Equal(t, 85, f.stock(t, prodP, storeT))
}

func TestUpdate_Errores(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, "no-existe", sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, 1, "1")}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, -1, "1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidLine)

	_, err = f.uc.Void(ctx, s.ID)
	require.NoError(t, err)
	_, err = f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, 1, "1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "INVALID_STATE", domain.Code(err))
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
}

// VOIDED es terminal: una segunda anulación falla y no repone dos veces.
func TestVoid_EstadoTerminal(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	_, err = f.uc.Void(ctx, s.ID)
	require.NoError(t, err)
	_, err = f.uc.Void(ctx, s.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyVoided)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "ALREADY_VOIDED", domain.Code(err))
	assert.Equal(t, 100, f.stock(t, prodP, storeS))

	_, err = f.uc.Void(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Anulaciones concurrentes de la misma venta reponen el stock una sola vez.
func TestVoid_ConcurrenteRepondeUnaVez(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Void(ctx, s.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
	assert.Equal(t, 1, f.rec.voided)
}

func TestList_ExcluyeAnuladasYPagina(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		s, err := f.uc.Create(ctx, createInput(line(prodP, 1, "3.5")))
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	_, err := f.uc.Void(ctx, ids[0])
	require.NoError(t, err)

	page, err := f.uc.List(ctx, sales.ListSalesInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, sales.DefaultListLimit, page.Limit)
	require.Len(t, page.Items, 2)
	for _, s := range page.Items {
		assert.NotEqual(t, ids[0], s.ID)
		assert.Equal(t, entity.SaleStatusActive, s.Status)
	}
	assert.Greater(t, page.Items[0].Number, page.Items[1].Number, "más recientes primero")

	page, err = f.uc.List(ctx, sales.ListSalesInput{Limit: 1000, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, sales.MaxListLimit, page.Limit)
	assert.Len(t, page.Items, 1)

	page, err = f.uc.List(ctx, sales.ListSalesInput{StoreID: storeT})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos del almacén
// ──────────────────────────────────────────────────────────────────────────────

var errDisk = errors.New("disk full")

// failingRunner envuelve la unidad de trabajo en memoria y hace fallar CreateItem a partir de la línea failAt.
type failingRunner struct {
	st     *memory.Store
	failAt int
}

func (r *failingRunner) RunSales(ctx context.Context, fn func(repository.StockRepository, repository.SaleRepository, repository.ProductRepository) error) error {
	return r.st.RunSales(ctx, func(stockRepo repository.StockRepository, saleRepo repository.SaleRepository, productRepo repository.ProductRepository) error {
		return fn(stockRepo, &failingSaleRepo{SaleRepository: saleRepo, failAt: r.failAt}, productRepo)
	})
}

type failingSaleRepo struct {
	repository.SaleRepository
	failAt int
	calls  int
}

func (r *failingSaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	r.calls++
	if r.calls >= r.failAt {
		return errDisk
	}
	return r.SaleRepository.CreateItem(ctx, item)
}

func TestCreate_FalloDeAlmacenHaceRollback(t *testing.T) {
	f := newFixture(t, 100, 80)
	uc := sales.NewSaleUseCase(&failingRunner{st: f.st, failAt: 2}, f.st.Sales(), nil, zerolog.Nop())

	_, err := uc.Create(context.Background(), createInput(line(prodP, 10, "3.5"), line(prodQ, 5, "3.5")))
	require.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, "STORE_FAILURE", domain.Code(err))
	assert.False(t, domain.IsDomain(err))

	assert.Equal(t, 100, f.stock(t, prodP, storeS), "el descuento de la primera línea debe revertirse")
	assert.Equal(t, 80, f.stock(t, prodQ, storeS))
	page, err := f.uc.List(context.Background(), sales.ListSalesInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestUpdate_FalloDeAlmacenConservaVentaOriginal(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodP, 10, "3.5")))
	require.NoError(t, err)

	uc := sales.NewSaleUseCase(&failingRunner{st: f.st, failAt: 1}, f.st.Sales(), nil, zerolog.Nop())
	_, err = uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodQ, 2, "3.5")}})
	require.ErrorIs(t, err, domain.ErrStoreFailure)

	assert.Equal(t, 90, f.stock(t, prodP, storeS))
	assert.Equal(t, 80, f.stock(t, prodQ, storeS))
	got, err := f.uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, prodP, got.Items[0].ProductID)
}

func TestCreate_ContextoCancelado(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Create(ctx, createInput(line(prodP, 1, "3.5")))
	require.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos no vendibles
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) changeProduct(t *testing.T, id string, change func(p *entity.Product)) {
	t.Helper()
	ctx := context.Background()
	p, err := f.st.Products().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	change(p)
	require.NoError(t, f.st.Products().Update(ctx, p))
}

func TestCreate_ProductoNoVendible(t *testing.T) {
	cases := map[string]func(p *entity.Product){
		"inactivo": func(p *entity.Product) { p.Status = entity.ProductStatusInactive },
		"borrado": func(p *entity.Product) {
			now := time.Now()
			p.DeletedAt = &now
		},
	}
	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 100, 80)
			f.changeProduct(t, prodQ, change)

			_, err := f.uc.Create(context.Background(), createInput(line(prodP, 1, "3.5"), line(prodQ, 1, "3.5")))
			require.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, "Producto no encontrado o inactivo: "+prodQ, domain.Message(err))
			assert.Equal(t, 100, f.stock(t, prodP, storeS))
			assert.Equal(t, 80, f.stock(t, prodQ, storeS))
		})
	}
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t, 100, 80)
	_, err := f.uc.Create(context.Background(), createInput(line("prod-x", 1, "3.5")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una venta ya registrada con un producto luego desactivado puede anularse,
// pero no puede editarse para volver a vender ese producto.
func TestUpdateYVoid_ProductoDesactivadoDespuesDeVender(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodQ, 5, "3.5")))
	require.NoError(t, err)
	f.changeProduct(t, prodQ, func(p *entity.Product) { p.Status = entity.ProductStatusInactive })

	_, err = f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodQ, 6, "3.5")}})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 75, f.stock(t, prodQ, storeS))

	upd, err := f.uc.Update(ctx, s.ID, sales.UpdateSaleInput{Items: []sale.RawLine{line(prodP, 1, "3.5")}})
	require.NoError(t, err)
	assert.Equal(t, 80, f.stock(t, prodQ, storeS), "las líneas viejas se reponen aunque el producto esté inactivo")

	_, err = f.uc.Void(ctx, upd.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de bloqueo del stock
// ──────────────────────────────────────────────────────────────────────────────

// tracingRunner anota cada operación sobre filas de stock en el orden en que ocurre.
type tracingRunner struct {
	st  *memory.Store
	ops []string
}

func (r *tracingRunner) RunSales(ctx context.Context, fn func(repository.StockRepository, repository.SaleRepository, repository.ProductRepository) error) error {
	return r.st.RunSales(ctx, func(stockRepo repository.StockRepository, saleRepo repository.SaleRepository, productRepo repository.ProductRepository) error {
		return fn(&tracingStockRepo{StockRepository: stockRepo, r: r}, saleRepo, productRepo)
	})
}

type tracingStockRepo struct {
	repository.StockRepository
	r *tracingRunner
}

func (s *tracingStockRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockEntry, error) {
	s.r.ops = append(s.r.ops, fmt.Sprintf("lock %s@%s", productID, storeID))
	return s.StockRepository.GetForUpdate(ctx, productID, storeID)
}

func (s *tracingStockRepo) Increment(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	s.r.ops = append(s.r.ops, fmt.Sprintf("inc %s@%s", productID, storeID))
	return s.StockRepository.Increment(ctx, productID, storeID, amount)
}

func (s *tracingStockRepo) Decrement(ctx context.Context, productID, storeID string, amount int) (bool, error) {
	s.r.ops = append(s.r.ops, fmt.Sprintf("dec %s@%s", productID, storeID))
	return s.StockRepository.Decrement(ctx, productID, storeID, amount)
}

func TestCreate_BloqueaEnOrdenDeProducto(t *testing.T) {
	f := newFixture(t, 100, 80)
	runner := &tracingRunner{st: f.st}
	uc := sales.NewSaleUseCase(runner, f.st.Sales(), nil, zerolog.Nop())

	_, err := uc.Create(context.Background(), createInput(line(prodQ, 1, "3.5"), line(prodP, 1, "3.5")))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock prod-p@store-s", "lock prod-q@store-s",
		"dec prod-q@store-s", "dec prod-p@store-s",
	}, runner.ops)
}

func TestUpdate_BloqueaViejasYNuevasAntesDeReponer(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodQ, 2, "3.5"), line(prodP, 1, "3.5")))
	require.NoError(t, err)

	runner := &tracingRunner{st: f.st}
	uc := sales.NewSaleUseCase(runner, f.st.Sales(), nil, zerolog.Nop())
	target := storeT
	_, err = uc.Update(ctx, s.ID, sales.UpdateSaleInput{StoreID: &target, Items: []sale.RawLine{line(prodP, 3, "3.5")}})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(runner.ops), 3)
	assert.Equal(t, []string{
		"lock prod-p@store-s", "lock prod-p@store-t", "lock prod-q@store-s",
	}, runner.ops[:3], "todas las filas se bloquean ordenadas antes de cualquier cambio")
	assert.Equal(t, 100, f.stock(t, prodP, storeS))
	assert.Equal(t, 80, f.stock(t, prodQ, storeS))
	assert.Equal(t, 97, f.stock(t, prodP, storeT))
}

func TestVoid_BloqueaAntesDeReponer(t *testing.T) {
	f := newFixture(t, 100, 80)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, createInput(line(prodQ, 2, "3.5"), line(prodP, 1, "3.5")))
	require.NoError(t, err)

	runner := &tracingRunner{st: f.st}
	uc := sales.NewSaleUseCase(runner, f.st.Sales(), nil, zerolog.Nop())
	_, err = uc.Void(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock prod-p@store-s", "lock prod-q@store-s",
		"inc prod-q@store-s", "inc prod-p@store-s",
	}, runner.ops)
}
