package sale_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/sale"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPriceLines_LineaSimple(t *testing.T) {
	priced, err := sale.PriceLines([]sale.RawLine{{ProductID: "P", Quantity: 10, UnitPrice: dec("3.5")}})
	require.NoError(t, err)

	require.Len(t, priced.Items, 1)
	assert.True(t, priced.Items[0].Subtotal.Equal(dec("35.00")))
	assert.True(t, priced.Subtotal.Equal(dec("35.00")))
	assert.True(t, priced.Total.Equal(priced.Subtotal), "total debe ser igual al subtotal")
}

func TestPriceLines_RedondeoPorLineaYAgregado(t *testing.T) {
	// 3 * 0.333 = 0.999 -> 1.00 ; 7 * 1.005 = 7.035 -> 7.04 (half away from zero)
	priced, err := sale.PriceLines([]sale.RawLine{
		{ProductID: "A", Quantity: 3, UnitPrice: dec("0.333")},
		{ProductID: "B", Quantity: 7, UnitPrice: dec("1.005")},
	})
	require.NoError(t, err)

	assert.Equal(t, "1.00", priced.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "7.04", priced.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "8.04", priced.Total.StringFixed(2))

	sum := decimal.Zero
	for _, it := range priced.Items {
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, priced.Total.Equal(sum), "total == suma de subtotales de línea")
}

func TestPriceLines_SinErroresDeComaFlotante(t *testing.T) {
	// 0.1 + 0.2 en binario da 0.30000000000000004; en decimal debe ser exacto.
	priced, err := sale.PriceLines([]sale.RawLine{
		{ProductID: "A", Quantity: 1, UnitPrice: dec("0.1")},
		{ProductID: "B", Quantity: 1, UnitPrice: dec("0.2")},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.3", priced.Total.String())
}

func TestPriceLines_LineasInvalidas(t *testing.T) {
	cases := []struct {
		name string
		line sale.RawLine
	}{
		{"sin producto", sale.RawLine{ProductID: "  ", Quantity: 1, UnitPrice: dec("1")}},
		{"cantidad cero", sale.RawLine{ProductID: "P", Quantity: 0, UnitPrice: dec("1")}},
		{"cantidad negativa", sale.RawLine{ProductID: "P", Quantity: -2, UnitPrice: dec("1")}},
		{"precio cero", sale.RawLine{ProductID: "P", Quantity: 1, UnitPrice: decimal.Zero}},
		{"precio negativo", sale.RawLine{ProductID: "P", Quantity: 1, UnitPrice: dec("-3.5")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sale.PriceLines([]sale.RawLine{{ProductID: "OK", Quantity: 1, UnitPrice: dec("1")}, tc.line})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidLine))
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ErrInvalidLine es un error de validación")
			assert.Equal(t, "INVALID_LINE", domain.Code(err))
			assert.Contains(t, err.Error(), "línea 2")
		})
	}
}

func TestPriceLines_PrecioConMasDeCuatroDecimales(t *testing.T) {
	// 1.00005 se guardaría como 1.0001 y 1000 * 1.0001 = 1000.10 != 1000.05.
	_, err := sale.PriceLines([]sale.RawLine{{ProductID: "A", Quantity: 1000, UnitPrice: dec("1.00005")}})
	require.ErrorIs(t, err, domain.ErrInvalidLine)
	assert.Equal(t, "INVALID_LINE", domain.Code(err))
	assert.Equal(t, "Precio con más de 4 decimales en la línea 1", domain.Message(err))
}

func TestPriceLines_PrecioConCuatroDecimales(t *testing.T) {
	priced, err := sale.PriceLines([]sale.RawLine{
		{ProductID: "A", Quantity: 1000, UnitPrice: dec("1.0001")},
		{ProductID: "B", Quantity: 1, UnitPrice: dec("2.500000")}, // ceros a la derecha no cuentan
	})
	require.NoError(t, err)

	for _, it := range priced.Items {
		stored := it.UnitPrice.Round(sale.PricePlaces)
		assert.True(t, it.Subtotal.Equal(decimal.NewFromInt(int64(it.Quantity)).Mul(stored).Round(sale.MoneyPlaces)),
			"el subtotal debe poder recalcularse desde el precio almacenado")
	}
	assert.Equal(t, "1000.10", priced.Items[0].Subtotal.StringFixed(2))
}

func TestQuantitiesByProduct_OrdenIndependienteDeLasLineas(t *testing.T) {
	a, _ := sale.QuantitiesByProduct([]sale.PricedLine{{ProductID: "aaaa", Quantity: 1}, {ProductID: "bbbb", Quantity: 1}})
	b, _ := sale.QuantitiesByProduct([]sale.PricedLine{{ProductID: "bbbb", Quantity: 1}, {ProductID: "aaaa", Quantity: 1}})
	assert.Equal(t, a, b)
}

func TestQuantitiesByProduct_AgregaRepetidos(t *testing.T) {
	order, qty := sale.QuantitiesByProduct([]sale.PricedLine{
		{ProductID: "B", Quantity: 2},
		{ProductID: "A", Quantity: 1},
		{ProductID: "B", Quantity: 5},
	})
	assert.Equal(t, []string{"A", "B"}, order, "orden estable de bloqueo, sin importar el orden de las líneas")
	assert.Equal(t, 7, qty["B"])
	assert.Equal(t, 1, qty["A"])
}

func TestTaxBreakdown(t *testing.T) {
	base, igv := sale.TaxBreakdown(dec("35.00"))
	assert.Equal(t, "29.66", base.StringFixed(2))
	assert.Equal(t, "5.34", igv.StringFixed(2))
	assert.True(t, base.Add(igv).Equal(dec("35.00")))
	assert.Equal(t, "0.18", sale.IGVRate().String())
}
