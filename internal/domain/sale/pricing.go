// Package sale contiene los servicios de dominio puros de una venta:
// cálculo de líneas y totales, y desglose del IGV para documentos impresos.
package sale

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
)

const (
	// MoneyPlaces decimales de todo importe monetario.
	MoneyPlaces = 2
	// PricePlaces decimales admitidos en un precio unitario (columna NUMERIC(14,4)).
	PricePlaces = 4
)

// Tasa fija del IGV (Perú). Los precios de venta la incluyen.
var igvRate = decimal.New(18, -2)

// IGVRate devuelve la tasa del IGV.
func IGVRate() decimal.Decimal { return igvRate }

// RawLine línea tal como llega del llamador.
type RawLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PricedLine línea validada y con su subtotal calculado.
type PricedLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Priced resultado de PriceLines. Total == Subtotal (modelo con impuesto incluido, sin descuentos).
type Priced struct {
	Items    []PricedLine
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// PriceLines valida y valoriza las líneas. No tiene efectos secundarios.
//
//	subtotalLínea = Round(cantidad * precio, 2)
//	subtotal      = Round(Σ subtotalLínea, 2)
//	total         = subtotal
func PriceLines(raw []RawLine) (Priced, error) {
	items := make([]PricedLine, 0, len(raw))
	sum := decimal.Zero
	for i, it := range raw {
		productID := strings.TrimSpace(it.ProductID)
		if productID == "" || it.Quantity <= 0 || !it.UnitPrice.IsPositive() {
			return Priced{}, domain.NewError(domain.ErrInvalidLine,
				"Item inválido en la línea %d (productId, cantidad, precio)", i+1)
		}
		// Un precio con más decimales se guardaría redondeado y el subtotal dejaría de cuadrar.
		if !it.UnitPrice.Equal(it.UnitPrice.Truncate(PricePlaces)) {
			return Priced{}, domain.NewError(domain.ErrInvalidLine,
				"Precio con más de %d decimales en la línea %d", PricePlaces, i+1)
		}
		lineSubtotal := decimal.NewFromInt(int64(it.Quantity)).Mul(it.UnitPrice).Round(MoneyPlaces)
		sum = sum.Add(lineSubtotal)
		items = append(items, PricedLine{
			ProductID: productID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  lineSubtotal,
		})
	}
	subtotal := sum.Round(MoneyPlaces)
	return Priced{Items: items, Subtotal: subtotal, Total: subtotal}, nil
}

// QuantitiesByProduct suma las cantidades por producto (una venta puede repetir un producto en varias líneas).
// order viene ordenado por productId: es el orden en que se bloquean las filas de stock.
func QuantitiesByProduct(lines []PricedLine) (order []string, qty map[string]int) {
	qty = make(map[string]int, len(lines))
	for _, l := range lines {
		if _, seen := qty[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		qty[l.ProductID] += l.Quantity
	}
	sort.Strings(order)
	return order, qty
}

// TaxBreakdown separa un total con IGV incluido en base imponible e IGV.
// base = Round(total / 1.18, 2); igv = total - base.
func TaxBreakdown(total decimal.Decimal) (base, igv decimal.Decimal) {
	base = total.DivRound(decimal.NewFromInt(1).Add(igvRate), MoneyPlaces)
	return base, total.Sub(base)
}
