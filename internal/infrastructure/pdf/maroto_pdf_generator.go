// Package pdf genera la representación impresa de la Boleta de Venta Electrónica.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUC  │  BOLETA DE VENTA + N° + Fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE / DOC. IDENTIDAD / TIENDA                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Total                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Op. gravada / IGV 18% / Importe total              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de representación impresa                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/sale"
)

var _ sales.SalePDFGenerator = (*MarotoSalePDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 41, Blue: 59}
	colorAccent  = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 116, Blue: 139}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorSuccess = &props.Color{Red: 22, Green: 163, Blue: 74}
	colorDanger  = &props.Color{Red: 220, Green: 38, Blue: 38}
)

// Cliente genérico: las boletas no registran datos del comprador.
const (
	genericCustomer    = "CLIENTE GENERAL"
	genericCustomerDoc = "00000000"
)

// Company datos del emisor impresos en la cabecera.
type Company struct {
	Name    string
	RUC     string
	Address string
	Phone   string
	Email   string
}

// MarotoSalePDFGenerator implementa sales.SalePDFGenerator usando Maroto v2.
type MarotoSalePDFGenerator struct {
	company Company
	money   *message.Printer
}

// NewMarotoSalePDFGenerator construye el generador con los datos del emisor.
func NewMarotoSalePDFGenerator(company Company) *MarotoSalePDFGenerator {
	return &MarotoSalePDFGenerator{
		company: company,
		money:   message.NewPrinter(language.English),
	}
}

// GenerateSalePDF genera el PDF y devuelve sus bytes.
func (g *MarotoSalePDFGenerator) GenerateSalePDF(_ context.Context, s *entity.Sale, store *entity.Store) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Boleta de Venta Electrónica", true).
		WithAuthor(g.company.Name, true).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterFooter(footerRow()); err != nil {
		return nil, fmt.Errorf("pdf: registrar footer: %w", err)
	}

	m.AddRows(g.headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(s, store))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(s.Items)...)

	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(s.Total))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + RUC + contacto (izq) y tipo, número, fecha y estado (der).
func (g *MarotoSalePDFGenerator) headerRow(s *entity.Sale) core.Row {
	statusColor := colorSuccess
	if !s.IsActive() {
		statusColor = colorDanger
	}
	return row.New(30).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.company.Name, "MI EMPRESA S.A.C."), props.Text{
				Style: fontstyle.Bold, Size: 15, Color: colorPrimary, Top: 2,
			}),
			text.New("RUC: "+g.company.RUC, props.Text{Size: 9, Top: 11, Color: colorGray}),
			text.New(nonEmpty(g.company.Address, "-"), props.Text{Size: 8, Top: 16, Color: colorGray}),
			text.New(fmt.Sprintf("Tel: %s | %s", nonEmpty(g.company.Phone, "-"), nonEmpty(g.company.Email, "-")),
				props.Text{Size: 8, Top: 21, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("BOLETA DE VENTA ELECTRÓNICA", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorPrimary, Top: 2,
			}),
			text.New(DocumentNumber(s.Number), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: colorAccent, Top: 9,
			}),
			text.New("FECHA EMISIÓN: "+s.CreatedAt.Local().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Center, Top: 17, Color: colorGray,
			}),
			text.New("ESTADO: "+s.Status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 22, Color: statusColor,
			}),
		),
	)
}

// customerRow: cliente genérico, documento y tienda de emisión.
func customerRow(s *entity.Sale, store *entity.Store) core.Row {
	label := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: top})
	}
	value := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Size: 9, Color: colorPrimary, Top: top})
	}
	storeLine := nonEmpty(store.Name, store.ID)
	if store.Address != "" {
		storeLine += " - " + store.Address
	}
	return row.New(20).Add(
		col.New(6).Add(
			label("CLIENTE:", 2), value(genericCustomer, 6),
			label("DOC. IDENTIDAD:", 11), value(genericCustomerDoc, 15),
		),
		col.New(6).Add(
			label("TIENDA:", 2), value(storeLine, 6),
			label("TIPO DOCUMENTO:", 11), value(s.DocumentType, 15),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("CANT", 1, align.Center),
		h("DESCRIPCIÓN", 7, align.Left),
		h("P. UNIT", 2, align.Right),
		h("TOTAL", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por línea de la venta, en su orden.
func (g *MarotoSalePDFGenerator) itemRows(items []*entity.SaleItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := nonEmpty(it.ProductName, "Producto "+it.ProductID)
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(7).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.FormatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.FormatMoney(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// totalsRow: total con IGV incluido desglosado en base e impuesto.
func (g *MarotoSalePDFGenerator) totalsRow(total decimal.Decimal) core.Row {
	base, igv := sale.TaxBreakdown(total)
	label := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 2, Top: top, Color: colorGray}
		if bold {
			p.Style = fontstyle.Bold
			p.Color = colorPrimary
		}
		return text.New(s, p)
	}
	value := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top, Color: colorPrimary}
		if bold {
			p.Style = fontstyle.Bold
			p.Size = 11
		}
		return text.New(s, p)
	}
	return row.New(24).Add(
		col.New(6),
		col.New(3).Add(
			label("OP. GRAVADA", 1, false),
			label("IGV (18%)", 7, false),
			label("IMPORTE TOTAL", 14, true),
		),
		col.New(3).Add(
			value(g.FormatMoney(base), 1, false),
			value(g.FormatMoney(igv), 7, false),
			value(g.FormatMoney(total), 14, true),
		),
	)
}

func footerRow() core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("Representación impresa de la BOLETA DE VENTA ELECTRÓNICA.", props.Text{
			Size: 7, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// DocumentNumber número impreso de la boleta: "N° 000123".
func DocumentNumber(n int64) string {
	return fmt.Sprintf("N° %06d", n)
}

// FormatMoney formatea un importe en soles con separador de miles: S/ 1,234.50.
func (g *MarotoSalePDFGenerator) FormatMoney(amount decimal.Decimal) string {
	amount = amount.Round(sale.MoneyPlaces)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).StringFixed(sale.MoneyPlaces)[1:] // ".50"
	return g.money.Sprintf("S/ %s%d%s", sign, whole.IntPart(), cents)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
