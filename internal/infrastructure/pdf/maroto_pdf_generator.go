// Package pdf genera el documento compartible del borrador de factura.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Logo (opcional)     │  INVOICE + N° + fechas        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FROM                        │  BILL TO                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Description | Qty | Rate | Amount                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Tax / Discount / Shipping / Total /     │
//	│           Amount Paid / Balance Due                          │
//	│  NOTES (opcional) / TERMS (opcional)                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/money"
)

var _ appdraft.DocumentGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorHeader  = &props.Color{Red: 0, Green: 70, Blue: 127}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa draft.DocumentGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	codec appdraft.LogoCodec
}

// NewMarotoPDFGenerator construye el generador. El codec decodifica el logo del snapshot;
// si es nil el documento sale sin logo.
func NewMarotoPDFGenerator(codec appdraft.LogoCodec) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{codec: codec}
}

// ContentType tipo MIME del documento.
func (g *MarotoPDFGenerator) ContentType() string { return "application/pdf" }

// Extension extensión del archivo.
func (g *MarotoPDFGenerator) Extension() string { return "pdf" }

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(ctx context.Context, s appdraft.ExportSnapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(s), true).
		WithAuthor(s.FromName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(s)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(s)...)

	if strings.TrimSpace(s.Notes) != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(blockRows("Notes", s.Notes)...)
	}
	if strings.TrimSpace(s.Terms) != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(blockRows("Terms", s.Terms)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: logo (izq) y título + número + fechas (der).
func (g *MarotoPDFGenerator) headerRow(s appdraft.ExportSnapshot) core.Row {
	left := col.New(6)
	if img := g.logoComponent(s.Logo); img != nil {
		left.Add(img)
	}

	right := col.New(6).Add(
		text.New("INVOICE", props.Text{
			Style: fontstyle.Bold, Size: 18, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
	)
	top := 10.0
	for _, kv := range [][2]string{
		{"#", s.InvoiceNumber},
		{"Date:", s.IssueDate},
		{"Payment Terms:", s.PaymentTerms},
		{"Due Date:", s.DueDate},
		{"PO Number:", s.PONumber},
	} {
		if kv[1] == "" {
			continue
		}
		right.Add(text.New(kv[0]+" "+kv[1], props.Text{
			Size: 9, Align: align.Right, Top: top, Color: colorGray,
		}))
		top += 4.5
	}

	return row.New(max(top+2, 28)).Add(left, right)
}

// logoComponent decodifica el data URI; formatos no soportados por Maroto se omiten.
func (g *MarotoPDFGenerator) logoComponent(uri string) core.Component {
	if uri == "" || g.codec == nil {
		return nil
	}
	l, err := g.codec.Decode(uri)
	if err != nil {
		return nil
	}
	var ext extension.Type
	switch l.MediaType {
	case "image/png":
		ext = extension.Png
	case "image/jpeg", "image/jpg":
		ext = extension.Jpg
	default:
		return nil
	}
	return image.NewFromBytes(l.Data, ext, props.Rect{Percent: 90, Left: 0, Top: 0})
}

// partiesRow: emisor (From) y receptor (Bill To).
func partiesRow(s appdraft.ExportSnapshot) core.Row {
	from := addressLines(s.FromName, s.FromAddress)
	to := addressLines(s.ToName, s.ToAddress)
	lines := max(len(from), len(to))

	return row.New(8 + float64(lines)*4.5).Add(
		addressCol("From", from),
		addressCol("Bill To", to),
	)
}

func addressCol(title string, lines []string) core.Col {
	c := col.New(6).Add(text.New(title, props.Text{
		Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
	}))
	for i, l := range lines {
		style := fontstyle.Normal
		if i == 0 {
			style = fontstyle.Bold
		}
		c.Add(text.New(l, props.Text{Size: 9, Style: style, Top: 6 + float64(i)*4.5}))
	}
	return c
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 6, align.Left),
		h("Qty", 2, align.Center),
		h("Rate", 2, align.Right),
		h("Amount", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

// tableItemRows: una fila por línea del borrador.
func tableItemRows(s appdraft.ExportSnapshot) []core.Row {
	result := make([]core.Row, 0, len(s.Items))
	for _, it := range s.Items {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				nonEmpty(it.Description, "-"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				money.Quantity(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				money.Format(it.Rate, s.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				money.Format(it.Amount, s.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// TotalLine línea del bloque de totales.
type TotalLine struct {
	Label  string
	Amount decimal.Decimal
	Strong bool
}

// TotalLines arma el bloque de totales: impuesto, descuento, envío y monto pagado
// solo aparecen si son distintos de cero; el descuento va en negativo.
func TotalLines(s appdraft.ExportSnapshot) []TotalLine {
	t := s.Totals
	lines := []TotalLine{{Label: "Subtotal", Amount: t.Subtotal}}
	if !t.TaxValue.IsZero() {
		lines = append(lines, TotalLine{Label: taxLabel(s), Amount: t.TaxValue})
	}
	if !t.DiscountAmount.IsZero() {
		lines = append(lines, TotalLine{
			Label:  fmt.Sprintf("Discount (%s%%)", s.DiscountPercent.String()),
			Amount: t.DiscountAmount.Neg(),
		})
	}
	if !s.ShippingFee.IsZero() {
		lines = append(lines, TotalLine{Label: "Shipping", Amount: s.ShippingFee})
	}
	lines = append(lines, TotalLine{Label: "Total", Amount: t.Total, Strong: true})
	if !s.AmountPaid.IsZero() {
		lines = append(lines, TotalLine{Label: "Amount Paid", Amount: s.AmountPaid})
	}
	lines = append(lines, TotalLine{Label: "Balance Due", Amount: t.BalanceDue, Strong: true})
	return lines
}

func taxLabel(s appdraft.ExportSnapshot) string {
	if s.TaxMode == entity.TaxModePercent {
		return fmt.Sprintf("Tax (%s%%)", s.TaxPercent.String())
	}
	return "Tax"
}

// totalsRows: bloque de totales alineado a la derecha.
func totalsRows(s appdraft.ExportSnapshot) []core.Row {
	lines := TotalLines(s)
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		p := props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1}
		if l.Strong {
			p.Style = fontstyle.Bold
			p.Size = 10
			p.Color = colorPrimary
		}
		rows = append(rows, row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(l.Label+":", p)),
			col.New(3).Add(text.New(money.Format(l.Amount, s.Currency), p)),
		))
	}
	return rows
}

// blockRows: título y texto libre (notas, términos), una fila por línea.
func blockRows(title, body string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, l := range strings.Split(strings.TrimSpace(body), "\n") {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(l, props.Text{Size: 8, Color: colorGray, Top: 0.5}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func documentTitle(s appdraft.ExportSnapshot) string {
	if s.InvoiceNumber == "" {
		return "Invoice"
	}
	return "Invoice " + s.InvoiceNumber
}

func addressLines(name, address string) []string {
	var out []string
	if strings.TrimSpace(name) != "" {
		out = append(out, strings.TrimSpace(name))
	}
	for _, l := range strings.Split(address, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		out = append(out, "-")
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
