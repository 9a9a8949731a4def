// Package xmlexport exporta el snapshot del borrador como documento XML, para
// integraciones que no consumen PDF.
package xmlexport

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
)

var _ appdraft.DocumentGenerator = (*Generator)(nil)

// Generator implementa draft.DocumentGenerator con etree.
type Generator struct {
	indent int
}

// NewGenerator construye el generador con sangría de dos espacios.
func NewGenerator() *Generator { return &Generator{indent: 2} }

// ContentType tipo MIME del documento.
func (g *Generator) ContentType() string { return "application/xml" }

// Extension extensión del archivo.
func (g *Generator) Extension() string { return "xml" }

// Generate serializa el snapshot. Los montos van sin redondear; el redondeo es cosa de
// la presentación.
func (g *Generator) Generate(ctx context.Context, s appdraft.ExportSnapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("number", s.InvoiceNumber)
	root.CreateAttr("currency", s.Currency)

	optional(root, "IssueDate", s.IssueDate)
	optional(root, "DueDate", s.DueDate)
	optional(root, "PaymentTerms", s.PaymentTerms)
	optional(root, "PONumber", s.PONumber)

	party(root, "From", s.FromName, s.FromAddress)
	party(root, "BillTo", s.ToName, s.ToAddress)

	items := root.CreateElement("Items")
	for _, it := range s.Items {
		el := items.CreateElement("Item")
		el.CreateAttr("id", it.ID)
		el.CreateElement("Description").SetText(it.Description)
		el.CreateElement("Quantity").SetText(it.Quantity.String())
		el.CreateElement("Rate").SetText(it.Rate.String())
		el.CreateElement("Amount").SetText(it.Amount.String())
	}

	tax := root.CreateElement("Tax")
	tax.CreateAttr("mode", string(s.TaxMode))
	tax.CreateAttr("percent", s.TaxPercent.String())
	tax.CreateAttr("amount", s.TaxAmount.String())

	totals := root.CreateElement("Totals")
	amount(totals, "Subtotal", s.Totals.Subtotal)
	amount(totals, "TaxValue", s.Totals.TaxValue)
	discount := amount(totals, "Discount", s.Totals.DiscountAmount)
	discount.CreateAttr("percent", s.DiscountPercent.String())
	amount(totals, "Shipping", s.ShippingFee)
	amount(totals, "Total", s.Totals.Total)
	amount(totals, "AmountPaid", s.AmountPaid)
	amount(totals, "BalanceDue", s.Totals.BalanceDue)

	optional(root, "Notes", s.Notes)
	optional(root, "Terms", s.Terms)
	optional(root, "Logo", s.Logo)

	doc.Indent(g.indent)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlexport: serializar: %w", err)
	}
	return out, nil
}

func optional(parent *etree.Element, tag, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(tag).SetText(value)
}

func party(parent *etree.Element, tag, name, address string) {
	el := parent.CreateElement(tag)
	el.CreateElement("Name").SetText(name)
	el.CreateElement("Address").SetText(address)
}

func amount(parent *etree.Element, tag string, v decimal.Decimal) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(v.String())
	return el
}
