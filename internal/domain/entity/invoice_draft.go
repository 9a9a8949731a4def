package entity

import "github.com/shopspring/decimal"

// TaxMode indica cómo se calcula el impuesto del borrador.
type TaxMode string

// Modos de impuesto. Los valores coinciden con los del registro persistido.
const (
	TaxModePercent TaxMode = "percent" // porcentaje sobre el subtotal
	TaxModeAmount  TaxMode = "amount"  // monto fijo
)

// DefaultCurrency moneda de un borrador recién creado o limpiado.
const DefaultCurrency = "INR"

// LineItem representa una línea del borrador (descripción, cantidad, tarifa).
type LineItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Amount devuelve Quantity × Rate sin redondeo.
func (it LineItem) Amount() decimal.Decimal {
	return it.Quantity.Mul(it.Rate)
}

// Logo imagen binaria del emisor. Solo vive en memoria; al persistirse se codifica como texto.
type Logo struct {
	MediaType string // ej. image/png
	Data      []byte
}

// InvoiceDraft es el registro completo que el usuario edita antes de exportar.
// Los totales no se guardan aquí: ver draft.ComputeTotals.
type InvoiceDraft struct {
	InvoiceNumber string
	IssueDate     string // YYYY-MM-DD tal como lo ingresa el usuario
	DueDate       string
	PaymentTerms  string
	PONumber      string

	FromName    string
	FromAddress string
	ToName      string
	ToAddress   string

	Items []LineItem

	Notes string
	Terms string

	TaxMode         TaxMode
	TaxPercent      decimal.Decimal
	TaxAmount       decimal.Decimal
	DiscountPercent decimal.Decimal
	ShippingFee     decimal.Decimal
	AmountPaid      decimal.Decimal
	Currency        string

	Logo *Logo
}

// Clone devuelve una copia profunda (líneas y logo incluidos) para entregar snapshots
// sin compartir memoria con el borrador en edición.
func (d InvoiceDraft) Clone() InvoiceDraft {
	out := d
	out.Items = make([]LineItem, len(d.Items))
	copy(out.Items, d.Items)
	if d.Logo != nil {
		l := Logo{MediaType: d.Logo.MediaType, Data: make([]byte, len(d.Logo.Data))}
		copy(l.Data, d.Logo.Data)
		out.Logo = &l
	}
	return out
}

// Totals valores derivados del borrador.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxValue       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	BalanceDue     decimal.Decimal
}
