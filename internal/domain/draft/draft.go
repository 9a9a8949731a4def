package draft

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// Campos escalares editables. Los nombres coinciden con las claves del registro persistido.
const (
	FieldInvoiceNumber = "invoiceNumber"
	FieldIssueDate     = "date"
	FieldDueDate       = "dueDate"
	FieldPaymentTerms  = "paymentTerms"
	FieldPONumber      = "poNumber"
	FieldFromName      = "fromName"
	FieldFromAddress   = "fromAddress"
	FieldToName        = "toName"
	FieldToAddress     = "toAddress"
	FieldNotes         = "notes"
	FieldTerms         = "terms"
	FieldTaxType       = "taxType"
	FieldTaxPercent    = "taxPercent"
	FieldTaxAmount     = "taxAmount"
	FieldDiscount      = "discount"
	FieldShippingFee   = "shippingFee"
	FieldAmountPaid    = "amountPaid"
	FieldCurrency      = "currency"
)

// Campos de una línea.
const (
	ItemFieldDescription = "description"
	ItemFieldQuantity    = "qty"
	ItemFieldRate        = "rate"
)

// NewLineItem crea una línea vacía con un identificador nuevo.
func NewLineItem() entity.LineItem {
	return entity.LineItem{
		ID:       uuid.New().String(),
		Quantity: decimal.Zero,
		Rate:     decimal.Zero,
	}
}

// Default devuelve el borrador inicial: una línea vacía, montos en cero, textos vacíos,
// impuesto en porcentaje y la moneda indicada (entity.DefaultCurrency si va vacía).
func Default(currencyCode string) entity.InvoiceDraft {
	if currencyCode == "" {
		currencyCode = entity.DefaultCurrency
	}
	return entity.InvoiceDraft{
		Items:           []entity.LineItem{NewLineItem()},
		TaxMode:         entity.TaxModePercent,
		TaxPercent:      decimal.Zero,
		TaxAmount:       decimal.Zero,
		DiscountPercent: decimal.Zero,
		ShippingFee:     decimal.Zero,
		AmountPaid:      decimal.Zero,
		Currency:        currencyCode,
	}
}

// AddLineItem agrega una línea vacía al final y la devuelve.
func AddLineItem(d *entity.InvoiceDraft) entity.LineItem {
	it := NewLineItem()
	d.Items = append(d.Items, it)
	return it
}

// RemoveLineItem elimina la línea indicada. Nunca deja el borrador sin líneas.
func RemoveLineItem(d *entity.InvoiceDraft, id string) error {
	idx := indexOf(d.Items, id)
	if idx < 0 {
		return domain.ErrNotFound
	}
	if len(d.Items) <= 1 {
		return domain.ErrLastLineItem
	}
	d.Items = append(d.Items[:idx:idx], d.Items[idx+1:]...)
	return nil
}

// UpdateLineItem modifica un campo de una línea. Los campos numéricos se coercionan
// (texto no numérico o negativo → 0).
func UpdateLineItem(d *entity.InvoiceDraft, id, field, raw string) error {
	idx := indexOf(d.Items, id)
	if idx < 0 {
		return domain.ErrNotFound
	}
	it := &d.Items[idx]
	switch field {
	case ItemFieldDescription:
		it.Description = raw
	case ItemFieldQuantity, "quantity":
		it.Quantity = NonNegative(ParseNumber(raw))
	case ItemFieldRate:
		it.Rate = NonNegative(ParseNumber(raw))
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	return nil
}

// SetField asigna un campo escalar a partir del texto ingresado por el usuario.
func SetField(d *entity.InvoiceDraft, field, raw string) error {
	switch field {
	case FieldInvoiceNumber:
		d.InvoiceNumber = raw
	case FieldIssueDate:
		d.IssueDate = raw
	case FieldDueDate:
		d.DueDate = raw
	case FieldPaymentTerms:
		d.PaymentTerms = raw
	case FieldPONumber:
		d.PONumber = raw
	case FieldFromName:
		d.FromName = raw
	case FieldFromAddress:
		d.FromAddress = raw
	case FieldToName:
		d.ToName = raw
	case FieldToAddress:
		d.ToAddress = raw
	case FieldNotes:
		d.Notes = raw
	case FieldTerms:
		d.Terms = raw
	case FieldTaxType:
		mode, ok := ParseTaxMode(raw)
		if !ok {
			return fmt.Errorf("%w: modo de impuesto %q", domain.ErrInvalidInput, raw)
		}
		d.TaxMode = mode
	case FieldTaxPercent:
		d.TaxPercent = ParseNumber(raw)
	case FieldTaxAmount:
		d.TaxAmount = ParseNumber(raw)
	case FieldDiscount:
		d.DiscountPercent = ParseNumber(raw)
	case FieldShippingFee:
		d.ShippingFee = ParseNumber(raw)
	case FieldAmountPaid:
		d.AmountPaid = ParseNumber(raw)
	case FieldCurrency:
		code, err := NormalizeCurrency(raw)
		if err != nil {
			return err
		}
		d.Currency = code
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	return nil
}

// Límites de un número ingresado: hasta 999 billones y diez decimales.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 10
)

// ParseNumber convierte texto en decimal. Vacío, no numérico o fuera de rango → 0 (nunca falla).
func ParseNumber(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	n, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return bounded(n)
}

// bounded descarta magnitudes absurdas ("1e200000") antes de que alguien las expanda a
// texto, y recorta la escala a MaxFractionDigits.
func bounded(n decimal.Decimal) decimal.Decimal {
	if n.IsZero() {
		return decimal.Zero
	}
	exp := int64(n.Exponent())
	intDigits := int64(n.NumDigits()) + exp
	switch {
	case intDigits > MaxIntegerDigits:
		return decimal.Zero
	case intDigits < -MaxFractionDigits:
		// menor que la escala mínima
		return decimal.Zero
	case exp < -MaxFractionDigits:
		return n.Round(MaxFractionDigits)
	}
	return n
}

// NonNegative devuelve 0 para valores negativos.
func NonNegative(n decimal.Decimal) decimal.Decimal {
	if n.IsNegative() {
		return decimal.Zero
	}
	return n
}

// ParseTaxMode acepta "percent", "amount" y el alias "flat".
func ParseTaxMode(raw string) (entity.TaxMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(entity.TaxModePercent), "%":
		return entity.TaxModePercent, true
	case string(entity.TaxModeAmount), "flat":
		return entity.TaxModeAmount, true
	default:
		return "", false
	}
}

// NormalizeCurrency valida un código ISO 4217 y lo devuelve en mayúsculas.
func NormalizeCurrency(raw string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: moneda %q", domain.ErrInvalidInput, raw)
	}
	return unit.String(), nil
}

func indexOf(items []entity.LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
