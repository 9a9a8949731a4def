// Package draft contiene las reglas puras del borrador de factura: totales derivados,
// borrador por defecto, edición de líneas y coerción de la entrada del usuario.
package draft

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals deriva los cinco totales del borrador (servicio de dominio, sin efectos).
//
//	Subtotal       = Σ Quantity × Rate
//	TaxValue       = Subtotal × TaxPercent / 100   (modo percent)
//	               = TaxAmount                     (modo amount)
//	DiscountAmount = Subtotal × DiscountPercent / 100
//	Total          = Subtotal + TaxValue + ShippingFee − DiscountAmount
//	BalanceDue     = Total − AmountPaid            (puede ser negativo)
//
// Impuesto y descuento se calculan solo sobre el subtotal, nunca sobre el envío.
// No se redondea: el redondeo a dos decimales es solo de presentación.
func ComputeTotals(d entity.InvoiceDraft) entity.Totals {
	subtotal := decimal.Zero
	for _, it := range d.Items {
		subtotal = subtotal.Add(it.Amount())
	}

	var tax decimal.Decimal
	if d.TaxMode == entity.TaxModeAmount {
		tax = d.TaxAmount
	} else {
		tax = subtotal.Mul(d.TaxPercent).Div(hundred)
	}

	discount := subtotal.Mul(d.DiscountPercent).Div(hundred)
	total := subtotal.Add(tax).Add(d.ShippingFee).Sub(discount)

	return entity.Totals{
		Subtotal:       subtotal,
		TaxValue:       tax,
		DiscountAmount: discount,
		Total:          total,
		BalanceDue:     total.Sub(d.AmountPaid),
	}
}
