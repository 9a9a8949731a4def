package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/money"
)

// DraftResponse borrador con sus totales para GET /api/draft.
type DraftResponse struct {
	InvoiceNumber string             `json:"invoiceNumber"`
	Date          string             `json:"date"`
	DueDate       string             `json:"dueDate"`
	PaymentTerms  string             `json:"paymentTerms"`
	PONumber      string             `json:"poNumber"`
	FromName      string             `json:"fromName"`
	FromAddress   string             `json:"fromAddress"`
	ToName        string             `json:"toName"`
	ToAddress     string             `json:"toAddress"`
	Items         []LineItemResponse `json:"items"`
	Notes         string             `json:"notes"`
	Terms         string             `json:"terms"`
	TaxType       string             `json:"taxType"`
	TaxPercent    decimal.Decimal    `json:"taxPercent"`
	TaxAmount     decimal.Decimal    `json:"taxAmount"`
	Discount      decimal.Decimal    `json:"discount"`
	ShippingFee   decimal.Decimal    `json:"shippingFee"`
	AmountPaid    decimal.Decimal    `json:"amountPaid"`
	Currency      string             `json:"currency"`
	HasLogo       bool               `json:"hasLogo"`
	LogoMediaType string             `json:"logoMediaType,omitempty"`
	Totals        TotalsResponse     `json:"totals"`
}

// LineItemResponse línea del borrador con su importe.
type LineItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// TotalsResponse totales exactos y su presentación ("INR 1,234.50").
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxValue       decimal.Decimal `json:"taxValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
	Display        TotalsFormatted `json:"display"`
}

// TotalsFormatted totales redondeados a dos decimales con la moneda del borrador.
type TotalsFormatted struct {
	Subtotal       string `json:"subtotal"`
	TaxValue       string `json:"taxValue"`
	DiscountAmount string `json:"discountAmount"`
	Total          string `json:"total"`
	BalanceDue     string `json:"balanceDue"`
}

// SetFieldRequest body para PUT /api/draft/fields/:field.
// Value acepta texto o número JSON; en campos numéricos lo no numérico cuenta como 0.
type SetFieldRequest struct {
	Value Scalar `json:"value"`
}

// UpdateLineItemRequest body para PATCH /api/draft/items/:id. Solo se aplican los campos presentes.
type UpdateLineItemRequest struct {
	Description *Scalar `json:"description,omitempty"`
	Qty         *Scalar `json:"qty,omitempty"`
	Rate        *Scalar `json:"rate,omitempty"`
}

// SetLogoRequest body JSON para PUT /api/draft/logo.
type SetLogoRequest struct {
	DataURI string `json:"dataUri"`
}

// NewDraftResponse arma la respuesta a partir del borrador y sus totales.
func NewDraftResponse(d entity.InvoiceDraft, t entity.Totals) DraftResponse {
	out := DraftResponse{
		InvoiceNumber: d.InvoiceNumber,
		Date:          d.IssueDate,
		DueDate:       d.DueDate,
		PaymentTerms:  d.PaymentTerms,
		PONumber:      d.PONumber,
		FromName:      d.FromName,
		FromAddress:   d.FromAddress,
		ToName:        d.ToName,
		ToAddress:     d.ToAddress,
		Items:         make([]LineItemResponse, 0, len(d.Items)),
		Notes:         d.Notes,
		Terms:         d.Terms,
		TaxType:       string(d.TaxMode),
		TaxPercent:    d.TaxPercent,
		TaxAmount:     d.TaxAmount,
		Discount:      d.DiscountPercent,
		ShippingFee:   d.ShippingFee,
		AmountPaid:    d.AmountPaid,
		Currency:      d.Currency,
		HasLogo:       d.Logo != nil,
		Totals: TotalsResponse{
			Subtotal:       t.Subtotal,
			TaxValue:       t.TaxValue,
			DiscountAmount: t.DiscountAmount,
			Total:          t.Total,
			BalanceDue:     t.BalanceDue,
			Display: TotalsFormatted{
				Subtotal:       money.Format(t.Subtotal, d.Currency),
				TaxValue:       money.Format(t.TaxValue, d.Currency),
				DiscountAmount: money.Format(t.DiscountAmount, d.Currency),
				Total:          money.Format(t.Total, d.Currency),
				BalanceDue:     money.Format(t.BalanceDue, d.Currency),
			},
		},
	}
	if d.Logo != nil {
		out.LogoMediaType = d.Logo.MediaType
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, LineItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Qty:         it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount(),
		})
	}
	return out
}
