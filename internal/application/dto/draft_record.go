package dto

import "encoding/json"

// PersistedDraftRecord forma del borrador guardado en el almacén local (JSON).
// Las claves coinciden con el registro que guardaba el navegador, para poder leer borradores existentes.
// Los montos se escriben como números JSON con su representación decimal exacta.
type PersistedDraftRecord struct {
	FromName      string              `json:"fromName"`
	FromAddress   string              `json:"fromAddress"`
	ToName        string              `json:"toName"`
	ToAddress     string              `json:"toAddress"`
	InvoiceNumber string              `json:"invoiceNumber"`
	Date          string              `json:"date"`
	PaymentTerms  string              `json:"paymentTerms"`
	DueDate       string              `json:"dueDate"`
	PONumber      string              `json:"poNumber"`
	Items         []PersistedLineItem `json:"items"`
	Notes         string              `json:"notes"`
	Terms         string              `json:"terms"`
	TaxType       string              `json:"taxType"`
	TaxPercent    json.Number         `json:"taxPercent"`
	TaxAmount     json.Number         `json:"taxAmount"`
	Discount      json.Number         `json:"discount"`
	ShippingFee   json.Number         `json:"shippingFee"`
	AmountPaid    json.Number         `json:"amountPaid"`
	Currency      string              `json:"currency"`
	LogoBase64    *string             `json:"logoBase64"` // data URI o null
}

// PersistedLineItem línea dentro del registro persistido.
type PersistedLineItem struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Qty         json.Number `json:"qty"`
	Rate        json.Number `json:"rate"`
}
