package draft_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/storage"
)

// pngBytes cabecera PNG mínima; alcanza para que se detecte como image/png.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// countingStore cuenta las escrituras sobre un MemoryStore.
type countingStore struct {
	*storage.MemoryStore
	mu   sync.Mutex
	sets int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore()}
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *countingStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// sampleDraft borrador con todos los campos completos.
func sampleDraft() entity.InvoiceDraft {
	return entity.InvoiceDraft{
		InvoiceNumber: "INV-001",
		IssueDate:     "2024-03-01",
		DueDate:       "2024-03-31",
		PaymentTerms:  "Net 30",
		PONumber:      "PO-77",
		FromName:      "Acme Studio",
		FromAddress:   "12 MG Road\nBengaluru",
		ToName:        "Globex",
		ToAddress:     "1 Infinite Loop",
		Items: []entity.LineItem{
			{ID: "a", Description: "Diseño", Quantity: dec("2"), Rate: dec("100")},
			{ID: "b", Description: "Hosting", Quantity: dec("1"), Rate: dec("50")},
		},
		Notes:           "Gracias",
		Terms:           "Pago por transferencia",
		TaxMode:         entity.TaxModePercent,
		TaxPercent:      dec("10"),
		TaxAmount:       dec("0"),
		DiscountPercent: dec("5"),
		ShippingFee:     dec("20"),
		AmountPaid:      dec("30"),
		Currency:        "USD",
	}
}

// assertSameDraft compara campo por campo (los decimales por valor).
func assertSameDraft(t *testing.T, want, got entity.InvoiceDraft) {
	t.Helper()
	assert.Equal(t, want.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, want.IssueDate, got.IssueDate)
	assert.Equal(t, want.DueDate, got.DueDate)
	assert.Equal(t, want.PaymentTerms, got.PaymentTerms)
	assert.Equal(t, want.PONumber, got.PONumber)
	assert.Equal(t, want.FromName, got.FromName)
	assert.Equal(t, want.FromAddress, got.FromAddress)
	assert.Equal(t, want.ToName, got.ToName)
	assert.Equal(t, want.ToAddress, got.ToAddress)
	assert.Equal(t, want.Notes, got.Notes)
	assert.Equal(t, want.Terms, got.Terms)
	assert.Equal(t, want.TaxMode, got.TaxMode)
	assert.Equal(t, want.Currency, got.Currency)
	assertDec(t, want.TaxPercent, got.TaxPercent, "taxPercent")
	assertDec(t, want.TaxAmount, got.TaxAmount, "taxAmount")
	assertDec(t, want.DiscountPercent, got.DiscountPercent, "discount")
	assertDec(t, want.ShippingFee, got.ShippingFee, "shippingFee")
	assertDec(t, want.AmountPaid, got.AmountPaid, "amountPaid")

	if assert.Len(t, got.Items, len(want.Items)) {
		for i := range want.Items {
			assert.Equal(t, want.Items[i].ID, got.Items[i].ID)
			assert.Equal(t, want.Items[i].Description, got.Items[i].Description)
			assertDec(t, want.Items[i].Quantity, got.Items[i].Quantity, "qty")
			assertDec(t, want.Items[i].Rate, got.Items[i].Rate, "rate")
		}
	}

	if want.Logo == nil {
		assert.Nil(t, got.Logo)
		return
	}
	if assert.NotNil(t, got.Logo) {
		assert.Equal(t, want.Logo.MediaType, got.Logo.MediaType)
		assert.Equal(t, want.Logo.Data, got.Logo.Data)
	}
}

func assertDec(t *testing.T, want, got decimal.Decimal, name string) {
	t.Helper()
	assert.True(t, want.Equal(got), "%s: esperado %s, obtenido %s", name, want, got)
}
