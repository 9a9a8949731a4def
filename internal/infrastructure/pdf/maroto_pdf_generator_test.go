package pdf_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/logo"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/pdf"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 0, G: 70, B: 127, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleSnapshot(t *testing.T, withLogo bool) appdraft.ExportSnapshot {
	t.Helper()
	codec := logo.NewDataURICodec()
	uc := appdraft.NewExportUseCase(codec, nil)
	d := entity.InvoiceDraft{
		InvoiceNumber: "INV-001",
		IssueDate:     "2024-03-01",
		DueDate:       "2024-03-31",
		FromName:      "Acme Studio",
		FromAddress:   "12 MG Road\nBengaluru",
		ToName:        "Globex",
		ToAddress:     "1 Infinite Loop",
		Items: []entity.LineItem{
			{ID: "a", Description: "Diseño", Quantity: dec("2"), Rate: dec("100")},
			{ID: "b", Description: "Hosting", Quantity: dec("1"), Rate: dec("50")},
		},
		Notes:           "Gracias por su compra\nPago a 30 días",
		TaxMode:         entity.TaxModePercent,
		TaxPercent:      dec("10"),
		DiscountPercent: dec("5"),
		ShippingFee:     dec("20"),
		AmountPaid:      dec("30"),
		Currency:        "INR",
	}
	if withLogo {
		d.Logo = &entity.Logo{MediaType: "image/png", Data: tinyPNG(t)}
	}
	return uc.BuildSnapshot(context.Background(), d)
}

func TestMarotoPDFGenerator_Generate(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator(logo.NewDataURICodec())
	assert.Equal(t, "application/pdf", g.ContentType())
	assert.Equal(t, "pdf", g.Extension())

	for _, withLogo := range []bool{false, true} {
		out, err := g.Generate(context.Background(), sampleSnapshot(t, withLogo))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "logo=%v", withLogo)
	}
}

func TestMarotoPDFGenerator_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pdf.NewMarotoPDFGenerator(nil).Generate(ctx, sampleSnapshot(t, false))
	assert.ErrorIs(t, err, context.Canceled)
}

// ── Bloque de totales ─────────────────────────────────────────────────────────

func labels(lines []pdf.TotalLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Label)
	}
	return out
}

func TestTotalLines_Completo(t *testing.T) {
	lines := pdf.TotalLines(sampleSnapshot(t, false))

	assert.Equal(t, []string{
		"Subtotal", "Tax (10%)", "Discount (5%)", "Shipping", "Total", "Amount Paid", "Balance Due",
	}, labels(lines))
	assert.True(t, lines[2].Amount.Equal(dec("-12.5")), "el descuento va en negativo")
	assert.True(t, lines[4].Amount.Equal(dec("282.5")))
	assert.True(t, lines[4].Strong)
	assert.True(t, lines[6].Amount.Equal(dec("252.5")))
}

func TestTotalLines_OmiteCeros(t *testing.T) {
	s := appdraft.NewExportUseCase(nil, nil).BuildSnapshot(context.Background(), entity.InvoiceDraft{
		Items:    []entity.LineItem{{ID: "a", Quantity: dec("1"), Rate: dec("10")}},
		TaxMode:  entity.TaxModePercent,
		Currency: "INR",
	})

	assert.Equal(t, []string{"Subtotal", "Total", "Balance Due"}, labels(pdf.TotalLines(s)))
}

func TestTotalLines_ImpuestoFijo(t *testing.T) {
	s := appdraft.NewExportUseCase(nil, nil).BuildSnapshot(context.Background(), entity.InvoiceDraft{
		Items:     []entity.LineItem{{ID: "a", Quantity: dec("1"), Rate: dec("10")}},
		TaxMode:   entity.TaxModeAmount,
		TaxAmount: dec("3"),
		Currency:  "USD",
	})

	lines := pdf.TotalLines(s)
	assert.Equal(t, []string{"Subtotal", "Tax", "Total", "Balance Due"}, labels(lines))
	assert.True(t, lines[1].Amount.Equal(dec("3")))
}
