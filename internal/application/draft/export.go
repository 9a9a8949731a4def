package draft

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/domain"
	domdraft "github.com/jhoicas/invoice-builder/internal/domain/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

// DefaultExportFormat formato usado cuando no se indica uno.
const DefaultExportFormat = "pdf"

// ExportLine línea del snapshot con su importe ya calculado.
type ExportLine struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// ExportSnapshot es la entrada de los generadores de documentos: campos del borrador,
// los cinco totales derivados y el logo como data URI (vacío si no hay).
type ExportSnapshot struct {
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	PaymentTerms  string
	PONumber      string

	FromName    string
	FromAddress string
	ToName      string
	ToAddress   string

	Items []ExportLine
	Notes string
	Terms string

	Currency        string
	TaxMode         entity.TaxMode
	TaxPercent      decimal.Decimal
	TaxAmount       decimal.Decimal
	DiscountPercent decimal.Decimal
	ShippingFee     decimal.Decimal
	AmountPaid      decimal.Decimal

	Totals entity.Totals
	Logo   string
}

// ExportResult documento generado listo para descargar.
type ExportResult struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportUseCase arma el snapshot y delega en el generador del formato pedido.
type ExportUseCase struct {
	generators map[string]DocumentGenerator
	codec      LogoCodec
	log        *logger.Logger
}

// NewExportUseCase registra los generadores por su extensión.
func NewExportUseCase(codec LogoCodec, log *logger.Logger, generators ...DocumentGenerator) *ExportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	uc := &ExportUseCase{
		generators: make(map[string]DocumentGenerator, len(generators)),
		codec:      codec,
		log:        log.Named("draft.export"),
	}
	for _, g := range generators {
		uc.generators[strings.ToLower(g.Extension())] = g
	}
	return uc
}

// Formats extensiones disponibles.
func (uc *ExportUseCase) Formats() []string {
	out := make([]string, 0, len(uc.generators))
	for ext := range uc.generators {
		out = append(out, ext)
	}
	return out
}

// BuildSnapshot congela el borrador junto con sus totales. Un logo que no se pueda
// codificar se omite.
func (uc *ExportUseCase) BuildSnapshot(ctx context.Context, d entity.InvoiceDraft) ExportSnapshot {
	snap := ExportSnapshot{
		InvoiceNumber:   d.InvoiceNumber,
		IssueDate:       d.IssueDate,
		DueDate:         d.DueDate,
		PaymentTerms:    d.PaymentTerms,
		PONumber:        d.PONumber,
		FromName:        d.FromName,
		FromAddress:     d.FromAddress,
		ToName:          d.ToName,
		ToAddress:       d.ToAddress,
		Items:           make([]ExportLine, 0, len(d.Items)),
		Notes:           d.Notes,
		Terms:           d.Terms,
		Currency:        d.Currency,
		TaxMode:         d.TaxMode,
		TaxPercent:      d.TaxPercent,
		TaxAmount:       d.TaxAmount,
		DiscountPercent: d.DiscountPercent,
		ShippingFee:     d.ShippingFee,
		AmountPaid:      d.AmountPaid,
		Totals:          domdraft.ComputeTotals(d),
	}
	for _, it := range d.Items {
		snap.Items = append(snap.Items, ExportLine{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount(),
		})
	}
	if d.Logo != nil && uc.codec != nil {
		uri, err := uc.codec.Encode(ctx, d.Logo)
		if err != nil {
			uc.log.Warn().Err(err).Msg("logo omitido en la exportación")
		} else {
			snap.Logo = uri
		}
	}
	return snap
}

// Export genera el documento en el formato pedido ("" = pdf).
func (uc *ExportUseCase) Export(ctx context.Context, d entity.InvoiceDraft, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DefaultExportFormat
	}
	gen, ok := uc.generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	content, err := gen.Generate(ctx, uc.BuildSnapshot(ctx, d))
	if err != nil {
		return nil, fmt.Errorf("export: generación fallida: %w", err)
	}
	uc.log.Info().Str("format", format).Int("bytes", len(content)).Msg("documento exportado")

	return &ExportResult{
		Content:     content,
		Filename:    ExportFilename(d.InvoiceNumber, gen.Extension()),
		ContentType: gen.ContentType(),
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFilename "invoice_<número>.<ext>", o "invoice.<ext>" sin número.
func ExportFilename(invoiceNumber, ext string) string {
	n := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(invoiceNumber), "_"), "_.")
	if n == "" {
		return "invoice." + ext
	}
	return "invoice_" + n + "." + ext
}
