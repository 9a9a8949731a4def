// Package draft orquesta el borrador de factura: edición con observadores, persistencia
// en el almacén local con escritura diferida, y armado del snapshot de exportación.
package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/jhoicas/invoice-builder/internal/application/dto"
	domdraft "github.com/jhoicas/invoice-builder/internal/domain/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

// DefaultKey clave del registro en el almacén local.
const DefaultKey = "invoiceDraft"

// PersistenceConfig parámetros de Persistence.
type PersistenceConfig struct {
	Key             string // vacío = DefaultKey
	DefaultCurrency string // vacío = entity.DefaultCurrency
}

// Persistence guarda y restaura el borrador completo bajo una única clave.
type Persistence struct {
	store           repository.DraftStore
	codec           LogoCodec
	log             *logger.Logger
	key             string
	defaultCurrency string
}

// NewPersistence construye el componente inyectando el puerto de almacenamiento y el codec del logo.
func NewPersistence(store repository.DraftStore, codec LogoCodec, log *logger.Logger, cfg PersistenceConfig) *Persistence {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = entity.DefaultCurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Persistence{
		store:           store,
		codec:           codec,
		log:             log.Named("draft.persistence"),
		key:             cfg.Key,
		defaultCurrency: cfg.DefaultCurrency,
	}
}

// Key clave usada en el almacén.
func (p *Persistence) Key() string { return p.key }

// DefaultDraft borrador por defecto con la moneda configurada.
func (p *Persistence) DefaultDraft() entity.InvoiceDraft {
	return domdraft.Default(p.defaultCurrency)
}

// Save codifica y escribe el borrador (reemplazo completo del registro).
func (p *Persistence) Save(ctx context.Context, d entity.InvoiceDraft) error {
	encoded, err := p.Encode(ctx, d)
	if err != nil {
		return err
	}
	return p.Write(ctx, encoded)
}

// Encode serializa el borrador. Si el logo no se puede codificar se guarda sin logo.
func (p *Persistence) Encode(ctx context.Context, d entity.InvoiceDraft) (string, error) {
	rec := dto.PersistedDraftRecord{
		FromName:      d.FromName,
		FromAddress:   d.FromAddress,
		ToName:        d.ToName,
		ToAddress:     d.ToAddress,
		InvoiceNumber: d.InvoiceNumber,
		Date:          d.IssueDate,
		PaymentTerms:  d.PaymentTerms,
		DueDate:       d.DueDate,
		PONumber:      d.PONumber,
		Items:         make([]dto.PersistedLineItem, 0, len(d.Items)),
		Notes:         d.Notes,
		Terms:         d.Terms,
		TaxType:       string(d.TaxMode),
		TaxPercent:    number(d.TaxPercent),
		TaxAmount:     number(d.TaxAmount),
		Discount:      number(d.DiscountPercent),
		ShippingFee:   number(d.ShippingFee),
		AmountPaid:    number(d.AmountPaid),
		Currency:      d.Currency,
	}
	for _, it := range d.Items {
		rec.Items = append(rec.Items, dto.PersistedLineItem{
			ID:          it.ID,
			Description: it.Description,
			Qty:         number(it.Quantity),
			Rate:        number(it.Rate),
		})
	}

	if d.Logo != nil {
		uri, err := p.codec.Encode(ctx, d.Logo)
		switch {
		case err == nil:
			rec.LogoBase64 = &uri
		case ctx.Err() != nil:
			return "", ctx.Err()
		default:
			p.log.Warn().Err(err).Msg("no se pudo codificar el logo; se guarda el borrador sin logo")
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("draft: serializar registro: %w", err)
	}
	return string(data), nil
}

// Write escribe un registro ya serializado.
func (p *Persistence) Write(ctx context.Context, encoded string) error {
	if err := p.store.Set(ctx, p.key, encoded); err != nil {
		return fmt.Errorf("draft: guardar registro: %w", err)
	}
	return nil
}

// Load restaura el borrador. Nunca falla: ante ausencia o datos corruptos devuelve el
// borrador por defecto y deja constancia en el log (no se informa al usuario).
func (p *Persistence) Load(ctx context.Context) entity.InvoiceDraft {
	raw, err := p.store.Get(ctx, p.key)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			p.log.Debug().Str("key", p.key).Msg("sin borrador guardado")
		} else {
			p.log.Warn().Err(err).Str("key", p.key).Msg("no se pudo leer el borrador; se usan valores por defecto")
		}
		return p.DefaultDraft()
	}
	d, err := p.Decode(raw)
	if err != nil {
		p.log.Warn().Err(err).Str("key", p.key).Msg("borrador guardado ilegible; se usan valores por defecto")
		return p.DefaultDraft()
	}
	return d
}

// Clear elimina el registro guardado.
func (p *Persistence) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("draft: eliminar registro: %w", err)
	}
	return nil
}

// Decode interpreta un registro. Solo falla si el texto no es un objeto JSON; cada campo
// ausente o con forma inesperada toma su valor por defecto.
func (p *Persistence) Decode(raw string) (entity.InvoiceDraft, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return entity.InvoiceDraft{}, fmt.Errorf("draft: registro inválido: %w", err)
	}
	if fields == nil {
		return entity.InvoiceDraft{}, errors.New("draft: registro nulo")
	}

	d := p.DefaultDraft()
	d.FromName = text(fields, domdraft.FieldFromName)
	d.FromAddress = text(fields, domdraft.FieldFromAddress)
	d.ToName = text(fields, domdraft.FieldToName)
	d.ToAddress = text(fields, domdraft.FieldToAddress)
	d.InvoiceNumber = text(fields, domdraft.FieldInvoiceNumber)
	d.IssueDate = text(fields, domdraft.FieldIssueDate)
	d.PaymentTerms = text(fields, domdraft.FieldPaymentTerms)
	d.DueDate = text(fields, domdraft.FieldDueDate)
	d.PONumber = text(fields, domdraft.FieldPONumber)
	d.Notes = text(fields, domdraft.FieldNotes)
	d.Terms = text(fields, domdraft.FieldTerms)

	if mode, ok := domdraft.ParseTaxMode(text(fields, domdraft.FieldTaxType)); ok {
		d.TaxMode = mode
	}
	d.TaxPercent = amount(fields[domdraft.FieldTaxPercent])
	d.TaxAmount = amount(fields[domdraft.FieldTaxAmount])
	d.DiscountPercent = amount(fields[domdraft.FieldDiscount])
	d.ShippingFee = amount(fields[domdraft.FieldShippingFee])
	d.AmountPaid = amount(fields[domdraft.FieldAmountPaid])

	if code, err := domdraft.NormalizeCurrency(text(fields, domdraft.FieldCurrency)); err == nil {
		d.Currency = code
	}

	if items := decodeItems(fields["items"]); len(items) > 0 {
		d.Items = items
	}

	if uri := text(fields, "logoBase64"); uri != "" {
		l, err := p.codec.Decode(uri)
		if err != nil {
			p.log.Warn().Err(err).Msg("logo guardado ilegible; se carga el borrador sin logo")
		} else {
			d.Logo = l
		}
	}
	return d, nil
}

func decodeItems(v any) []entity.LineItem {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]entity.LineItem, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		it := domdraft.NewLineItem()
		if id := text(m, "id"); id != "" && !seen[id] {
			it.ID = id
		}
		seen[it.ID] = true
		it.Description = text(m, domdraft.ItemFieldDescription)
		it.Quantity = domdraft.NonNegative(amount(m[domdraft.ItemFieldQuantity]))
		it.Rate = domdraft.NonNegative(amount(m[domdraft.ItemFieldRate]))
		items = append(items, it)
	}
	return items
}

// text lee un campo de texto; los números se aceptan (el navegador guardaba ids numéricos).
func text(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil, bool, map[string]any, []any:
		return ""
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return ""
		}
		return s
	}
}

// amount lee un número (json.Number o texto numérico). Cualquier otra forma → 0.
func amount(v any) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	if _, isBool := v.(bool); isBool {
		return decimal.Zero
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero
	}
	return domdraft.ParseNumber(s)
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
