package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/application/dto"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/logo"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/pdf"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/storage"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/xmlexport"
	apphttp "github.com/jhoicas/invoice-builder/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}

// buildTestApp arma la app con almacén en memoria y guardado diferido largo
// (las escrituras solo ocurren en Close).
func buildTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore, *appdraft.Session) {
	t.Helper()
	store := storage.NewMemoryStore()
	codec := logo.NewDataURICodec()
	p := appdraft.NewPersistence(store, codec, nil, appdraft.PersistenceConfig{})
	saver := appdraft.NewAutoSaver(p, time.Hour, nil)
	exporter := appdraft.NewExportUseCase(codec, nil, pdf.NewMarotoPDFGenerator(codec), xmlexport.NewGenerator())
	session := appdraft.Open(context.Background(), p, saver, exporter, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Session: session, LogoCodec: codec})
	return app, store, session
}

func do(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeDraft(t *testing.T, resp *http.Response) dto.DraftResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.DraftResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_GetBorradorPorDefecto(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/draft", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	d := decodeDraft(t, resp)

	assert.Len(t, d.Items, 1)
	assert.Equal(t, "INR", d.Currency)
	assert.Equal(t, "percent", d.TaxType)
	assert.False(t, d.HasLogo)
	assert.Equal(t, "INR 0.00", d.Totals.Display.BalanceDue)
}

func TestDraft_EjemploCompleto(t *testing.T) {
	app, _, _ := buildTestApp(t)
	first := decodeDraft(t, do(t, app, http.MethodGet, "/api/draft", nil)).Items[0].ID

	qty, rate := dto.Scalar("2"), dto.Scalar("100")
	resp := do(t, app, http.MethodPatch, "/api/draft/items/"+first, dto.UpdateLineItemRequest{Qty: &qty, Rate: &rate})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "200", decodeDraft(t, resp).Items[0].Amount.String())

	resp = do(t, app, http.MethodPost, "/api/draft/items", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	second := decodeDraft(t, resp).Items[1].ID

	qty, rate = "1", "50"
	do(t, app, http.MethodPatch, "/api/draft/items/"+second, dto.UpdateLineItemRequest{Qty: &qty, Rate: &rate}).Body.Close()

	for field, value := range map[string]string{
		"taxPercent":  "10",
		"discount":    "5",
		"shippingFee": "20",
		"amountPaid":  "30",
	} {
		resp := do(t, app, http.MethodPut, "/api/draft/fields/"+field, dto.SetFieldRequest{Value: dto.Scalar(value)})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, field)
		resp.Body.Close()
	}

	d := decodeDraft(t, do(t, app, http.MethodGet, "/api/draft", nil))
	assert.Equal(t, "250", d.Totals.Subtotal.String())
	assert.Equal(t, "25", d.Totals.TaxValue.String())
	assert.Equal(t, "12.5", d.Totals.DiscountAmount.String())
	assert.Equal(t, "282.5", d.Totals.Total.String())
	assert.Equal(t, "252.5", d.Totals.BalanceDue.String())
	assert.Equal(t, "INR 282.50", d.Totals.Display.Total)
}

func TestDraft_NoSeEliminaLaUltimaLinea(t *testing.T) {
	app, _, _ := buildTestApp(t)
	id := decodeDraft(t, do(t, app, http.MethodGet, "/api/draft", nil)).Items[0].ID

	resp := do(t, app, http.MethodDelete, "/api/draft/items/"+id, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "LAST_LINE_ITEM", decodeError(t, resp).Code)

	resp = do(t, app, http.MethodDelete, "/api/draft/items/no-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDraft_CampoDesconocidoYMonedaInvalida(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodPut, "/api/draft/fields/bogus", dto.SetFieldRequest{Value: "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_FIELD", decodeError(t, resp).Code)

	resp = do(t, app, http.MethodPut, "/api/draft/fields/currency", dto.SetFieldRequest{Value: "XYZW"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)

	resp = do(t, app, http.MethodPut, "/api/draft/fields/currency", dto.SetFieldRequest{Value: "usd"})
	assert.Equal(t, "USD", decodeDraft(t, resp).Currency)
}

func TestDraft_NumeroNoNumericoCuentaComoCero(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodPut, "/api/draft/fields/shippingFee", dto.SetFieldRequest{Value: "abc"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decodeDraft(t, resp).ShippingFee.IsZero())
}

func TestDraft_AceptaNumerosJSON(t *testing.T) {
	app, _, _ := buildTestApp(t)
	id := decodeDraft(t, do(t, app, http.MethodGet, "/api/draft", nil)).Items[0].ID

	resp := do(t, app, http.MethodPatch, "/api/draft/items/"+id, map[string]any{"qty": 2, "rate": 100.25})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "200.5", decodeDraft(t, resp).Items[0].Amount.String())

	resp = do(t, app, http.MethodPut, "/api/draft/fields/taxPercent", map[string]any{"value": 10})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	d := decodeDraft(t, resp)
	assert.Equal(t, "10", d.TaxPercent.String())
	assert.Equal(t, "20.05", d.Totals.TaxValue.String())

	resp = do(t, app, http.MethodPut, "/api/draft/fields/invoiceNumber", map[string]any{"value": 42})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "42", decodeDraft(t, resp).InvoiceNumber)
}

func TestDraft_ValorNoEscalarEsCuerpoInvalido(t *testing.T) {
	app, _, _ := buildTestApp(t)
	resp := do(t, app, http.MethodPut, "/api/draft/fields/taxPercent", map[string]any{"value": map[string]int{"x": 1}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
}

func TestDraft_NumeroEnormeCuentaComoCero(t *testing.T) {
	app, store, session := buildTestApp(t)

	resp := do(t, app, http.MethodPut, "/api/draft/fields/shippingFee", dto.SetFieldRequest{Value: "1e200000"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Less(t, len(body), 4096)

	var d dto.DraftResponse
	require.NoError(t, json.Unmarshal(body, &d))
	assert.True(t, d.ShippingFee.IsZero())

	require.NoError(t, session.Close(context.Background()))
	raw, err := store.Get(context.Background(), appdraft.DefaultKey)
	require.NoError(t, err)
	assert.Less(t, len(raw), 4096)
}

// ──────────────────────────────────────────────────────────────────────────────
// Logo
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_LogoPorDataURI(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodPut, "/api/draft/logo", dto.SetLogoRequest{DataURI: "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	d := decodeDraft(t, resp)
	assert.True(t, d.HasLogo)
	assert.Equal(t, "image/png", d.LogoMediaType)

	resp = do(t, app, http.MethodDelete, "/api/draft/logo", nil)
	assert.False(t, decodeDraft(t, resp).HasLogo)

	resp = do(t, app, http.MethodPut, "/api/draft/logo", dto.SetLogoRequest{DataURI: "no-es-un-uri"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_LOGO", decodeError(t, resp).Code)
}

func TestDraft_LogoMultipart(t *testing.T) {
	app, _, _ := buildTestApp(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/draft/logo", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	d := decodeDraft(t, resp)
	assert.True(t, d.HasLogo)
	assert.Equal(t, "image/png", d.LogoMediaType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Limpiar y exportar
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_ClearRequiereConfirmacion(t *testing.T) {
	app, store, session := buildTestApp(t)
	do(t, app, http.MethodPut, "/api/draft/fields/invoiceNumber", dto.SetFieldRequest{Value: "INV-1"}).Body.Close()
	require.NoError(t, session.Close(context.Background()))
	_, err := store.Get(context.Background(), appdraft.DefaultKey)
	require.NoError(t, err)

	resp := do(t, app, http.MethodDelete, "/api/draft", nil)
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, "CONFIRMATION_REQUIRED", decodeError(t, resp).Code)

	resp = do(t, app, http.MethodDelete, "/api/draft?confirm=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeDraft(t, resp).InvoiceNumber)

	_, err = store.Get(context.Background(), appdraft.DefaultKey)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestDraft_ExportXML(t *testing.T) {
	app, _, _ := buildTestApp(t)
	do(t, app, http.MethodPut, "/api/draft/fields/invoiceNumber", dto.SetFieldRequest{Value: "INV 7"}).Body.Close()

	resp := do(t, app, http.MethodGet, "/api/draft/export?format=xml", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice_INV_7.xml")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<Invoice")
}

func TestDraft_ExportPDFPorDefecto(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/draft/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice.pdf")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestDraft_ExportFormatoDesconocido(t *testing.T) {
	app, _, _ := buildTestApp(t)

	resp := do(t, app, http.MethodGet, "/api/draft/export?format=docx", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decodeError(t, resp).Code)
}
