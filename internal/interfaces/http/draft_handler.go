package http

import (
	"errors"
	"io"
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/application/dto"
	"github.com/jhoicas/invoice-builder/internal/domain"
	domdraft "github.com/jhoicas/invoice-builder/internal/domain/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// maxLogoBytes tamaño máximo aceptado para el logo.
const maxLogoBytes = 2 << 20

// DraftHandler expone el borrador abierto por HTTP (solo uso local).
type DraftHandler struct {
	session *appdraft.Session
	codec   appdraft.LogoCodec
}

// NewDraftHandler construye el handler.
func NewDraftHandler(session *appdraft.Session, codec appdraft.LogoCodec) *DraftHandler {
	return &DraftHandler{session: session, codec: codec}
}

// Get godoc
// @Summary      Obtener el borrador con sus totales
// @Tags         draft
// @Produce      json
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/draft [get]
func (h *DraftHandler) Get(c *fiber.Ctx) error {
	return h.respond(c, fiber.StatusOK)
}

// SetField godoc
// @Summary      Asignar un campo del borrador
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        field  path  string                true  "Nombre del campo (ej. invoiceNumber, taxPercent, currency)"
// @Param        body   body  dto.SetFieldRequest  true  "Valor"
// @Success      200    {object}  dto.DraftResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/draft/fields/{field} [put]
func (h *DraftHandler) SetField(c *fiber.Ctx) error {
	var in dto.SetFieldRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.session.Editor().SetField(c.Params("field"), in.Value.String()); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK)
}

// AddItem godoc
// @Summary      Agregar una línea vacía
// @Tags         draft
// @Produce      json
// @Success      201  {object}  dto.DraftResponse
// @Router       /api/draft/items [post]
func (h *DraftHandler) AddItem(c *fiber.Ctx) error {
	h.session.Editor().AddLineItem()
	return h.respond(c, fiber.StatusCreated)
}

// UpdateItem godoc
// @Summary      Modificar una línea
// @Tags         draft
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la línea"
// @Param        body  body  dto.UpdateLineItemRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/draft/items/{id} [patch]
func (h *DraftHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateLineItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id := c.Params("id")
	editor := h.session.Editor()
	for _, upd := range []struct {
		field string
		value *dto.Scalar
	}{
		{domdraft.ItemFieldDescription, in.Description},
		{domdraft.ItemFieldQuantity, in.Qty},
		{domdraft.ItemFieldRate, in.Rate},
	} {
		if upd.value == nil {
			continue
		}
		if err := editor.UpdateLineItem(id, upd.field, upd.value.String()); err != nil {
			return writeError(c, err)
		}
	}
	return h.respond(c, fiber.StatusOK)
}

// RemoveItem godoc
// @Summary      Eliminar una línea (siempre queda al menos una)
// @Tags         draft
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.DraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/draft/items/{id} [delete]
func (h *DraftHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.session.Editor().RemoveLineItem(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK)
}

// SetLogo godoc
// @Summary      Cargar el logo (multipart "logo" o JSON con data URI)
// @Tags         draft
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.SetLogoRequest  false  "Logo como data URI"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/draft/logo [put]
func (h *DraftHandler) SetLogo(c *fiber.Ctx) error {
	logo, err := h.readLogo(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.session.Editor().SetLogo(*logo); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK)
}

// RemoveLogo godoc
// @Summary      Quitar el logo
// @Tags         draft
// @Produce      json
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/draft/logo [delete]
func (h *DraftHandler) RemoveLogo(c *fiber.Ctx) error {
	h.session.Editor().RemoveLogo()
	return h.respond(c, fiber.StatusOK)
}

// Clear godoc
// @Summary      Descartar el borrador (requiere confirm=true)
// @Tags         draft
// @Produce      json
// @Param        confirm  query  bool  true  "Confirmación explícita"
// @Success      200      {object}  dto.DraftResponse
// @Failure      428      {object}  dto.ErrorResponse
// @Router       /api/draft [delete]
func (h *DraftHandler) Clear(c *fiber.Ctx) error {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.session.Clear(c.UserContext(), confirmed); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK)
}

// Export godoc
// @Summary      Exportar el borrador
// @Tags         draft
// @Produce      application/pdf,application/xml
// @Param        format  query  string  false  "pdf (por defecto) o xml"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/draft/export [get]
func (h *DraftHandler) Export(c *fiber.Ctx) error {
	res, err := h.session.Export(c.UserContext(), c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	return c.Status(fiber.StatusOK).Send(res.Content)
}

func (h *DraftHandler) respond(c *fiber.Ctx, status int) error {
	d, t := h.session.Editor().View()
	return c.Status(status).JSON(dto.NewDraftResponse(d, t))
}

// readLogo acepta un archivo multipart en el campo "logo" o un JSON {"dataUri": "..."}.
func (h *DraftHandler) readLogo(c *fiber.Ctx) (*entity.Logo, error) {
	if fh, err := c.FormFile("logo"); err == nil {
		if fh.Size > maxLogoBytes {
			return nil, domain.ErrInvalidLogo
		}
		f, err := fh.Open()
		if err != nil {
			return nil, domain.ErrInvalidLogo
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxLogoBytes+1))
		if err != nil || len(data) == 0 || len(data) > maxLogoBytes {
			return nil, domain.ErrInvalidLogo
		}
		// el codec detecta el tipo y rechaza lo que no sea imagen
		uri, err := h.codec.Encode(c.UserContext(), &entity.Logo{Data: data})
		if err != nil {
			return nil, err
		}
		return h.codec.Decode(uri)
	}

	var in dto.SetLogoRequest
	if err := c.BodyParser(&in); err != nil || in.DataURI == "" {
		return nil, domain.ErrInvalidLogo
	}
	return h.codec.Decode(in.DataURI)
}

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrLastLineItem):
		status, code = fiber.StatusConflict, "LAST_LINE_ITEM"
	case errors.Is(err, domain.ErrUnknownField):
		status, code = fiber.StatusBadRequest, "UNKNOWN_FIELD"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidLogo):
		status, code = fiber.StatusBadRequest, "INVALID_LOGO"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		status, code = fiber.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, domain.ErrConfirmationRequired):
		status, code = fiber.StatusPreconditionRequired, "CONFIRMATION_REQUIRED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
