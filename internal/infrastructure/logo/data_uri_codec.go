// Package logo convierte el logo binario del borrador en un data URI
// ("data:<tipo>;base64,<contenido>") y viceversa.
package logo

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

var _ appdraft.LogoCodec = (*DataURICodec)(nil)

const dataPrefix = "data:"

// DataURICodec implementa draft.LogoCodec.
type DataURICodec struct{}

// NewDataURICodec construye el codec.
func NewDataURICodec() *DataURICodec { return &DataURICodec{} }

// Encode devuelve el data URI del logo. Si MediaType va vacío se detecta a partir del contenido.
func (DataURICodec) Encode(ctx context.Context, l *entity.Logo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l == nil || len(l.Data) == 0 {
		return "", fmt.Errorf("%w: sin contenido", domain.ErrInvalidLogo)
	}
	mediaType, err := imageMediaType(l.MediaType, l.Data)
	if err != nil {
		return "", err
	}
	return dataPrefix + mediaType + ";base64," + base64.StdEncoding.EncodeToString(l.Data), nil
}

// Decode reconstruye el logo a partir de su data URI.
func (DataURICodec) Decode(s string) (*entity.Logo, error) {
	if !strings.HasPrefix(s, dataPrefix) {
		return nil, fmt.Errorf("%w: no es un data URI", domain.ErrInvalidLogo)
	}
	header, payload, ok := strings.Cut(s[len(dataPrefix):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI sin contenido", domain.ErrInvalidLogo)
	}
	params := strings.Split(header, ";")
	if len(params) < 2 || params[len(params)-1] != "base64" {
		return nil, fmt.Errorf("%w: se esperaba codificación base64", domain.ErrInvalidLogo)
	}
	mediaType, err := imageMediaType(strings.Join(params[:len(params)-1], ";"), nil)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrInvalidLogo, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: sin contenido", domain.ErrInvalidLogo)
	}
	return &entity.Logo{MediaType: mediaType, Data: data}, nil
}

// imageMediaType valida (o detecta) el tipo de medio: solo se aceptan imágenes.
func imageMediaType(declared string, data []byte) (string, error) {
	mediaType := declared
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil || !strings.HasPrefix(parsed, "image/") {
		return "", fmt.Errorf("%w: tipo %q no es una imagen", domain.ErrInvalidLogo, mediaType)
	}
	return parsed, nil
}
