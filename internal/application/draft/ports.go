package draft

import (
	"context"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// LogoCodec convierte el logo binario en texto autodescriptivo (y viceversa).
// Es independiente de la serialización del resto del registro.
type LogoCodec interface {
	Encode(ctx context.Context, logo *entity.Logo) (string, error)
	Decode(s string) (*entity.Logo, error)
}

// DocumentGenerator produce el documento exportable a partir de un snapshot finalizado.
type DocumentGenerator interface {
	Generate(ctx context.Context, snapshot ExportSnapshot) ([]byte, error)
	// ContentType tipo MIME del documento, ej. application/pdf.
	ContentType() string
	// Extension sin punto, ej. "pdf".
	Extension() string
}
