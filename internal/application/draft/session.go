package draft

import (
	"context"
	"fmt"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

// Session une las piezas mientras el formulario está abierto: restaura el borrador al
// abrir, lo guarda en diferido en cada cambio y lo borra con Clear.
type Session struct {
	editor      *Editor
	persistence *Persistence
	saver       *AutoSaver
	exporter    *ExportUseCase
	log         *logger.Logger
	unsubscribe func()
}

// Open lee el registro guardado una sola vez y conecta el AutoSaver como observador.
func Open(ctx context.Context, p *Persistence, saver *AutoSaver, exporter *ExportUseCase, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	initial := p.Load(ctx)
	editor := NewEditor(initial, p.DefaultDraft().Currency)
	s := &Session{
		editor:      editor,
		persistence: p,
		saver:       saver,
		exporter:    exporter,
		log:         log.Named("draft.session"),
	}
	s.unsubscribe = editor.Subscribe(saver.Schedule)
	s.log.Info().Str("key", p.Key()).Int("items", len(initial.Items)).Msg("borrador abierto")
	return s
}

// Editor borrador en edición.
func (s *Session) Editor() *Editor { return s.editor }

// Clear descarta el borrador: vuelve a los valores por defecto y borra el registro.
// Es destructivo y sin deshacer, por eso exige confirmación explícita.
func (s *Session) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	// Las ediciones que lleguen después esperan el candado del editor y se guardan normalmente.
	err := s.editor.resetQuietly(func() error {
		s.saver.Cancel()
		return s.persistence.Clear(ctx)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("key", s.persistence.Key()).Msg("borrador eliminado")
	return nil
}

// Export genera el documento del estado actual.
func (s *Session) Export(ctx context.Context, format string) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("%w: exportación no configurada", domain.ErrUnsupportedFormat)
	}
	return s.exporter.Export(ctx, s.editor.Snapshot(), format)
}

// Close deja de observar el editor y escribe lo que quede pendiente.
func (s *Session) Close(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if err := s.saver.Flush(ctx); err != nil {
		return fmt.Errorf("draft: guardar al cerrar: %w", err)
	}
	return nil
}
