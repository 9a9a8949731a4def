package draft

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

// DefaultDebounce espera por defecto antes de persistir.
const DefaultDebounce = time.Second

// AutoSaver persiste el borrador con escritura diferida (debounce).
//
// Cada Schedule reemplaza a la escritura pendiente y reinicia la espera, de modo que
// durante una ráfaga de ediciones solo se escribe el último estado. Cada escritura lleva
// una generación: una escritura más vieja que la última ya escrita (o anterior a un
// Cancel) se descarta, así un logo lento de codificar nunca pisa un estado más nuevo.
type AutoSaver struct {
	persistence *Persistence
	quantum     time.Duration
	log         *logger.Logger

	mu         sync.Mutex
	timer      *time.Timer
	pending    entity.InvoiceDraft
	pendingGen uint64
	gen        uint64 // última generación programada
	written    uint64 // generación de la última escritura exitosa
	floor      uint64 // generaciones <= floor se descartan
	inflight   sync.WaitGroup
}

// NewAutoSaver construye el componente. quantum <= 0 usa DefaultDebounce.
func NewAutoSaver(p *Persistence, quantum time.Duration, log *logger.Logger) *AutoSaver {
	if quantum <= 0 {
		quantum = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AutoSaver{persistence: p, quantum: quantum, log: log.Named("draft.autosave")}
}

// Schedule programa la escritura de d. Se puede usar directamente como observador del Editor.
func (s *AutoSaver) Schedule(d entity.InvoiceDraft) {
	snapshot := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPendingLocked()
	s.gen++
	gen := s.gen
	s.pending = snapshot
	s.pendingGen = gen
	s.inflight.Add(1)
	s.timer = time.AfterFunc(s.quantum, func() {
		defer s.inflight.Done()
		if err := s.flush(context.Background(), gen, snapshot); err != nil {
			s.log.Error().Err(err).Uint64("gen", gen).Msg("no se pudo guardar el borrador")
		}
	})
}

// Flush escribe de inmediato la escritura pendiente (si hay) y espera las que estén en curso.
func (s *AutoSaver) Flush(ctx context.Context) error {
	s.mu.Lock()
	var (
		run  bool
		gen  uint64
		snap entity.InvoiceDraft
	)
	if s.timer != nil && s.timer.Stop() {
		run, gen, snap = true, s.pendingGen, s.pending
		s.timer = nil
		s.pending = entity.InvoiceDraft{}
	}
	s.mu.Unlock()

	var err error
	if run {
		err = s.flush(ctx, gen, snap)
		s.inflight.Done()
	}
	s.inflight.Wait()
	return err
}

// Cancel descarta la escritura pendiente y las que estén codificándose en este momento.
// Es la única forma de cancelación: lo usa Clear para que nada resucite el registro borrado.
func (s *AutoSaver) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPendingLocked()
	s.floor = s.gen
}

// Pending indica si hay una escritura programada que aún no se disparó.
func (s *AutoSaver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *AutoSaver) stopPendingLocked() {
	if s.timer != nil && s.timer.Stop() {
		// el callback no correrá: liberar su turno en el WaitGroup
		s.inflight.Done()
	}
	s.timer = nil
	s.pending = entity.InvoiceDraft{}
}

// flush codifica fuera del candado (puede tardar por el logo) y escribe dentro de él
// solo si ninguna generación más nueva llegó antes.
func (s *AutoSaver) flush(ctx context.Context, gen uint64, d entity.InvoiceDraft) error {
	s.mu.Lock()
	if s.pendingGen == gen {
		s.timer = nil
		s.pending = entity.InvoiceDraft{}
	}
	s.mu.Unlock()

	encoded, err := s.persistence.Encode(ctx, d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.written || gen <= s.floor {
		s.log.Debug().Uint64("gen", gen).Msg("escritura obsoleta descartada")
		return nil
	}
	if err := s.persistence.Write(ctx, encoded); err != nil {
		return err
	}
	s.written = gen
	s.log.Debug().Uint64("gen", gen).Msg("borrador guardado")
	return nil
}
