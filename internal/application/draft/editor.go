package draft

import (
	"fmt"
	"sync"

	"github.com/jhoicas/invoice-builder/internal/domain"
	domdraft "github.com/jhoicas/invoice-builder/internal/domain/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// Observer recibe una copia del borrador después de cada modificación.
type Observer func(entity.InvoiceDraft)

// Editor es el dueño del borrador en memoria. Toda modificación pasa por aquí y se
// notifica a los observadores (ej. AutoSaver.Schedule). Los totales se recalculan en
// cada lectura; no hay nada cacheado.
//
// Los observadores se invocan con el candado tomado para preservar el orden de las
// notificaciones: no deben llamar de vuelta al Editor.
type Editor struct {
	mu              sync.Mutex
	draft           entity.InvoiceDraft
	defaultCurrency string
	observers       map[int]Observer
	nextObserver    int
}

// NewEditor construye el editor con el borrador inicial (normalmente el restaurado por Persistence).
func NewEditor(initial entity.InvoiceDraft, defaultCurrency string) *Editor {
	if len(initial.Items) == 0 {
		initial.Items = []entity.LineItem{domdraft.NewLineItem()}
	}
	return &Editor{
		draft:           initial.Clone(),
		defaultCurrency: defaultCurrency,
		observers:       make(map[int]Observer),
	}
}

// Subscribe registra un observador y devuelve la función para darlo de baja.
func (e *Editor) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// Snapshot copia profunda del borrador actual.
func (e *Editor) Snapshot() entity.InvoiceDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// Totals recalcula los totales derivados del estado actual.
func (e *Editor) Totals() entity.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domdraft.ComputeTotals(e.draft)
}

// View devuelve el borrador y sus totales leídos bajo el mismo candado, para que una
// respuesta nunca mezcle líneas de un estado con totales de otro.
func (e *Editor) View() (entity.InvoiceDraft, entity.Totals) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone(), domdraft.ComputeTotals(e.draft)
}

// AddLineItem agrega una línea vacía al final.
func (e *Editor) AddLineItem() entity.LineItem {
	var added entity.LineItem
	_ = e.mutate(func(d *entity.InvoiceDraft) error {
		added = domdraft.AddLineItem(d)
		return nil
	})
	return added
}

// RemoveLineItem elimina una línea; devuelve domain.ErrLastLineItem si es la única.
func (e *Editor) RemoveLineItem(id string) error {
	return e.mutate(func(d *entity.InvoiceDraft) error {
		return domdraft.RemoveLineItem(d, id)
	})
}

// UpdateLineItem modifica un campo (description, qty, rate) de una línea.
func (e *Editor) UpdateLineItem(id, field, raw string) error {
	return e.mutate(func(d *entity.InvoiceDraft) error {
		return domdraft.UpdateLineItem(d, id, field, raw)
	})
}

// SetField asigna un campo escalar del borrador.
func (e *Editor) SetField(field, raw string) error {
	return e.mutate(func(d *entity.InvoiceDraft) error {
		return domdraft.SetField(d, field, raw)
	})
}

// SetTaxMode alterna entre impuesto porcentual y monto fijo. Ambos valores se conservan.
func (e *Editor) SetTaxMode(mode entity.TaxMode) error {
	if mode != entity.TaxModePercent && mode != entity.TaxModeAmount {
		return fmt.Errorf("%w: modo de impuesto %q", domain.ErrInvalidInput, mode)
	}
	return e.mutate(func(d *entity.InvoiceDraft) error {
		d.TaxMode = mode
		return nil
	})
}

// SetLogo reemplaza el logo (se copia el contenido).
func (e *Editor) SetLogo(l entity.Logo) error {
	if len(l.Data) == 0 {
		return fmt.Errorf("%w: sin contenido", domain.ErrInvalidLogo)
	}
	data := make([]byte, len(l.Data))
	copy(data, l.Data)
	return e.mutate(func(d *entity.InvoiceDraft) error {
		d.Logo = &entity.Logo{MediaType: l.MediaType, Data: data}
		return nil
	})
}

// RemoveLogo quita el logo.
func (e *Editor) RemoveLogo() {
	_ = e.mutate(func(d *entity.InvoiceDraft) error {
		d.Logo = nil
		return nil
	})
}

// Reset vuelve al borrador por defecto (una línea vacía, montos en cero, moneda por defecto).
func (e *Editor) Reset() {
	_ = e.mutate(func(d *entity.InvoiceDraft) error {
		*d = domdraft.Default(e.defaultCurrency)
		return nil
	})
}

// resetQuietly vuelve al borrador por defecto sin notificar y ejecuta after con el candado
// tomado: ninguna edición concurrente puede quedar entre el reinicio y after.
func (e *Editor) resetQuietly(after func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = domdraft.Default(e.defaultCurrency)
	return after()
}

// mutate aplica fn sobre el borrador y notifica solo si no hubo error.
// fn trabaja sobre una copia para que un error deje el borrador intacto.
func (e *Editor) mutate(fn func(d *entity.InvoiceDraft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.draft = next

	if len(e.observers) == 0 {
		return nil
	}
	snapshot := e.draft.Clone()
	for _, id := range e.observerIDs() {
		e.observers[id](snapshot)
	}
	return nil
}

// observerIDs en orden de suscripción.
func (e *Editor) observerIDs() []int {
	ids := make([]int, 0, len(e.observers))
	for id := 0; id < e.nextObserver; id++ {
		if _, ok := e.observers[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
