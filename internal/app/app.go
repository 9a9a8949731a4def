// Package app arma las dependencias comunes a los binarios (servidor local y CLI).
package app

import (
	"context"
	"fmt"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/logo"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/pdf"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/storage"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/xmlexport"
	"github.com/jhoicas/invoice-builder/pkg/config"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

// App dependencias ya conectadas con el borrador abierto.
type App struct {
	Store     repository.DraftStore
	LogoCodec appdraft.LogoCodec
	Session   *appdraft.Session
}

// NewStore elige el almacén según STORAGE_DRIVER.
func NewStore(cfg config.StorageConfig) (repository.DraftStore, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageDriverFile:
		s, err := storage.NewOSFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("app: almacén de archivos: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("app: driver de almacenamiento %q no soportado", cfg.Driver)
	}
}

// New abre el borrador guardado (o el de por defecto) y conecta el guardado diferido.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := NewStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, cfg, store, log), nil
}

// NewWithStore igual que New con un almacén ya construido.
func NewWithStore(ctx context.Context, cfg *config.Config, store repository.DraftStore, log *logger.Logger) *App {
	codec := logo.NewDataURICodec()
	persistence := appdraft.NewPersistence(store, codec, log, appdraft.PersistenceConfig{
		Key:             cfg.Draft.Key,
		DefaultCurrency: cfg.Draft.DefaultCurrency,
	})
	saver := appdraft.NewAutoSaver(persistence, cfg.Draft.Debounce, log)
	exporter := appdraft.NewExportUseCase(codec, log,
		pdf.NewMarotoPDFGenerator(codec),
		xmlexport.NewGenerator(),
	)
	return &App{
		Store:     store,
		LogoCodec: codec,
		Session:   appdraft.Open(ctx, persistence, saver, exporter, log),
	}
}

// Close escribe lo pendiente.
func (a *App) Close(ctx context.Context) error {
	return a.Session.Close(ctx)
}
