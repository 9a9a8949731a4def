// Package storage implementa el puerto repository.DraftStore.
//
// FileStore guarda cada clave en un archivo "<dir>/<clave>.json" usando afero, de modo
// que en producción se usa el sistema de archivos del SO y en tests un MemMapFs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

var _ repository.DraftStore = (*FileStore)(nil)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore implementación de DraftStore sobre archivos locales.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore construye el adaptador y crea el directorio si no existe.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio %s: %w", dir, err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

// NewOSFileStore atajo con el sistema de archivos del SO.
func NewOSFileStore(dir string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir)
}

// Get lee el archivo de la clave.
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", repository.ErrKeyNotFound
		}
		return "", fmt.Errorf("storage: leer %s: %w", key, err)
	}
	return string(data), nil
}

// Set escribe en un archivo temporal y lo renombra, para no dejar registros a medio escribir.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage: reemplazar %s: %w", key, err)
	}
	return nil
}

// Delete elimina el archivo; no falla si no existe.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: eliminar %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("storage: clave inválida %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
