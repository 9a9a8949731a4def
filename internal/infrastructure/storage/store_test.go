package storage_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/storage"
)

// Ambos adaptadores deben cumplir el mismo contrato del puerto DraftStore.
func stores(t *testing.T) map[string]repository.DraftStore {
	t.Helper()
	fileStore, err := storage.NewFileStore(afero.NewMemMapFs(), "/drafts")
	require.NoError(t, err)
	return map[string]repository.DraftStore{
		"memory": storage.NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestDraftStore_Contrato(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "invoiceDraft")
			assert.ErrorIs(t, err, repository.ErrKeyNotFound, "clave ausente")

			require.NoError(t, s.Set(ctx, "invoiceDraft", `{"a":1}`))
			require.NoError(t, s.Set(ctx, "invoiceDraft", `{"a":2}`))
			v, err := s.Get(ctx, "invoiceDraft")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, v, "Set reemplaza el registro completo")

			require.NoError(t, s.Delete(ctx, "invoiceDraft"))
			_, err = s.Get(ctx, "invoiceDraft")
			assert.ErrorIs(t, err, repository.ErrKeyNotFound)

			assert.NoError(t, s.Delete(ctx, "invoiceDraft"), "eliminar dos veces no falla")
		})
	}
}

func TestDraftStore_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
		})
	}
}

func TestFileStore_EscribeArchivoPorClave(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := storage.NewFileStore(fs, "/drafts")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "invoiceDraft", "{}"))

	exists, err := afero.Exists(fs, "/drafts/invoiceDraft.json")
	require.NoError(t, err)
	assert.True(t, exists)
	tmp, _ := afero.Exists(fs, "/drafts/invoiceDraft.json.tmp")
	assert.False(t, tmp, "no deben quedar temporales")
}

func TestFileStore_ClaveInvalida(t *testing.T) {
	s, err := storage.NewFileStore(afero.NewMemMapFs(), "/drafts")
	require.NoError(t, err)
	assert.Error(t, s.Set(context.Background(), "../fuera", "x"))
}
