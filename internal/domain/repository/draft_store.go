package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound lo devuelve Get cuando la clave no existe.
var ErrKeyNotFound = errors.New("clave no encontrada")

// DraftStore define el puerto de almacenamiento local: un mapa de texto a texto.
// El borrador ocupa una única clave; cada Set reemplaza el registro completo.
type DraftStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete no falla si la clave no existe.
	Delete(ctx context.Context, key string) error
}
