package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrLastLineItem         = errors.New("el borrador debe conservar al menos una línea")
	ErrUnknownField         = errors.New("campo desconocido")
	ErrInvalidLogo          = errors.New("logo inválido")
	ErrConfirmationRequired = errors.New("se requiere confirmación")
	ErrUnsupportedFormat    = errors.New("formato de exportación no soportado")
)
