package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Scalar valor ingresado por el usuario: acepta texto, número o booleano JSON y conserva
// su forma textual. Los números mantienen su literal exacto ("10.50" no pasa por float64).
type Scalar string

// UnmarshalJSON decodifica cualquier escalar JSON; null queda vacío. Objetos y arreglos son error.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case json.Number:
		*s = Scalar(t.String())
	default:
		text, err := cast.ToStringE(t)
		if err != nil {
			return fmt.Errorf("valor no escalar: %w", err)
		}
		*s = Scalar(text)
	}
	return nil
}

// String texto del valor.
func (s Scalar) String() string { return string(s) }
