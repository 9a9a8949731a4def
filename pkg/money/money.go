// Package money formatea montos para presentación: código de moneda, separador de miles
// y exactamente dos decimales. El cálculo nunca pasa por aquí.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format devuelve "INR 1,234.50". El redondeo (half-up a dos decimales) ocurre solo aquí.
func Format(amount decimal.Decimal, currencyCode string) string {
	return currencyCode + " " + Number(amount)
}

// Number devuelve el monto con separador de miles y dos decimales, sin moneda.
// Se agrupa sobre el texto del decimal para no perder precisión en montos grandes.
func Number(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	dot := strings.IndexByte(s, '.')
	return sign + group(s[:dot]) + s[dot:]
}

// Quantity presenta una cantidad sin ceros sobrantes ("2", "1.5").
func Quantity(q decimal.Decimal) string {
	return q.String()
}

// group inserta comas cada tres dígitos de la parte entera.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
