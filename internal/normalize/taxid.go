// Package normalize turns the raw, inconsistently formatted fields of both
// sources into canonical comparable forms. Every function here is pure and
// total: malformed input yields a neutral default, never an error.
package normalize

import "strings"

const (
	cpfLength  = 11
	cnpjLength = 14
)

// DigitsOnly strips every non-digit character. Diagnostic variant: it keeps
// whatever digits remain even when the result is not a valid CPF/CNPJ.
func DigitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TaxID strips formatting from a CPF/CNPJ and validates its length. Anything
// that is not exactly 11 or 14 digits returns "", which matching paths treat
// as "no usable join key".
func TaxID(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) != cpfLength && len(digits) != cnpjLength {
		return ""
	}
	return digits
}
