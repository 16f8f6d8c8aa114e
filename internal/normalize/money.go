package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money parses a monetary string in either Brazilian ("1.234,56") or US
// ("1234.56") notation. If a comma appears after the last dot, the comma is
// the decimal separator and dots are thousands separators; otherwise the dot
// is decimal and commas are stripped. Empty or non-numeric input yields zero.
func Money(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero
	}

	// Keep digits, separators and sign; drop currency symbols and spaces.
	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned = b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}
