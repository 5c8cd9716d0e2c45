package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SafeName derives an identifier-safe alias for an external sheet name:
// every rune that is not a letter, digit or underscore becomes '_', and a
// leading digit gets a '_' prefix. "Sales 2024" -> "Sales_2024".
func SafeName(name string) string {
	normalized := norm.NFC.String(name)

	var b strings.Builder
	for i, r := range normalized {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
