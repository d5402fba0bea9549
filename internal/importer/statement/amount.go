package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a statement amount. With decimalComma the input is
// European formatted ("1.234,56"), otherwise "1,234.56". Currency markers are
// ignored.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.NewReplacer("EUR", "", "€", "", " ", "").Replace(s)

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
