// Package format renders amounts and durations for people.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns amount formatted in the conventions of the given currency,
// e.g. "1 234,56 zł", "1 234,56 €" or "$1,234.56". Unknown codes are
// rendered as "1,234.56 XXX".
func Currency(amount float64, code string) string {
	code = strings.ToUpper(code)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	value := math.Abs(amount)

	switch code {
	case "PLN":
		return sign + groupDigits(value, ' ', ',') + " zł"
	case "EUR":
		return sign + groupDigits(value, ' ', ',') + " €"
	case "USD":
		return sign + "$" + groupDigits(value, ',', '.')
	default:
		return sign + groupDigits(value, ',', '.') + " " + code
	}
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + groupDigits(math.Abs(amount), ',', '.')
}

func groupDigits(value float64, thousands, decimal rune) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteRune(thousands)
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + string(decimal) + decPart
}
