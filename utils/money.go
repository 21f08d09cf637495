package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with two decimals and comma thousands
// separators, prefixed by the currency code: "ETB 1,234.50".
func FormatMoney(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(currency) + 2)
	if currency != "" {
		b.WriteString(currency)
		b.WriteByte(' ')
	}
	if neg {
		b.WriteByte('-')
	}
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
