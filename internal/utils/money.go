package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is prepended to every displayed price
const CurrencyPrefix = "£"

// FormatPrice renders a price with thousands separators and the currency
// prefix. Whole amounts carry no decimals, other amounts are shown to the penny.
func FormatPrice(price decimal.Decimal) string {
	sign := ""
	if price.IsNegative() {
		sign = "-"
		price = price.Neg()
	}

	rounded := price.Round(2)
	whole := rounded.Truncate(0)
	out := GroupThousands(whole.String())

	if !rounded.Equal(whole) {
		fixed := rounded.StringFixed(2)
		out += fixed[len(fixed)-3:]
	}
	return sign + CurrencyPrefix + out
}

// GroupThousands inserts a comma between every group of three digits
func GroupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
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
