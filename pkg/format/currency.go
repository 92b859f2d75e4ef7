// Package format renders numbers and currency amounts for display.
package format

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	p := message.NewPrinter(language.English)
	if amount < 0 {
		return "-$" + p.Sprintf("%.2f", -amount)
	}
	return "$" + p.Sprintf("%.2f", amount)
}

// Number renders a reference value with the shortest exact representation and
// no trailing zeros (e.g., 3.6, 0, 89.2).
func Number(value float64) string {
	if value == 0 {
		return "0"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
