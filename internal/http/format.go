package http

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Prices are shown in rupees with Indian digit grouping.
var priceLocale = language.MustParse("en-IN")

// FormatPrice renders v in en-IN form with at most three fraction digits.
func FormatPrice(v float64) string {
	p := message.NewPrinter(priceLocale)
	return p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}
