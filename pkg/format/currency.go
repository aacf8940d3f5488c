// Package format renders monetary figures for the terminal, CSV and PDF outputs.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RupeeSymbol prefixes every monetary figure.
const RupeeSymbol = "₹"

// LakhSuffix follows figures reported in lakhs.
const LakhSuffix = " Lacs"

var printer = message.NewPrinter(language.English)

// Lakhs returns a figure in lakhs with a rupee sign and thousands separators (e.g., "-₹1,234 Lacs").
func Lakhs(amount int64) string {
	return signed(amount < 0, Grouped(abs(amount))) + LakhSuffix
}

// NumericLakhs returns a figure in lakhs with separators but no symbol or suffix (e.g., "-1,234").
func NumericLakhs(amount int64) string {
	if amount < 0 {
		return "-" + Grouped(abs(amount))
	}
	return Grouped(amount)
}

// Rupees returns a per-share price with a rupee sign; whole amounts omit the decimals.
func Rupees(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	magnitude := rounded.Abs()
	var body string
	if magnitude.IsInteger() {
		body = Grouped(magnitude.IntPart())
	} else {
		f, _ := magnitude.Float64()
		body = printer.Sprintf("%.2f", f)
	}
	return signed(rounded.IsNegative(), body)
}

// Count returns a whole number of options with separators. Fractional
// options from percentage selections are truncated.
func Count(options float64) string {
	return Grouped(int64(options))
}

// Grouped formats an integer with thousands separators.
func Grouped(n int64) string {
	return printer.Sprintf("%d", n)
}

func signed(negative bool, body string) string {
	if negative {
		return "-" + RupeeSymbol + body
	}
	return RupeeSymbol + body
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
