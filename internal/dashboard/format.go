package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	currencySymbol = "₹"
	notAvailable   = "N/A"
)

func undefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// FormatPrice renders a KPI price: currency symbol, comma grouping, one decimal.
func FormatPrice(v float64) string {
	if undefined(v) {
		return notAvailable
	}
	return currencySymbol + " " + groupDecimal(v, 1)
}

// formatRupees renders a whole-rupee amount for observation text, e.g. ₹2,456.
func formatRupees(v float64) string {
	if undefined(v) {
		return notAvailable
	}
	return currencySymbol + groupDecimal(v, 0)
}

// groupDecimal rounds v to the given decimals and comma-groups the integer part.
// A value that rounds to zero carries no minus sign.
func groupDecimal(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	out := intPart
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		out = humanize.Comma(n)
	}
	if hasFrac {
		out += "." + frac
	}
	if neg && strings.Trim(s, "0.") != "" {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a fraction as a percentage with the given decimals.
func FormatPercent(fraction float64, decimals int) string {
	if undefined(fraction) {
		return notAvailable
	}
	return fmt.Sprintf("%.*f%%", decimals, fraction*100)
}

// StockName strips the NSE suffix from a ticker for display.
func StockName(ticker string) string {
	return strings.ReplaceAll(ticker, ".NS", "")
}
