package calculator

import (
	"math"

	"StockDashboard/internal/model"
)

// Range scans values and returns the lowest and highest defined entries.
// Both are NaN when no entry is defined.
func Range(values []float64) (low, high float64) {
	low = math.Inf(1)
	high = math.Inf(-1)
	found := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		found = true
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	if !found {
		return model.Undefined(), model.Undefined()
	}
	return low, high
}

// PriceChange returns the fractional change from the first to the last close.
func PriceChange(series model.PriceSeries) (start, end, change float64) {
	n := series.Len()
	if n == 0 {
		return model.Undefined(), model.Undefined(), model.Undefined()
	}
	start = series.Bars[0].Close
	end = series.Bars[n-1].Close
	return start, end, (end - start) / start
}
