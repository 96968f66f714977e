package model

// DerivedSeries holds the per-bar metrics, index-aligned with the PriceSeries
// they were computed from. Undefined entries are NaN.
type DerivedSeries struct {
	DailyReturn      []float64
	CumulativeReturn []float64
	Volatility       []float64 // trailing 20-bar sample std of DailyReturn
	Drawdown         []float64 // always <= 0
}

// Len returns the number of aligned entries.
func (d DerivedSeries) Len() int { return len(d.DailyReturn) }

// SummaryStats holds the five scalar KPIs of a series.
type SummaryStats struct {
	LatestPrice          float64
	TotalReturn          float64
	AvgDailyReturn       float64
	AnnualizedVolatility float64
	MaxDrawdown          float64
}
