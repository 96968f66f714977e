package calculator

import (
	"math"

	"StockDashboard/internal/model"

	"gonum.org/v1/gonum/stat"
)

const (
	// VolatilityWindow is the number of trailing daily returns in each rolling volatility sample.
	VolatilityWindow = 20
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252
)

// ComputeDerived computes daily returns, compounded cumulative returns, rolling
// volatility and drawdown for every bar of the series. Entries that have no
// value are NaN; numeric problems such as a zero close propagate as NaN/Inf.
func ComputeDerived(series model.PriceSeries) model.DerivedSeries {
	closes := series.Closes()
	n := len(closes)
	d := model.DerivedSeries{
		DailyReturn:      make([]float64, n),
		CumulativeReturn: make([]float64, n),
		Volatility:       make([]float64, n),
		Drawdown:         make([]float64, n),
	}
	if n == 0 {
		return d
	}

	d.DailyReturn[0] = model.Undefined()
	d.CumulativeReturn[0] = model.Undefined()
	growth := 1.0
	for i := 1; i < n; i++ {
		r := (closes[i] - closes[i-1]) / closes[i-1]
		d.DailyReturn[i] = r
		growth *= 1 + r
		d.CumulativeReturn[i] = growth
	}

	for i := 0; i < n; i++ {
		d.Volatility[i] = rollingStdDev(d.DailyReturn, i, VolatilityWindow)
	}

	peak := closes[0]
	for i, c := range closes {
		if c > peak {
			peak = c
		}
		d.Drawdown[i] = (c - peak) / peak
	}
	return d
}

// rollingStdDev returns the sample standard deviation of the window values
// ending at end (inclusive). It is NaN when the window reaches index 0 or
// contains a NaN.
func rollingStdDev(returns []float64, end, window int) float64 {
	start := end - window + 1
	if start < 1 {
		return model.Undefined()
	}
	sample := returns[start : end+1]
	for _, v := range sample {
		if math.IsNaN(v) {
			return model.Undefined()
		}
	}
	return stat.StdDev(sample, nil)
}

// ComputeSummary reduces a series and its derived metrics to the five KPIs.
// With fewer than two bars every return-based figure is NaN. The annualized
// volatility additionally needs two defined returns (three bars).
func ComputeSummary(series model.PriceSeries, derived model.DerivedSeries) model.SummaryStats {
	s := model.SummaryStats{
		LatestPrice:          model.Undefined(),
		TotalReturn:          model.Undefined(),
		AvgDailyReturn:       model.Undefined(),
		AnnualizedVolatility: model.Undefined(),
		MaxDrawdown:          model.Undefined(),
	}
	n := series.Len()
	if n == 0 {
		return s
	}
	s.LatestPrice = series.Bars[n-1].Close

	if last := derived.Len() - 1; last >= 0 {
		s.TotalReturn = derived.CumulativeReturn[last] - 1
	}

	returns := Defined(derived.DailyReturn)
	if len(returns) > 0 {
		s.AvgDailyReturn = stat.Mean(returns, nil)
	}
	if len(returns) > 1 {
		s.AnnualizedVolatility = stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
	}

	s.MaxDrawdown, _ = Range(derived.Drawdown)
	return s
}

// Defined returns the entries of values that are not NaN.
func Defined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
