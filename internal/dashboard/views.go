package dashboard

import (
	"fmt"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/model"
)

// Observation is the data an observation template can draw on.
type Observation struct {
	StockName string
	Range     model.TimeRange
	Series    model.PriceSeries
	Derived   model.DerivedSeries
	Summary   model.SummaryStats
}

// View describes one selectable chart: which series it plots and how it is narrated.
type View struct {
	Kind    model.MetricView
	YLabel  string
	Series  func(model.PriceSeries, model.DerivedSeries) []float64
	Observe func(Observation) string
}

var views = []View{
	{
		Kind:   model.ViewClosingPrice,
		YLabel: "Price",
		Series: func(s model.PriceSeries, _ model.DerivedSeries) []float64 { return s.Closes() },
		Observe: func(o Observation) string {
			start, end, change := calculator.PriceChange(o.Series)
			return fmt.Sprintf("%s stock moved from approximately %s to %s over the selected period, "+
				"representing a %s change in price. This reflects the overall direction and strength of the stock’s trend.",
				o.StockName, formatRupees(start), formatRupees(end), FormatPercent(change, 1))
		},
	},
	{
		Kind:   model.ViewCumulativeReturns,
		YLabel: "Cumulative Return",
		Series: func(_ model.PriceSeries, d model.DerivedSeries) []float64 { return d.CumulativeReturn },
		Observe: func(o Observation) string {
			return fmt.Sprintf("%s stock has delivered approximately %s cumulative returns over the selected %s period, "+
				"indicating long-term wealth creation.",
				o.StockName, FormatPercent(o.Summary.TotalReturn, 1), o.Range)
		},
	},
	{
		Kind:   model.ViewDailyReturns,
		YLabel: "Daily Return",
		Series: func(_ model.PriceSeries, d model.DerivedSeries) []float64 { return d.DailyReturn },
		Observe: func(o Observation) string {
			low, high := calculator.Range(o.Derived.DailyReturn)
			return fmt.Sprintf("%s stock’s daily returns ranged between %s and %s, "+
				"highlighting short-term price volatility during the period.",
				o.StockName, FormatPercent(low, 2), FormatPercent(high, 2))
		},
	},
	{
		Kind:   model.ViewVolatility,
		YLabel: "Rolling Volatility (20D)",
		Series: func(_ model.PriceSeries, d model.DerivedSeries) []float64 { return d.Volatility },
		Observe: func(o Observation) string {
			low, high := calculator.Range(o.Derived.Volatility)
			return fmt.Sprintf("%s stock’s rolling volatility ranged between %s and %s, "+
				"indicating varying levels of risk and market uncertainty.",
				o.StockName, FormatPercent(low, 2), FormatPercent(high, 2))
		},
	},
	{
		Kind:   model.ViewDrawdown,
		YLabel: "Drawdown",
		Series: func(_ model.PriceSeries, d model.DerivedSeries) []float64 { return d.Drawdown },
		Observe: func(o Observation) string {
			return fmt.Sprintf("%s stock experienced a maximum drawdown of %s, "+
				"representing the worst historical loss an investor could have faced.",
				o.StockName, FormatPercent(o.Summary.MaxDrawdown, 1))
		},
	},
}

// ViewFor returns the view for kind, defaulting to Closing Price.
func ViewFor(kind model.MetricView) View {
	for _, v := range views {
		if v.Kind == kind {
			return v
		}
	}
	return views[0]
}
