package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/model"
)

// NoDataMessage is shown when the ticker cannot be resolved or has no bars.
const NoDataMessage = "Invalid ticker or no data available."

// Inputs are the three user selections driving one render cycle.
type Inputs struct {
	Ticker string
	Range  model.TimeRange
	View   model.MetricView
}

// Normalize fills defaults for empty or unknown selections.
func (in Inputs) Normalize(defaultTicker string) Inputs {
	in.Ticker = strings.TrimSpace(in.Ticker)
	if in.Ticker == "" {
		in.Ticker = defaultTicker
	}
	in.Range = model.ParseTimeRange(string(in.Range))
	in.View = model.ParseMetricView(string(in.View))
	return in
}

// KPI is one formatted summary tile.
type KPI struct {
	Label string
	Value string
}

// Page is everything the presentation layer needs for one render cycle.
type Page struct {
	Inputs      Inputs
	StockName   string
	Series      model.PriceSeries
	Derived     model.DerivedSeries
	Summary     model.SummaryStats
	KPIs        []KPI
	View        View
	Points      []float64
	Observation string
}

// IsNoData reports whether err means the ticker has no data.
func IsNoData(err error) bool {
	return errors.Is(err, collector.ErrNoData)
}

// Render runs one render cycle: fetch, compute metrics, then build the page.
// A ticker without data yields an error satisfying IsNoData; nothing is
// computed in that case.
func Render(ctx context.Context, fetcher collector.Fetcher, in Inputs) (*Page, error) {
	series, err := fetcher.FetchHistory(ctx, in.Ticker, in.Range.Start())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", in.Ticker, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("fetch %s: %w", in.Ticker, collector.ErrNoData)
	}
	return Build(series, in), nil
}

// Build computes the derived metrics and presentation for an already fetched, non-empty series.
func Build(series model.PriceSeries, in Inputs) *Page {
	derived := calculator.ComputeDerived(series)
	summary := calculator.ComputeSummary(series, derived)
	view := ViewFor(in.View)
	name := StockName(in.Ticker)

	return &Page{
		Inputs:    in,
		StockName: name,
		Series:    series,
		Derived:   derived,
		Summary:   summary,
		KPIs:      KPIs(summary),
		View:      view,
		Points:    view.Series(series, derived),
		Observation: view.Observe(Observation{
			StockName: name,
			Range:     in.Range,
			Series:    series,
			Derived:   derived,
			Summary:   summary,
		}),
	}
}

// KPIs formats the five summary tiles in display order.
func KPIs(s model.SummaryStats) []KPI {
	return []KPI{
		{Label: "Latest Price", Value: FormatPrice(s.LatestPrice)},
		{Label: "Total Return", Value: FormatPercent(s.TotalReturn, 1)},
		{Label: "Avg Daily Return", Value: FormatPercent(s.AvgDailyReturn, 2)},
		{Label: "Annualized Volatility", Value: FormatPercent(s.AnnualizedVolatility, 1)},
		{Label: "Max Drawdown", Value: FormatPercent(s.MaxDrawdown, 1)},
	}
}
