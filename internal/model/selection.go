package model

import (
	"strings"
	"time"
)

// TimeRange is the look-back window selected by the user.
type TimeRange string

const (
	Range1Y  TimeRange = "1Y"
	Range3Y  TimeRange = "3Y"
	Range5Y  TimeRange = "5Y"
	RangeMax TimeRange = "MAX"
)

// TimeRanges lists the selectable ranges in display order.
var TimeRanges = []TimeRange{Range1Y, Range3Y, Range5Y, RangeMax}

// rangeStarts is the fixed start-date lookup. MAX has no lower bound.
var rangeStarts = map[TimeRange]string{
	Range1Y: "2023-01-01",
	Range3Y: "2021-01-01",
	Range5Y: "2019-01-01",
}

// Start returns the first date of the range, or nil for no lower bound.
func (r TimeRange) Start() *time.Time {
	s, ok := rangeStarts[r]
	if !ok {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// Valid reports whether r is one of the selectable ranges.
func (r TimeRange) Valid() bool {
	for _, v := range TimeRanges {
		if v == r {
			return true
		}
	}
	return false
}

// ParseTimeRange maps user input to a TimeRange, falling back to 1Y.
func ParseTimeRange(s string) TimeRange {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return Range1Y
}

// MetricView is the chart selected by the user.
type MetricView string

const (
	ViewClosingPrice      MetricView = "Closing Price"
	ViewCumulativeReturns MetricView = "Cumulative Returns"
	ViewDailyReturns      MetricView = "Daily Returns"
	ViewVolatility        MetricView = "Volatility"
	ViewDrawdown          MetricView = "Drawdown"
)

// MetricViews lists the selectable views in display order.
var MetricViews = []MetricView{
	ViewClosingPrice,
	ViewCumulativeReturns,
	ViewDailyReturns,
	ViewVolatility,
	ViewDrawdown,
}

// ParseMetricView matches user input case-insensitively, falling back to Closing Price.
func ParseMetricView(s string) MetricView {
	s = strings.TrimSpace(s)
	for _, v := range MetricViews {
		if strings.EqualFold(string(v), s) {
			return v
		}
	}
	return ViewClosingPrice
}
