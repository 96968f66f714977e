package collector

import (
	"context"
	"errors"
	"sort"
	"time"

	"StockDashboard/internal/model"
)

// ErrNoData is returned when a ticker cannot be resolved or has no bars in the requested range.
var ErrNoData = errors.New("no data available")

// Fetcher defines the interface for fetching daily price history.
// A nil start means no lower bound. A successful result always holds at least
// one bar, sorted ascending by date with no duplicate dates.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker string, start *time.Time) (model.PriceSeries, error)
	Name() string
}

// normalizeBars sorts bars by date, keeps the last bar seen for each calendar
// date and drops bars before start.
func normalizeBars(bars []model.PriceBar, start *time.Time) []model.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		if start != nil && b.Time.Before(*start) {
			continue
		}
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startKey(start *time.Time) string {
	if start == nil {
		return ""
	}
	return start.Format("2006-01-02")
}
