package collector

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"StockDashboard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// When Bars is set it is served for every ticker; otherwise a deterministic
// synthetic series around Price is generated. Tickers listed in Missing
// yield ErrNoData.
type MockFetcher struct {
	Price   float64
	Days    int
	Bars    []model.PriceBar
	Missing map[string]bool
	Err     error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchHistory has been invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker string, start *time.Time) (model.PriceSeries, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	if ticker == "" || m.Missing[ticker] {
		return model.PriceSeries{}, fmt.Errorf("mock %s: %w", ticker, ErrNoData)
	}
	var bars []model.PriceBar
	if m.Bars != nil {
		bars = make([]model.PriceBar, len(m.Bars))
		copy(bars, m.Bars)
	} else {
		days := m.Days
		if days <= 0 {
			days = 500
		}
		price := m.Price
		if price <= 0 {
			price = 2500
		}
		bars = generateMockBars(price, days, time.Now())
	}
	bars = normalizeBars(bars, start)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("mock %s: %w", ticker, ErrNoData)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, Source: m.Name(), FetchedAt: time.Now()}, nil
}

// generateMockBars produces count weekday bars ending before end with a gentle
// oscillating trend.
func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, 0, count)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for len(bars) < count {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		bars = append(bars, model.PriceBar{Time: day})
	}
	for i := range bars {
		// bars were collected newest first
		j := count - 1 - i
		p := basePrice * (1 + 0.0004*float64(j) + 0.03*math.Sin(float64(j)/9))
		bars[i].Open = p * 0.999
		bars[i].High = p * 1.005
		bars[i].Low = p * 0.995
		bars[i].Close = p
		bars[i].Volume = 1000000
	}
	return bars
}
