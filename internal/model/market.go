package model

import (
	"math"
	"time"
)

// PriceBar represents a single daily bar. Only Close is used by the metrics engine.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily bars for one ticker, sorted ascending by date.
type PriceSeries struct {
	Ticker    string
	Bars      []PriceBar
	Source    string
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar dates.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Clone returns a deep copy so cached series are never shared mutably.
func (s PriceSeries) Clone() PriceSeries {
	c := s
	c.Bars = make([]PriceBar, len(s.Bars))
	copy(c.Bars, s.Bars)
	return c
}

// Undefined is the value used for "no value" entries in derived series.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v carries no value.
func IsUndefined(v float64) bool { return math.IsNaN(v) }
