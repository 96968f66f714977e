package recorder

import "time"

// RenderEvent describes one dashboard render cycle. No price data is stored.
type RenderEvent struct {
	CycleID     string
	Timestamp   time.Time
	Ticker      string
	TimeRange   string
	MetricView  string
	Source      string
	Bars        int
	LatestPrice float64
	TotalReturn float64
	OK          bool
	Error       string
}

// Recorder keeps a usage log of render cycles.
type Recorder interface {
	RecordRender(evt *RenderEvent) error
	RecentRenders(limit int) ([]RenderEvent, error)
	Close() error
}
