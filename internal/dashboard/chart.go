package dashboard

import (
	"errors"
	"math"

	"github.com/vicanso/go-charts/v2"
)

// ChartSize is the PNG size in pixels.
type ChartSize struct {
	Width  int
	Height int
}

// DefaultChartSize matches a wide 13x5 figure.
var DefaultChartSize = ChartSize{Width: 1300, Height: 500}

// RenderChart draws the page's selected series as a PNG line chart over the
// date axis. Undefined points are left as gaps.
func RenderChart(p *Page, size ChartSize) ([]byte, error) {
	if p == nil || len(p.Points) == 0 {
		return nil, errors.New("no points to chart")
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultChartSize
	}

	dates := p.Series.Dates()
	x := make([]string, len(dates))
	for i, d := range dates {
		x[i] = d.Format("2006-01-02")
	}

	values := make([]float64, len(p.Points))
	var yMin, yMax float64
	seen := false
	for i, v := range p.Points {
		if undefined(v) {
			values[i] = charts.GetNullValue()
			continue
		}
		values[i] = v
		if !seen || v < yMin {
			yMin = v
		}
		if !seen || v > yMax {
			yMax = v
		}
		seen = true
	}
	if !seen {
		yMin, yMax = 0, 1
	}
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 0.01
		if yMax != 0 {
			pad = math.Abs(yMax) * 0.01
		}
	}
	yMin -= pad
	yMax += pad

	split := 10
	if len(x) < split {
		split = len(x)
	}

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(p.Inputs.Ticker+" • "+string(p.View.Kind), p.View.YLabel),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: x, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(size.Width),
		charts.HeightOptionFunc(size.Height),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}
