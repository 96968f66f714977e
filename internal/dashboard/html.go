package dashboard

import (
	"embed"
	"html/template"
	"io"
	"net/url"

	"StockDashboard/internal/model"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// HTMLData feeds the page template. Error, when set, replaces everything below the selector.
type HTMLData struct {
	Inputs   Inputs
	Page     *Page
	Error    string
	ChartURL string
	Ranges   []model.TimeRange
	Views    []model.MetricView
}

// NewHTMLData prepares template data for a rendered page or an error message.
func NewHTMLData(in Inputs, p *Page, errMsg string) HTMLData {
	return HTMLData{
		Inputs:   in,
		Page:     p,
		Error:    errMsg,
		ChartURL: ChartURL(in),
		Ranges:   model.TimeRanges,
		Views:    model.MetricViews,
	}
}

// ChartURL is the image link for the selected inputs.
func ChartURL(in Inputs) string {
	q := url.Values{}
	q.Set("ticker", in.Ticker)
	q.Set("range", string(in.Range))
	q.Set("view", string(in.View))
	return "/chart.png?" + q.Encode()
}

// WriteHTML renders the dashboard page.
func WriteHTML(w io.Writer, data HTMLData) error {
	return pageTemplate.Execute(w, data)
}
