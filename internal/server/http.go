package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"StockDashboard/internal/collector"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"

	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// Server serves the dashboard page, chart images and a JSON metrics API.
type Server struct {
	Fetcher       collector.Fetcher
	Recorder      recorder.Recorder
	DefaultTicker string
	ChartSize     dashboard.ChartSize
}

// NewHTTPMux wires the dashboard routes.
func (s *Server) NewHTTPMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/renders", s.handleRenders)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) inputs(r *http.Request) dashboard.Inputs {
	q := r.URL.Query()
	return dashboard.Inputs{
		Ticker: q.Get("ticker"),
		Range:  model.TimeRange(q.Get("range")),
		View:   model.MetricView(q.Get("view")),
	}.Normalize(s.DefaultTicker)
}

// render runs one cycle and, when record is set, logs it. Errors carry the HTTP
// status to reply with. The chart image belongs to the page view that linked it,
// so chart requests are not recorded again.
func (s *Server) render(r *http.Request, in dashboard.Inputs, record bool) (*dashboard.Page, int, string) {
	cycleID := uuid.NewString()
	page, err := dashboard.Render(r.Context(), s.Fetcher, in)

	evt := &recorder.RenderEvent{
		CycleID:     cycleID,
		Timestamp:   time.Now(),
		Ticker:      in.Ticker,
		TimeRange:   string(in.Range),
		MetricView:  string(in.View),
		Source:      s.Fetcher.Name(),
		LatestPrice: math.NaN(),
		TotalReturn: math.NaN(),
	}
	status, msg := http.StatusOK, ""
	switch {
	case err == nil:
		evt.OK = true
		evt.Bars = page.Series.Len()
		evt.LatestPrice = page.Summary.LatestPrice
		evt.TotalReturn = page.Summary.TotalReturn
	case dashboard.IsNoData(err):
		status, msg = http.StatusNotFound, dashboard.NoDataMessage
		evt.Error = msg
		log.Info().Str("cycle", cycleID).Str("ticker", in.Ticker).Msg("no data for ticker")
	default:
		status, msg = http.StatusBadGateway, "Failed to load price data: "+err.Error()
		evt.Error = err.Error()
		log.Error().Err(err).Str("cycle", cycleID).Str("ticker", in.Ticker).Msg("render failed")
	}
	if !record {
		return page, status, msg
	}
	if recErr := s.Recorder.RecordRender(evt); recErr != nil {
		log.Warn().Err(recErr).Str("cycle", cycleID).Msg("record render")
	}
	return page, status, msg
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	in := s.inputs(r)
	page, status, msg := s.render(r, in, true)

	var buf bytes.Buffer
	if err := dashboard.WriteHTML(&buf, dashboard.NewHTMLData(in, page, msg)); err != nil {
		log.Error().Err(err).Msg("execute page template")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	in := s.inputs(r)
	page, status, msg := s.render(r, in, false)
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return
	}
	img, err := dashboard.RenderChart(page, s.ChartSize)
	if err != nil {
		log.Error().Err(err).Str("ticker", in.Ticker).Msg("render chart")
		http.Error(w, "chart error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Write(img)
}

// metricsResponse is the JSON shape of /api/metrics. Undefined values are null.
type metricsResponse struct {
	Ticker  string              `json:"ticker"`
	Range   model.TimeRange     `json:"range"`
	Source  string              `json:"source"`
	Summary map[string]*float64 `json:"summary"`
	KPIs    []dashboard.KPI     `json:"kpis"`
	Series  []metricsPoint      `json:"series"`
}

type metricsPoint struct {
	Date             string   `json:"date"`
	Close            float64  `json:"close"`
	DailyReturn      *float64 `json:"daily_return"`
	CumulativeReturn *float64 `json:"cumulative_return"`
	Volatility       *float64 `json:"volatility"`
	Drawdown         *float64 `json:"drawdown"`
}

func defined(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	in := s.inputs(r)
	page, status, msg := s.render(r, in, true)
	if status != http.StatusOK {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}

	sum := page.Summary
	resp := metricsResponse{
		Ticker: in.Ticker,
		Range:  in.Range,
		Source: page.Series.Source,
		Summary: map[string]*float64{
			"latest_price":          defined(sum.LatestPrice),
			"total_return":          defined(sum.TotalReturn),
			"avg_daily_return":      defined(sum.AvgDailyReturn),
			"annualized_volatility": defined(sum.AnnualizedVolatility),
			"max_drawdown":          defined(sum.MaxDrawdown),
		},
		KPIs:   page.KPIs,
		Series: make([]metricsPoint, page.Series.Len()),
	}
	d := page.Derived
	for i, b := range page.Series.Bars {
		resp.Series[i] = metricsPoint{
			Date:             b.Time.Format("2006-01-02"),
			Close:            b.Close,
			DailyReturn:      defined(d.DailyReturn[i]),
			CumulativeReturn: defined(d.CumulativeReturn[i]),
			Volatility:       defined(d.Volatility[i]),
			Drawdown:         defined(d.Drawdown[i]),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.Recorder.RecentRenders(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	type row struct {
		CycleID    string `json:"cycle_id"`
		Timestamp  string `json:"timestamp"`
		Ticker     string `json:"ticker"`
		TimeRange  string `json:"range"`
		MetricView string `json:"view"`
		OK         bool   `json:"ok"`
		Error      string `json:"error,omitempty"`
	}
	out := make([]row, 0, len(events))
	for _, e := range events {
		out = append(out, row{
			CycleID: e.CycleID, Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Ticker: e.Ticker, TimeRange: e.TimeRange, MetricView: e.MetricView, OK: e.OK, Error: e.Error,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode json response")
	}
}
