package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockDashboard/internal/collector"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workedExampleBars() []model.PriceBar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, 0, 4)
	for i, c := range []float64{100, 110, 99, 108.9} {
		bars = append(bars, model.PriceBar{Time: start.AddDate(0, 0, i), Close: c})
	}
	return bars
}

func newTestServer(t *testing.T, f collector.Fetcher) (*httptest.Server, recorder.Recorder) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "renders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	s := &Server{
		Fetcher:       f,
		Recorder:      rec,
		DefaultTicker: "RELIANCE.NS",
		ChartSize:     dashboard.ChartSize{Width: 400, Height: 200},
	}
	ts := httptest.NewServer(s.NewHTTPMux())
	t.Cleanup(ts.Close)
	return ts, rec
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb bytes.Buffer
	_, err = sb.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, sb.String()
}

func TestPage(t *testing.T) {
	mock := &collector.MockFetcher{Bars: workedExampleBars(), Missing: map[string]bool{"NOPE": true}}
	ts, rec := newTestServer(t, mock)

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<b>RELIANCE.NS</b> | Time Range: <b>1Y</b>")
	assert.Contains(t, body, "₹ 108.9")
	assert.Contains(t, body, "RELIANCE stock moved from approximately ₹100 to ₹109")

	resp, body = get(t, ts.URL+"/?ticker=NOPE&range=MAX")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, dashboard.NoDataMessage)
	assert.NotContains(t, body, "Key Metrics")

	events, err := rec.RecentRenders(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "NOPE", events[0].Ticker)
	assert.False(t, events[0].OK)
	assert.True(t, events[1].OK)
	assert.Equal(t, 4, events[1].Bars)
	assert.NotEqual(t, events[0].CycleID, events[1].CycleID)
}

func TestPage_UpstreamFailure(t *testing.T) {
	ts, _ := newTestServer(t, &collector.MockFetcher{Err: errors.New("connection refused")})
	resp, body := get(t, ts.URL+"/?ticker=TCS.NS")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "connection refused")
}

func TestChart(t *testing.T) {
	ts, rec := newTestServer(t, &collector.MockFetcher{Price: 500, Days: 60, Missing: map[string]bool{"NOPE": true}})

	resp, body := get(t, ts.URL+"/chart.png?ticker=INFY.NS&view=Volatility")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))

	resp, _ = get(t, ts.URL+"/chart.png?ticker=NOPE")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	events, err := rec.RecentRenders(10)
	require.NoError(t, err)
	assert.Empty(t, events, "chart images are not logged as renders")
}

func TestPageViewRecordsOneRender(t *testing.T) {
	ts, rec := newTestServer(t, &collector.MockFetcher{Bars: workedExampleBars()})

	_, body := get(t, ts.URL+"/?ticker=INFY.NS&view=Drawdown")
	chartURL := dashboard.ChartURL(dashboard.Inputs{Ticker: "INFY.NS", Range: model.Range1Y, View: model.ViewDrawdown})
	assert.Contains(t, body, strings.ReplaceAll(chartURL, "&", "&amp;"))

	resp, _ := get(t, ts.URL+chartURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events, err := rec.RecentRenders(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "INFY.NS", events[0].Ticker)
}

func TestMetricsAPI(t *testing.T) {
	ts, _ := newTestServer(t, &collector.MockFetcher{Bars: workedExampleBars(), Missing: map[string]bool{"NOPE": true}})

	resp, body := get(t, ts.URL+"/api/metrics?ticker=DEMO.NS&range=5y")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Ticker  string              `json:"ticker"`
		Range   string              `json:"range"`
		Summary map[string]*float64 `json:"summary"`
		Series  []struct {
			Date        string   `json:"date"`
			DailyReturn *float64 `json:"daily_return"`
			Volatility  *float64 `json:"volatility"`
			Drawdown    *float64 `json:"drawdown"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "DEMO.NS", got.Ticker)
	assert.Equal(t, "5Y", got.Range)
	require.NotNil(t, got.Summary["total_return"])
	assert.InDelta(t, 0.089, *got.Summary["total_return"], 1e-9)
	assert.InDelta(t, -0.1, *got.Summary["max_drawdown"], 1e-9)
	require.Len(t, got.Series, 4)
	assert.Equal(t, "2024-03-01", got.Series[0].Date)
	assert.Nil(t, got.Series[0].DailyReturn)
	assert.Nil(t, got.Series[3].Volatility)
	require.NotNil(t, got.Series[2].Drawdown)
	assert.InDelta(t, -0.1, *got.Series[2].Drawdown, 1e-9)

	resp, body = get(t, ts.URL+"/api/metrics?ticker=NOPE")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, dashboard.NoDataMessage)
}

func TestRendersAndHealth(t *testing.T) {
	ts, _ := newTestServer(t, &collector.MockFetcher{Bars: workedExampleBars()})
	get(t, ts.URL+"/?ticker=A.NS")
	get(t, ts.URL+"/?ticker=B.NS")

	resp, body := get(t, ts.URL+"/api/renders?limit=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "B.NS", rows[0]["ticker"])

	resp, body = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}
