package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockDashboard/internal/model"

	"golang.org/x/time/rate"
)

// RESTFetcher implements Fetcher against a generic bar REST API:
//
//	GET {base}/api/v1/bars/daily?symbol=RELIANCE.NS&start=2023-01-01
//
// which answers with a JSON array of bars.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, requestsPerSecond int) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, ticker string, start *time.Time) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	if start != nil {
		q.Set("start", start.Format("2006-01-02"))
	}
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return model.PriceSeries{}, fmt.Errorf("rest rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, fmt.Errorf("rest %s: %w", ticker, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.PriceSeries{}, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.PriceSeries{}, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.PriceBar, 0, len(raw))
	for _, rb := range raw {
		if rb.Close == 0 {
			continue
		}
		bars = append(bars, model.PriceBar{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		})
	}
	bars = normalizeBars(bars, start)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("rest %s: %w", ticker, ErrNoData)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, Source: f.Name(), FetchedAt: time.Now()}, nil
}
