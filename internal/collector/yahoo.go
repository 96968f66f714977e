package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockDashboard/internal/model"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps user ticker to Yahoo ticker
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. requestsPerSecond
// bounds outbound calls; values below 1 are treated as 1.
func NewYahooFetcher(proxyURL string, requestsPerSecond int) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &YahooFetcher{
		BaseURL: defaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"NIFTY":     "^NSEI",
			"NIFTY50":   "^NSEI",
			"SENSEX":    "^BSESN",
			"BANKNIFTY": "^NSEBANK",
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(ticker string) string {
	if mapped, ok := f.SymbolMap[ticker]; ok {
		return mapped
	}
	return ticker
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency  string `json:"currency"`
				Symbol    string `json:"symbol"`
				GmtOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func at(vals []interface{}, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	v, _ := toFloat(vals[i])
	return v
}

func (f *YahooFetcher) chartURL(ticker string, start *time.Time) string {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d", f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)))
	if start == nil {
		return u + "&range=max"
	}
	return fmt.Sprintf("%s&period1=%d&period2=%d", u, start.Unix(), time.Now().Unix())
}

// FetchHistory downloads daily bars from start (or the full history when start is nil).
func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker string, start *time.Time) (model.PriceSeries, error) {
	if ticker == "" {
		return model.PriceSeries{}, fmt.Errorf("yahoo: empty ticker: %w", ErrNoData)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return model.PriceSeries{}, fmt.Errorf("yahoo rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", f.chartURL(ticker, start), nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceSeries{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %s: %w", ticker, chart.Chart.Error.Description, ErrNoData)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		c, ok := toFloat(quote.Close[i])
		if !ok {
			continue // null bar (holiday, suspension)
		}
		// Shift to exchange-local time so the bar lands on its trading date.
		local := time.Unix(ts+result.Meta.GmtOffset, 0).UTC()
		bars = append(bars, model.PriceBar{
			Time:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	bars = normalizeBars(bars, start)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}
	log.Debug().Str("ticker", ticker).Int("bars", len(bars)).Str("currency", result.Meta.Currency).Msg("yahoo history fetched")

	return model.PriceSeries{
		Ticker:    ticker,
		Bars:      bars,
		Source:    f.Name(),
		FetchedAt: time.Now(),
	}, nil
}
