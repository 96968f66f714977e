package collector

import (
	"context"
	"fmt"
	"time"

	"StockDashboard/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaHistoryStart is the earliest date requested when no lower bound is given.
var alpacaHistoryStart = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca market data daily bars.
type AlpacaFetcher struct {
	client alpacaBarsClient
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchHistory(ctx context.Context, ticker string, start *time.Time) (model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	from := alpacaHistoryStart
	if start != nil {
		from = *start
	}
	raw, err := f.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     from,
		End:       time.Now(),
	})
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("alpaca bars %s: %w", ticker, err)
	}

	bars := make([]model.PriceBar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, model.PriceBar{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	bars = normalizeBars(bars, start)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("alpaca %s: %w", ticker, ErrNoData)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, Source: f.Name(), FetchedAt: time.Now()}, nil
}
