package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockDashboard/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeBars(t *testing.T) {
	start := day(2024, 1, 2)
	bars := []model.PriceBar{
		{Time: day(2024, 1, 4), Close: 4},
		{Time: day(2024, 1, 1), Close: 1},
		{Time: day(2024, 1, 3), Close: 3},
		{Time: day(2024, 1, 3).Add(2 * time.Hour), Close: 33},
		{Time: day(2024, 1, 2), Close: 2},
	}
	out := normalizeBars(bars, &start)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{2, 33, 4}, model.PriceSeries{Bars: out}.Closes())
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{Price: 100, Days: 300, Missing: map[string]bool{"BAD.NS": true}}

	s, err := m.FetchHistory(context.Background(), "GOOD.NS", nil)
	require.NoError(t, err)
	assert.Equal(t, 300, s.Len())
	assert.Equal(t, "mock", s.Source)
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Bars[i-1].Time.Before(s.Bars[i].Time), "bars must be ascending")
	}

	_, err = m.FetchHistory(context.Background(), "BAD.NS", nil)
	assert.ErrorIs(t, err, ErrNoData)

	future := time.Now().AddDate(1, 0, 0)
	_, err = m.FetchHistory(context.Background(), "GOOD.NS", &future)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 3, m.Calls())
}

const yahooOK = `{"chart":{"result":[{"meta":{"currency":"INR","symbol":"RELIANCE.NS","gmtoffset":19800},
"timestamp":[1704253500,1704339900,1704426300,1704685500],
"indicators":{"quote":[{"open":[2590,2600,null,2610],"high":[2600,2620,null,2630],
"low":[2580,2590,null,2600],"close":[2595.5,2610.25,null,2620],"volume":[100,200,null,300]}]}}],"error":null}}`

const yahooNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func TestYahooFetcher_FetchHistory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		fmt.Fprint(w, yahooOK)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 10)
	f.BaseURL = srv.URL
	start := day(2023, 1, 1)

	s, err := f.FetchHistory(context.Background(), "RELIANCE.NS", &start)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, fmt.Sprintf("period1=%d", start.Unix()))

	require.Equal(t, 3, s.Len(), "null bar is skipped")
	assert.Equal(t, []float64{2595.5, 2610.25, 2620}, s.Closes())
	assert.Equal(t, day(2024, 1, 3), s.Bars[0].Time)
	assert.Equal(t, "yahoo", s.Source)
}

func TestYahooFetcher_MaxUsesFullRange(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, yahooOK)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 10)
	f.BaseURL = srv.URL
	_, err := f.FetchHistory(context.Background(), "NIFTY", nil)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "range=max")
	assert.NotContains(t, gotQuery, "period1")
}

func TestYahooFetcher_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "MISSING") {
			w.WriteHeader(http.StatusNotFound)
		}
		fmt.Fprint(w, yahooNotFound)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 10)
	f.BaseURL = srv.URL

	_, err := f.FetchHistory(context.Background(), "MISSING.NS", nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = f.FetchHistory(context.Background(), "DELISTED.NS", nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = f.FetchHistory(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 10)
	f.BaseURL = srv.URL
	_, err := f.FetchHistory(context.Background(), "RELIANCE.NS", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoData))
}

func TestRESTFetcher_FetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("symbol") {
		case "TCS.NS":
			assert.Equal(t, "2021-01-01", r.URL.Query().Get("start"))
			fmt.Fprintf(w, `[{"timestamp":%d,"close":3010},{"timestamp":%d,"close":3000}]`,
				day(2024, 5, 3).Unix(), day(2024, 5, 2).Unix())
		case "EMPTY.NS":
			fmt.Fprint(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "", 5)
	start := day(2021, 1, 1)
	s, err := f.FetchHistory(context.Background(), "TCS.NS", &start)
	require.NoError(t, err)
	assert.Equal(t, []float64{3000, 3010}, s.Closes())

	_, err = f.FetchHistory(context.Background(), "EMPTY.NS", &start)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = f.FetchHistory(context.Background(), "NOPE.NS", &start)
	assert.ErrorIs(t, err, ErrNoData)
}

type fakeAlpaca struct {
	req  marketdata.GetBarsRequest
	bars []marketdata.Bar
	err  error
}

func (f *fakeAlpaca) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.req = req
	return f.bars, f.err
}

func TestAlpacaFetcher_FetchHistory(t *testing.T) {
	fake := &fakeAlpaca{bars: []marketdata.Bar{
		{Timestamp: day(2024, 2, 1), Close: 180, Volume: 10},
		{Timestamp: day(2024, 2, 2), Close: 185, Volume: 12},
	}}
	f := &AlpacaFetcher{client: fake}

	s, err := f.FetchHistory(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.Equal(t, marketdata.OneDay, fake.req.TimeFrame)
	assert.Equal(t, alpacaHistoryStart, fake.req.Start)
	assert.Equal(t, []float64{180, 185}, s.Closes())
	assert.Equal(t, 12.0, s.Bars[1].Volume)

	fake.bars = nil
	_, err = f.FetchHistory(context.Background(), "AAPL", nil)
	assert.ErrorIs(t, err, ErrNoData)

	fake.err = errors.New("forbidden")
	_, err = f.FetchHistory(context.Background(), "AAPL", nil)
	assert.ErrorContains(t, err, "forbidden")
}

func TestCachedFetcher(t *testing.T) {
	mock := &MockFetcher{Price: 100, Days: 50, Missing: map[string]bool{"BAD.NS": true}}
	c := NewCachedFetcher(mock)
	ctx := context.Background()
	start := day(2019, 1, 1)

	s1, err := c.FetchHistory(ctx, "A.NS", &start)
	require.NoError(t, err)
	s1.Bars[0].Close = -1 // mutating the copy must not leak into the cache

	s2, err := c.FetchHistory(ctx, "A.NS", &start)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, s2.Bars[0].Close)
	assert.Equal(t, 1, mock.Calls())

	_, err = c.FetchHistory(ctx, "A.NS", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls(), "different start is a different key")

	_, err = c.FetchHistory(ctx, "BAD.NS", nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = c.FetchHistory(ctx, "BAD.NS", nil)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 4, mock.Calls(), "failures are not cached")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "mock", c.Name())
}

func TestCachedFetcher_Concurrent(t *testing.T) {
	mock := &MockFetcher{Price: 100, Days: 30}
	c := NewCachedFetcher(mock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.FetchHistory(context.Background(), "X.NS", nil)
			assert.NoError(t, err)
			assert.Equal(t, 30, s.Len())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Warm(context.Background(), "X.NS", nil))
	assert.Equal(t, 1, c.Len())
}
