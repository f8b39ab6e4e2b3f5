package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/types"
)

const chartFixture = `{"chart":{"result":[{"meta":{"currency":"INR","symbol":"INFY.NS"},
"timestamp":[1717545600,1717372800,1717459200,1717632000],
"indicators":{"quote":[{
 "open":[1420.0,1400.0,1410.0,null],
 "high":[1430.0,1415.0,1425.0,1440.0],
 "low":[1415.0,1395.0,1405.0,1420.0],
 "close":[1425.5,1410.0,1420.0,1435.0],
 "volume":[1000,2000,1500,null]}]}}],"error":null}}`

const quoteFixture = `{"quoteResponse":{"result":[{"symbol":"INFY.NS","longName":"Infosys Limited",
"currency":"INR","fullExchangeName":"NSE","trailingPE":24.5,"epsTrailingTwelveMonths":63.2,
"fiftyTwoWeekHigh":1990.0,"fiftyTwoWeekLow":1350.0,"regularMarketPrice":1425.5}],"error":null}}`

const dividendFixture = `{"chart":{"result":[{"meta":{},"timestamp":[1],
"events":{"dividends":{"1685577600":{"amount":17.5,"date":1685577600},"1698796800":{"amount":18.0,"date":1698796800}}},
"indicators":{"quote":[{}]}}],"error":null}}`

func yahooServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") && r.URL.Query().Get("events") == "div":
			_, _ = w.Write([]byte(dividendFixture))
		case r.URL.Path == "/v8/finance/chart/INFY.NS":
			assert.Equal(t, "6mo", r.URL.Query().Get("range"))
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			_, _ = w.Write([]byte(chartFixture))
		case r.URL.Path == "/v7/finance/quote":
			_, _ = w.Write([]byte(quoteFixture))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestYahooFetchPriceSeries(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	y := NewYahoo(srv.URL, 5*time.Second)
	series, err := y.FetchPriceSeries(context.Background(), "INFY.NS", "6mo", "1d")
	require.NoError(t, err)

	// the bar with a null open is dropped and the rest come back ordered
	require.Equal(t, 3, series.Len())
	assert.NoError(t, series.Validate())
	assert.Equal(t, 1410.0, series.Bars[0].Close)
	assert.Equal(t, 1420.0, series.Bars[1].Close)
	assert.Equal(t, 1425.5, series.Bars[2].Close)
	assert.Equal(t, int64(2000), series.Bars[0].Volume)
}

func TestYahooUnknownSymbol(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	y := NewYahoo(srv.URL, 5*time.Second)
	_, err := y.FetchPriceSeries(context.Background(), "NOPE.NS", "6mo", "1d")
	assert.ErrorIs(t, err, types.ErrDataUnavailable)
}

func TestYahooFetchFundamentals(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	y := NewYahoo(srv.URL, 5*time.Second)
	f, err := y.FetchFundamentals(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.Equal(t, "Infosys Limited", f.CompanyName)
	assert.True(t, f.PERatio.Valid)
	assert.Equal(t, 24.5, f.PERatio.Float64)
	assert.False(t, f.MarketCap.Valid)
	require.Len(t, f.Dividends, 2)
	assert.Equal(t, 18.0, f.Dividends[0].Amount)
	assert.True(t, f.Dividends[0].Date.After(f.Dividends[1].Date))
}

type fakeKite struct {
	instruments kiteconnect.Instruments
	candles     []kiteconnect.HistoricalData
	gotToken    int
	gotInterval string
	loads       int
}

func (f *fakeKite) GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error) {
	f.loads++
	if exchange != "NSE" {
		return nil, errors.New("unexpected exchange")
	}
	return f.instruments, nil
}

func (f *fakeKite) GetHistoricalData(token int, interval string, from, to time.Time, continuous, oi bool) ([]kiteconnect.HistoricalData, error) {
	f.gotToken = token
	f.gotInterval = interval
	return f.candles, nil
}

func TestKiteFetchPriceSeries(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	fake := &fakeKite{
		instruments: kiteconnect.Instruments{
			{InstrumentToken: 408065, Tradingsymbol: "INFY"},
			{InstrumentToken: 738561, Tradingsymbol: "RELIANCE"},
		},
		candles: []kiteconnect.HistoricalData{
			{Open: 1400, High: 1410, Low: 1390, Close: 1405, Volume: 10},
			{Open: 1405, High: 1420, Low: 1400, Close: 1415, Volume: 20},
		},
	}
	fake.candles[0].Date.Time = day
	fake.candles[1].Date.Time = day.AddDate(0, 0, 1)

	k := newKite(fake, "NSE")
	k.now = func() time.Time { return day.AddDate(0, 0, 2) }

	series, err := k.FetchPriceSeries(context.Background(), "INFY.NS", "1mo", "1d")
	require.NoError(t, err)
	assert.Equal(t, 408065, fake.gotToken)
	assert.Equal(t, "day", fake.gotInterval)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 1415.0, series.Bars[1].Close)

	_, err = k.FetchPriceSeries(context.Background(), "RELIANCE", "1mo", "1d")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.loads)

	_, err = k.FetchPriceSeries(context.Background(), "UNKNOWN", "1mo", "1d")
	assert.ErrorIs(t, err, types.ErrDataUnavailable)

	_, err = k.FetchPriceSeries(context.Background(), "INFY", "1mo", "1wk")
	assert.Error(t, err)
}

func TestStaticIsDeterministicAndValid(t *testing.T) {
	now := time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC)
	s := &Static{now: func() time.Time { return now }}

	a, err := s.FetchPriceSeries(context.Background(), "TCS.NS", "6mo", "1d")
	require.NoError(t, err)
	b, err := s.FetchPriceSeries(context.Background(), "TCS.NS", "6mo", "1d")
	require.NoError(t, err)
	c, err := s.FetchPriceSeries(context.Background(), "INFY.NS", "6mo", "1d")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Bars[0].Close, c.Bars[0].Close)
	assert.NoError(t, a.Validate())
	assert.Greater(t, a.Len(), 100)
	for _, bar := range a.Bars {
		assert.NotEqual(t, time.Saturday, bar.Time.Weekday())
		assert.NotEqual(t, time.Sunday, bar.Time.Weekday())
	}

	f, err := s.FetchFundamentals(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.True(t, f.PERatio.Valid)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"5d":  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		"2wk": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		"6mo": time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC),
		"1y":  time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		"ytd": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for period, want := range tests {
		got, err := PeriodStart(now, period)
		require.NoError(t, err, period)
		assert.Equal(t, want, got, period)
	}

	for _, bad := range []string{"", "abc", "0d", "-1y", "6months"} {
		_, err := PeriodStart(now, bad)
		assert.Error(t, err, bad)
	}
}
