package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/api"
	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo reads the public chart and quote endpoints.
type Yahoo struct {
	client *api.Client
}

var (
	_ interfaces.PriceProvider        = (*Yahoo)(nil)
	_ interfaces.FundamentalsProvider = (*Yahoo)(nil)
)

func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &Yahoo{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
		),
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) fetchChart(ctx context.Context, symbol, rng, interval string, withDividends bool) (*yahooChart, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)
	if withDividends {
		q.Set("events", "div")
	}
	path := fmt.Sprintf("/v8/finance/chart/%s?%s", url.PathEscape(symbol), q.Encode())

	var chart yahooChart
	if err := y.client.GetJSON(ctx, path, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo chart %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo chart %s: %s", types.ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart %s: empty result", types.ErrDataUnavailable, symbol)
	}
	return &chart, nil
}

func at[T any](vals []*T, i int) (T, bool) {
	var zero T
	if i >= len(vals) || vals[i] == nil {
		return zero, false
	}
	return *vals[i], true
}

// FetchPriceSeries returns daily bars; bars with missing prices are skipped.
func (y *Yahoo) FetchPriceSeries(ctx context.Context, symbol, period, interval string) (types.PriceSeries, error) {
	chart, err := y.fetchChart(ctx, symbol, period, interval, false)
	if err != nil {
		return types.PriceSeries{}, err
	}
	res := chart.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return types.PriceSeries{}, fmt.Errorf("%w: yahoo returned no bars for %s", types.ErrDataUnavailable, symbol)
	}
	quote := res.Indicators.Quote[0]

	bars := make([]types.Bar, 0, len(res.Timestamp))
	skipped := 0
	for i, ts := range res.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !(ok1 && ok2 && ok3 && ok4) {
			skipped++
			continue
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, types.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return types.PriceSeries{}, fmt.Errorf("%w: no usable bars for %s", types.ErrDataUnavailable, symbol)
	}
	if skipped > 0 {
		logger.Debug(ctx, "Skipped incomplete bars", "symbol", symbol, "skipped", skipped)
	}
	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                      string   `json:"symbol"`
			LongName                    string   `json:"longName"`
			ShortName                   string   `json:"shortName"`
			Currency                    string   `json:"currency"`
			FullExchangeName            string   `json:"fullExchangeName"`
			TrailingPE                  *float64 `json:"trailingPE"`
			EPSTrailingTwelveMonths     *float64 `json:"epsTrailingTwelveMonths"`
			MarketCap                   *float64 `json:"marketCap"`
			TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"`
			FiftyTwoWeekHigh            *float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow             *float64 `json:"fiftyTwoWeekLow"`
			RegularMarketPrice          *float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// FetchFundamentals reads the quote endpoint and, best effort, the dividend history.
func (y *Yahoo) FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	var q yahooQuote
	if err := y.client.GetJSON(ctx, "/v7/finance/quote?symbols="+url.QueryEscape(symbol), &q); err != nil {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo quote %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	if q.QuoteResponse.Error != nil {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo quote %s: %s", types.ErrDataUnavailable, symbol, q.QuoteResponse.Error.Description)
	}
	if len(q.QuoteResponse.Result) == 0 {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo has no quote for %s", types.ErrDataUnavailable, symbol)
	}
	r := q.QuoteResponse.Result[0]

	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	f := types.Fundamentals{
		Symbol:        symbol,
		CompanyName:   name,
		Exchange:      r.FullExchangeName,
		Currency:      r.Currency,
		PERatio:       positive(r.TrailingPE),
		EPS:           null.FloatFromPtr(r.EPSTrailingTwelveMonths),
		MarketCap:     positive(r.MarketCap),
		DividendYield: null.FloatFromPtr(r.TrailingAnnualDividendYield),
		High52W:       positive(r.FiftyTwoWeekHigh),
		Low52W:        positive(r.FiftyTwoWeekLow),
		CurrentPrice:  positive(r.RegularMarketPrice),
	}

	divs, err := y.FetchDividends(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Dividend history unavailable", "symbol", symbol, "error", err)
	}
	f.Dividends = divs
	return f, nil
}

// positive treats missing and non-positive values as unavailable.
func positive(v *float64) null.Float {
	if v == nil || *v <= 0 {
		return null.Float{}
	}
	return null.FloatFrom(*v)
}

// FetchDividends returns cash dividends over the last five years, newest first.
func (y *Yahoo) FetchDividends(ctx context.Context, symbol string) ([]types.DividendEvent, error) {
	chart, err := y.fetchChart(ctx, symbol, "5y", "1mo", true)
	if err != nil {
		return nil, err
	}
	raw := chart.Chart.Result[0].Events.Dividends
	out := make([]types.DividendEvent, 0, len(raw))
	for key, d := range raw {
		ts := d.Date
		if ts == 0 {
			ts, _ = strconv.ParseInt(key, 10, 64)
		}
		out = append(out, types.DividendEvent{Date: time.Unix(ts, 0).UTC(), Amount: d.Amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
