// Package marketdata fetches security prices and company data from the Yahoo
// Finance chart API. It is a read-only external collaborator: consulted
// opportunistically and never in the commit path of a mutation or merge.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL points at the public Yahoo Finance chart endpoint. Override
// via NewFinanceClientWithBaseURL in tests or for a proxy.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client is the market data provider contract consumed by the rest of the
// application. FinanceClient is the production implementation; tests supply
// mocks.
type Client interface {
	// Quote fetches the latest known price and company metadata for a symbol.
	Quote(ctx context.Context, symbol string) (Quote, error)

	// History fetches daily price data for a symbol within a date range.
	History(ctx context.Context, symbol string, start, end time.Time) (PriceChart, error)

	// DailyCloses fetches only the closing prices for a symbol within a date
	// range, in date order.
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]float64, error)
}

// FinanceClient implements Client against the Yahoo Finance chart API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewFinanceClient creates a client against the public endpoint with a
// conservative request timeout.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithBaseURL(DefaultBaseURL)
}

// NewFinanceClientWithBaseURL creates a client against a specific endpoint.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// SetAPIKey attaches an API key sent with every request. The public endpoint
// does not require one; a proxy deployment may.
func (c *FinanceClient) SetAPIKey(key string) {
	c.apiKey = key
}

// Quote fetches five days of daily data and reduces it to the latest state:
// regular market price when present, otherwise the most recent close.
func (c *FinanceClient) Quote(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.query(ctx, url)
	if err != nil {
		return Quote{}, err
	}

	chart, err := ParseChart(result)
	if err != nil {
		return Quote{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	price := chart.MarketPrice
	if price == 0 && len(chart.Bars) > 0 {
		price = chart.Bars[len(chart.Bars)-1].PriceClose
	}

	name := chart.LongName
	if name == "" {
		name = chart.ShortName
	}

	return Quote{
		Ticker:       chart.Symbol,
		CompanyName:  name,
		Currency:     chart.Currency,
		Exchange:     chart.ExchangeName,
		CurrentPrice: price,
	}, nil
}

// History fetches daily price data for an arbitrary date range using the
// period-based query format with Unix timestamps.
func (c *FinanceClient) History(ctx context.Context, symbol string, start, end time.Time) (PriceChart, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, symbol, start.Unix(), end.Unix())
	result, err := c.query(ctx, url)
	if err != nil {
		return PriceChart{}, err
	}
	return ParseChart(result)
}

// DailyCloses fetches a symbol's closing prices for a date range.
func (c *FinanceClient) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
	chart, err := c.History(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return chart.Closes(), nil
}

// ParseChart converts a raw chart API response into a structured price chart.
// It validates that timestamps and close prices are present and that the data
// arrays line up.
func ParseChart(raw Response) (PriceChart, error) {
	if len(raw.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := raw.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	quote := result.Indicators.Quote[0]
	bars := make([]DayBar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars[i] = DayBar{
			Date:       time.Unix(ts, 0).UTC(),
			PriceClose: quote.Close[i],
		}
		if i < len(quote.Open) {
			bars[i].PriceOpen = quote.Open[i]
		}
		if i < len(quote.High) {
			bars[i].PriceHigh = quote.High[i]
		}
		if i < len(quote.Low) {
			bars[i].PriceLow = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bars[i].Volume = quote.Volume[i]
		}
	}

	return PriceChart{
		Currency:     result.Meta.Currency,
		Symbol:       result.Meta.Symbol,
		ExchangeName: result.Meta.ExchangeName,
		LongName:     result.Meta.LongName,
		ShortName:    result.Meta.Shortname,
		MarketPrice:  result.Meta.RegularMarketPrice,
		Bars:         bars,
	}, nil
}

// query executes one request against the chart API and decodes the response.
// Sets a browser-like User-Agent; the public endpoint blocks default Go
// clients.
func (c *FinanceClient) query(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return Response{}, fmt.Errorf("market data API error: %s", *response.Chart.Error)
	}

	return response, nil
}
