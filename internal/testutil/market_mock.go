package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/thewhitelisted/optiq/internal/marketdata"
)

// MockMarketClient is a mock implementation of marketdata.Client for testing.
// It returns predefined test data instead of making actual API calls.
// Safe for concurrent use, matching the real client.
type MockMarketClient struct {
	mu sync.Mutex

	// Quotes maps ticker to the quote to return; missing tickers get a
	// generated quote at price 100.
	Quotes map[string]marketdata.Quote
	// Closes maps ticker to the daily closing series to return; missing
	// tickers get a flat default series.
	Closes map[string][]float64
	// Err, when set, is returned from every call.
	Err error

	// QuoteCalls and HistoryCalls record the tickers requested, in order.
	QuoteCalls   []string
	HistoryCalls []string
}

// NewMockMarketClient creates a mock with empty fixture maps.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		Quotes: map[string]marketdata.Quote{},
		Closes: map[string][]float64{},
	}
}

// WithQuote sets the quote returned for a ticker.
func (m *MockMarketClient) WithQuote(ticker string, q marketdata.Quote) *MockMarketClient {
	m.Quotes[ticker] = q
	return m
}

// WithCloses sets the daily closing series returned for a ticker.
func (m *MockMarketClient) WithCloses(ticker string, closes []float64) *MockMarketClient {
	m.Closes[ticker] = closes
	return m
}

// WithError configures the mock to fail every call with err.
func (m *MockMarketClient) WithError(err error) *MockMarketClient {
	m.Err = err
	return m
}

// Quote implements marketdata.Client.
func (m *MockMarketClient) Quote(_ context.Context, symbol string) (marketdata.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QuoteCalls = append(m.QuoteCalls, symbol)
	if m.Err != nil {
		return marketdata.Quote{}, m.Err
	}
	if q, ok := m.Quotes[symbol]; ok {
		return q, nil
	}
	return marketdata.Quote{
		Ticker:       symbol,
		CompanyName:  symbol + " Inc.",
		Currency:     "USD",
		CurrentPrice: 100,
	}, nil
}

// History implements marketdata.Client by synthesizing day bars from the
// configured closing series.
func (m *MockMarketClient) History(ctx context.Context, symbol string, start, end time.Time) (marketdata.PriceChart, error) {
	closes, err := m.DailyCloses(ctx, symbol, start, end)
	if err != nil {
		return marketdata.PriceChart{}, err
	}

	chart := marketdata.PriceChart{
		Symbol:   symbol,
		Currency: "USD",
		Bars:     make([]marketdata.DayBar, len(closes)),
	}
	for i, price := range closes {
		chart.Bars[i] = marketdata.DayBar{
			Date:       start.AddDate(0, 0, i),
			PriceOpen:  price,
			PriceClose: price,
			PriceHigh:  price,
			PriceLow:   price,
		}
	}
	if len(closes) > 0 {
		chart.MarketPrice = closes[len(closes)-1]
	}
	return chart, nil
}

// DailyCloses implements marketdata.Client.
func (m *MockMarketClient) DailyCloses(_ context.Context, symbol string, _, _ time.Time) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HistoryCalls = append(m.HistoryCalls, symbol)
	if m.Err != nil {
		return nil, m.Err
	}
	if closes, ok := m.Closes[symbol]; ok {
		return closes, nil
	}
	// Flat default series, enough points for return statistics.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	return closes, nil
}
