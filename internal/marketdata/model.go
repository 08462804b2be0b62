package marketdata

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance
// chart API. It maps directly onto the wire format:
//   - Chart.Result: array of result objects (typically one element)
//   - Chart.Result[].Meta: symbol metadata (name, currency, market price)
//   - Chart.Result[].Timestamp: Unix timestamps per data point
//   - Chart.Result[].Indicators: price arrays (open, close, high, low, volume)
//   - Chart.Error: optional error payload from the API
type Response struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				FullExchangeName   string  `json:"fullExchangeName"`
				LongName           string  `json:"longName"`
				Shortname          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// PriceChart is the parsed internal representation of a symbol's daily price
// series, easier to work with than the raw Response.
type PriceChart struct {
	Currency     string   `json:"currency"`
	Symbol       string   `json:"symbol"`
	ExchangeName string   `json:"exchangeName"`
	LongName     string   `json:"longName"`
	ShortName    string   `json:"shortName"`
	MarketPrice  float64  `json:"marketPrice"`
	Bars         []DayBar `json:"bars"`
}

// DayBar is one trading day's OHLCV data.
type DayBar struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	PriceHigh  float64
	PriceLow   float64
	Volume     int64
}

// Closes returns the chart's closing prices in date order.
func (c PriceChart) Closes() []float64 {
	closes := make([]float64, len(c.Bars))
	for i, b := range c.Bars {
		closes[i] = b.PriceClose
	}
	return closes
}

// Quote is the research snapshot for one symbol: identity fields plus the
// latest known price. Read-only to the core.
type Quote struct {
	Ticker       string  `json:"ticker"`
	CompanyName  string  `json:"companyName"`
	Currency     string  `json:"currency"`
	Exchange     string  `json:"exchange"`
	CurrentPrice float64 `json:"currentPrice"`
}
