package model

// WeightSumTolerance is the tolerance applied to the sum-of-weights invariant.
// A committed portfolio may not have defined weights summing past 1 by more
// than this value, and a merged proposal must sum to 1 within it.
const WeightSumTolerance = 1e-6

// Portfolio is a snapshot of one portfolio's state at a specific version.
// Snapshots returned by the store are deep copies and safe to read without
// locking; mutating one has no effect on authoritative state.
type Portfolio struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	BookCost float64 `json:"bookCost"`

	// CurrentValue is the externally computed mark-to-market value. Nil when
	// no valuation has been supplied.
	CurrentValue *float64 `json:"currentValue,omitempty"`

	// Stocks is the holding set, ordered by ticker. Tickers are unique.
	Stocks []Stock `json:"stocks"`

	// Version increases by one on every committed mutation or merge. It is
	// used to detect staleness, never to block edits.
	Version uint64 `json:"version"`
}

// StockByTicker returns the holding with the given ticker, if present.
func (p Portfolio) StockByTicker(ticker string) (Stock, bool) {
	for _, s := range p.Stocks {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return Stock{}, false
}

// Tickers returns the portfolio's tickers in holding order.
func (p Portfolio) Tickers() []string {
	tickers := make([]string, len(p.Stocks))
	for i, s := range p.Stocks {
		tickers[i] = s.Ticker
	}
	return tickers
}

// WeightSum returns the sum of all defined weights and the number of holdings
// that have one.
func (p Portfolio) WeightSum() (sum float64, defined int) {
	for _, s := range p.Stocks {
		if s.Weight != nil {
			sum += *s.Weight
			defined++
		}
	}
	return sum, defined
}
