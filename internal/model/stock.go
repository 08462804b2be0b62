package model

// Stock represents a single holding within a portfolio. The ticker is the
// identity key: it is unique within a portfolio and immutable once created.
type Stock struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"companyName,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`

	// Weight is this stock's fractional share of total portfolio value, in
	// [0, 1]. Nil until a weight is first assigned.
	Weight *float64 `json:"weight,omitempty"`

	// CurrentPrice is the latest known price. It is owned by the market data
	// collaborator and read-only to the core; nil when never fetched.
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}

// HasWeight reports whether a weight has been assigned to this holding.
func (s Stock) HasWeight() bool {
	return s.Weight != nil
}

// Float64Ptr returns a pointer to v. Convenience for building stocks with
// literal weights and prices.
func Float64Ptr(v float64) *float64 {
	return &v
}
