package request

// StockPayload represents one holding in a create or replace request.
// Weight is optional; nil means unassigned.
type StockPayload struct {
	Ticker      string   `json:"ticker"`
	CompanyName string   `json:"companyName,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name     string         `json:"name"`
	BookCost float64        `json:"bookCost"`
	Stocks   []StockPayload `json:"stocks,omitempty"`
}

// UpdatePortfolioRequest represents a partial portfolio update. Nil fields
// are left unchanged; a non-nil Stocks replaces the whole holding set.
type UpdatePortfolioRequest struct {
	Name         *string         `json:"name,omitempty"`
	BookCost     *float64        `json:"bookCost,omitempty"`
	CurrentValue *float64        `json:"currentValue,omitempty"`
	Stocks       *[]StockPayload `json:"stocks,omitempty"`
}

// AddStockRequest represents the request body for adding a holding.
type AddStockRequest struct {
	Ticker      string   `json:"ticker"`
	CompanyName string   `json:"companyName,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

// EditStockRequest represents the request body for reweighting a holding.
type EditStockRequest struct {
	Weight *float64 `json:"weight"`
}
