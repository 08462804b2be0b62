package testutil

import (
	"fmt"
	"testing"

	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/store"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, st)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Growth").
//	    WithStock("AAPL", 0.6).
//	    WithStock("MSFT", 0.4).
//	    Build(t, st)
type PortfolioBuilder struct {
	ID       string
	Name     string
	BookCost float64
	Stocks   []model.Stock
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:       MakeID(),
		Name:     "Test Portfolio",
		BookCost: 10000,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithBookCost sets a custom book cost.
func (b *PortfolioBuilder) WithBookCost(cost float64) *PortfolioBuilder {
	b.BookCost = cost
	return b
}

// WithStock adds a weighted holding.
func (b *PortfolioBuilder) WithStock(ticker string, weight float64) *PortfolioBuilder {
	b.Stocks = append(b.Stocks, model.Stock{
		Ticker: ticker,
		Weight: model.Float64Ptr(weight),
	})
	return b
}

// WithUnweightedStock adds a holding without a weight.
func (b *PortfolioBuilder) WithUnweightedStock(ticker string) *PortfolioBuilder {
	b.Stocks = append(b.Stocks, model.Stock{Ticker: ticker})
	return b
}

// Build creates the portfolio in the given store and returns the committed
// snapshot.
func (b *PortfolioBuilder) Build(t *testing.T, st *store.Store) model.Portfolio {
	t.Helper()

	portfolio, err := st.Create(model.Portfolio{
		ID:       b.ID,
		Name:     b.Name,
		BookCost: b.BookCost,
		Stocks:   b.Stocks,
	})
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return portfolio
}

// EqualWeights returns n stocks with weights summing to 1, tickers STK0..STKn.
// Useful for portfolios that must satisfy the merged weight sum.
func EqualWeights(n int) []model.Stock {
	stocks := make([]model.Stock, n)
	for i := range stocks {
		stocks[i] = model.Stock{
			Ticker: fmt.Sprintf("STK%d", i),
			Weight: model.Float64Ptr(1.0 / float64(n)),
		}
	}
	return stocks
}
