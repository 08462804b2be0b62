package service

import (
	"context"
	"math"
	"time"

	"github.com/thewhitelisted/optiq/internal/marketdata"
	"github.com/thewhitelisted/optiq/internal/search"
)

// analysisWindow is how far back price history is fetched for risk metrics.
const analysisWindow = 365 * 24 * time.Hour

// StockService handles security research: quotes, risk analysis over one
// year of history, and ticker search. Read-only; it never touches portfolio
// state.
type StockService struct {
	marketData   marketdata.Client
	searchEngine *search.Engine
}

// NewStockService creates a new StockService.
func NewStockService(marketData marketdata.Client, searchEngine *search.Engine) *StockService {
	return &StockService{
		marketData:   marketData,
		searchEngine: searchEngine,
	}
}

// PricePoint is one dated closing price in an analysis response.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
}

// AnalysisMetrics aggregates risk statistics computed from daily closes.
// Nil fields mean the statistic could not be computed from the available
// history.
type AnalysisMetrics struct {
	Volatility  *float64 `json:"volatility"`  // annualized stddev of daily returns
	SharpeRatio *float64 `json:"sharpeRatio"` // annualized mean return over volatility
	MaxDrawdown *float64 `json:"maxDrawdown"` // largest peak-to-trough decline, negative
}

// StockAnalysis is the full research result for one ticker.
type StockAnalysis struct {
	Ticker       string          `json:"ticker"`
	PriceHistory []PricePoint    `json:"priceHistory"`
	Metrics      AnalysisMetrics `json:"metrics"`
}

// GetStockInfo fetches the research quote for a ticker.
func (s *StockService) GetStockInfo(ctx context.Context, ticker string) (marketdata.Quote, error) {
	return s.marketData.Quote(ctx, ticker)
}

// GetStockAnalysis fetches one year of daily prices and computes annualized
// volatility, Sharpe ratio, and maximum drawdown.
func (s *StockService) GetStockAnalysis(ctx context.Context, ticker string) (StockAnalysis, error) {
	end := time.Now()
	chart, err := s.marketData.History(ctx, ticker, end.Add(-analysisWindow), end)
	if err != nil {
		return StockAnalysis{}, err
	}

	history := make([]PricePoint, len(chart.Bars))
	for i, bar := range chart.Bars {
		history[i] = PricePoint{Date: bar.Date.Format("2006-01-02"), Price: bar.PriceClose}
	}

	return StockAnalysis{
		Ticker:       chart.Symbol,
		PriceHistory: history,
		Metrics:      computeAnalysisMetrics(chart.Closes()),
	}, nil
}

// SearchStocks looks the query up in the security search index.
func (s *StockService) SearchStocks(query string, limit int) ([]search.Listing, error) {
	return s.searchEngine.Search(query, limit)
}

// computeAnalysisMetrics derives risk statistics from a close series. With
// fewer than three observations every statistic is nil.
func computeAnalysisMetrics(closes []float64) AnalysisMetrics {
	if len(closes) < 3 {
		return AnalysisMetrics{}
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return AnalysisMetrics{}
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	metrics := AnalysisMetrics{}
	volatility := math.Sqrt(variance) * math.Sqrt(252)
	metrics.Volatility = &volatility
	if volatility > 0 {
		sharpe := mean * 252 / volatility
		metrics.SharpeRatio = &sharpe
	}

	// Largest decline from a running peak.
	peak := closes[0]
	drawdown := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := c/peak - 1; dd < drawdown {
				drawdown = dd
			}
		}
	}
	metrics.MaxDrawdown = &drawdown

	return metrics
}
