package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/thewhitelisted/optiq/internal/marketdata"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/search"
	"github.com/thewhitelisted/optiq/internal/store"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// backfillTimeout bounds the opportunistic market data lookup that follows a
// committed add-stock mutation. The lookup runs outside the commit path and
// never delays or fails the mutation.
const backfillTimeout = 10 * time.Second

// PortfolioService handles portfolio lifecycle and holding mutations. All
// state changes go through the store's atomic mutation boundary; this service
// adds ID assignment, payload normalization, and opportunistic enrichment
// from market data.
type PortfolioService struct {
	store        *store.Store
	marketData   marketdata.Client
	searchEngine *search.Engine
}

// NewPortfolioService creates a new PortfolioService. marketData and
// searchEngine may be nil; enrichment is skipped when they are.
func NewPortfolioService(store *store.Store, marketData marketdata.Client, searchEngine *search.Engine) *PortfolioService {
	return &PortfolioService{
		store:        store,
		marketData:   marketData,
		searchEngine: searchEngine,
	}
}

// CreatePortfolio registers a new portfolio with an assigned UUID and an
// optional seeded holding set.
func (s *PortfolioService) CreatePortfolio(name string, bookCost float64, stocks []model.Stock) (model.Portfolio, error) {
	p := model.Portfolio{
		ID:       uuid.New().String(),
		Name:     name,
		BookCost: bookCost,
		Stocks:   stocks,
	}
	created, err := s.store.Create(p)
	if err != nil {
		return model.Portfolio{}, err
	}
	for _, stock := range created.Stocks {
		s.enrichAsync(created.ID, stock.Ticker)
	}
	return created, nil
}

// GetPortfolio returns the latest committed snapshot for the portfolio.
func (s *PortfolioService) GetPortfolio(id string) (model.Portfolio, error) {
	return s.store.Get(id)
}

// ListPortfolios returns snapshots of every portfolio.
func (s *PortfolioService) ListPortfolios() []model.Portfolio {
	return s.store.List()
}

// UpdatePortfolio commits changes to display fields and, when stocks is
// non-nil, replaces the entire holding set in the same commit. The update is
// all-or-nothing: a rejected stock set leaves the details unchanged too.
func (s *PortfolioService) UpdatePortfolio(id string, name *string, bookCost, currentValue *float64, stocks *[]model.Stock) (model.Portfolio, error) {
	var replacement *[]model.Stock
	if stocks != nil {
		normalized, err := normalizeStockSet(*stocks)
		if err != nil {
			return model.Portfolio{}, err
		}
		replacement = &normalized
	}

	p, err := s.store.UpdateDetails(id, name, bookCost, currentValue, replacement)
	if err != nil {
		return model.Portfolio{}, err
	}
	if replacement != nil {
		for _, stock := range p.Stocks {
			s.enrichAsync(id, stock.Ticker)
		}
	}
	return p, nil
}

// AddStock commits a new holding and schedules a company name / price
// backfill from market data.
func (s *PortfolioService) AddStock(id string, stock model.Stock) (model.Portfolio, error) {
	p, err := s.store.Apply(id, model.AddStock{Stock: stock})
	if err != nil {
		return model.Portfolio{}, err
	}
	for _, held := range p.Stocks {
		if held.CompanyName == "" {
			s.enrichAsync(id, held.Ticker)
		}
	}
	return p, nil
}

// EditStockWeight commits a new weight for an existing holding.
func (s *PortfolioService) EditStockWeight(id, ticker string, weight float64) (model.Portfolio, error) {
	return s.store.Apply(id, model.EditStock{Ticker: ticker, Weight: weight})
}

// RemoveStock commits the removal of a holding.
func (s *PortfolioService) RemoveStock(id, ticker string) (model.Portfolio, error) {
	return s.store.Apply(id, model.RemoveStock{Ticker: ticker})
}

// enrichAsync backfills company name and current price for one holding after
// a commit. Best effort: failures are logged and ignored, and the annotation
// is itself an atomic store commit so readers never see partial data.
func (s *PortfolioService) enrichAsync(id, ticker string) {
	if s.marketData == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
		defer cancel()

		quote, err := s.marketData.Quote(ctx, ticker)
		if err != nil {
			log.Printf("market data backfill for %s failed: %v", ticker, err)
			return
		}

		annotate := model.AnnotateStock{Ticker: ticker}
		if quote.CompanyName != "" {
			annotate.CompanyName = &quote.CompanyName
		}
		if quote.CurrentPrice > 0 {
			annotate.CurrentPrice = &quote.CurrentPrice
		}
		if _, err := s.store.Apply(id, annotate); err != nil {
			log.Printf("failed to annotate %s in portfolio %s: %v", ticker, id, err)
			return
		}

		if s.searchEngine != nil && quote.CompanyName != "" {
			err := s.searchEngine.IndexListings([]search.Listing{{
				Ticker:      ticker,
				CompanyName: quote.CompanyName,
			}})
			if err != nil {
				log.Printf("failed to index %s for search: %v", ticker, err)
			}
		}
	}()
}

// normalizeStockSet uppercases tickers and validates each stock against the
// ones before it, preserving payload order semantics for duplicate detection.
func normalizeStockSet(stocks []model.Stock) ([]model.Stock, error) {
	normalized := make([]model.Stock, 0, len(stocks))
	for _, raw := range stocks {
		stock, err := validation.NormalizeStock(raw, normalized)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, stock)
	}
	return normalized, nil
}
