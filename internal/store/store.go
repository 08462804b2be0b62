// Package store holds the authoritative in-memory state of every portfolio.
// All mutation paths funnel through Apply, which validates the full resulting
// holding set and commits it atomically. Readers get deep-copied snapshots and
// never observe a half-applied mutation.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// ErrVersionConflict is returned by ApplyAt when the portfolio's version moved
// past the caller's base version before the commit could happen.
var ErrVersionConflict = errors.New("portfolio version conflict")

// Persister writes committed portfolio state to durable storage. Pass nil for
// a purely in-memory store (tests, ephemeral deployments).
type Persister interface {
	SavePortfolio(p model.Portfolio) error
}

// Store is the single mutable shared resource of the core. Access is
// serialized per portfolio ID; operations on distinct IDs run concurrently.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	persister Persister
}

type entry struct {
	mu        sync.RWMutex
	portfolio model.Portfolio
}

// New creates an empty store. persister may be nil.
func New(persister Persister) *Store {
	return &Store{
		entries:   make(map[string]*entry),
		persister: persister,
	}
}

// Seed installs previously persisted portfolios without bumping versions or
// writing back. Intended for boot-time loading only.
func (s *Store) Seed(portfolios []model.Portfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range portfolios {
		sortStocks(p.Stocks)
		s.entries[p.ID] = &entry{portfolio: clonePortfolio(p)}
	}
}

// Create registers a new portfolio at version 1. The seeded stock set is
// validated as a whole; on rejection nothing is registered.
func (s *Store) Create(p model.Portfolio) (model.Portfolio, error) {
	stocks := make([]model.Stock, 0, len(p.Stocks))
	for _, raw := range p.Stocks {
		normalized, err := validation.NormalizeStock(raw, stocks)
		if err != nil {
			return model.Portfolio{}, err
		}
		stocks = append(stocks, normalized)
	}
	sortStocks(stocks)
	p.Stocks = stocks
	if err := validation.ValidateStockSet(p.Stocks); err != nil {
		return model.Portfolio{}, err
	}
	p.Version = 1

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[p.ID]; exists {
		return model.Portfolio{}, fmt.Errorf("portfolio %s: %w", p.ID, apperrors.ErrDuplicateEntry)
	}
	if err := s.persist(p); err != nil {
		return model.Portfolio{}, err
	}
	s.entries[p.ID] = &entry{portfolio: clonePortfolio(p)}
	return p, nil
}

// Get returns a snapshot of the portfolio's last committed state. The
// snapshot is a deep copy: safe to read and pass around without locking.
func (s *Store) Get(id string) (model.Portfolio, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Portfolio{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return clonePortfolio(e.portfolio), nil
}

// Apply validates and commits one mutation. The entire holding set is
// replaced as a unit: either every resulting stock satisfies the invariants
// and the version advances by one, or the store is left untouched and the
// typed failure is returned.
func (s *Store) Apply(id string, m model.Mutation) (model.Portfolio, error) {
	return s.apply(id, m, nil)
}

// ApplyAt is Apply with an optimistic version check: the mutation commits only
// if the portfolio is still at baseVersion, otherwise ErrVersionConflict is
// returned and nothing changes.
func (s *Store) ApplyAt(id string, baseVersion uint64, m model.Mutation) (model.Portfolio, error) {
	return s.apply(id, m, &baseVersion)
}

func (s *Store) apply(id string, m model.Mutation, baseVersion *uint64) (model.Portfolio, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Portfolio{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if baseVersion != nil && e.portfolio.Version != *baseVersion {
		return model.Portfolio{}, fmt.Errorf("portfolio %s is at version %d, expected %d: %w",
			id, e.portfolio.Version, *baseVersion, ErrVersionConflict)
	}

	next, err := applyMutation(e.portfolio, m)
	if err != nil {
		return model.Portfolio{}, err
	}
	if err := validation.ValidateStockSet(next.Stocks); err != nil {
		return model.Portfolio{}, err
	}

	next.Version = e.portfolio.Version + 1
	if err := s.persist(next); err != nil {
		return model.Portfolio{}, err
	}
	e.portfolio = next
	return clonePortfolio(next), nil
}

// UpdateDetails commits changes to the portfolio's display fields and, when
// stocks is non-nil, replaces the entire holding set in the same commit. Nil
// pointers leave the corresponding field unchanged. The whole update is one
// unit: a rejected replacement set leaves the details and the version
// untouched too.
func (s *Store) UpdateDetails(id string, name *string, bookCost, currentValue *float64, stocks *[]model.Stock) (model.Portfolio, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Portfolio{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := clonePortfolio(e.portfolio)
	if name != nil {
		next.Name = *name
	}
	if bookCost != nil {
		next.BookCost = *bookCost
	}
	if currentValue != nil {
		next.CurrentValue = model.Float64Ptr(*currentValue)
	}
	if stocks != nil {
		replacement := make([]model.Stock, len(*stocks))
		for i, st := range *stocks {
			replacement[i] = cloneStock(st)
		}
		sortStocks(replacement)
		if err := validation.ValidateStockSet(replacement); err != nil {
			return model.Portfolio{}, err
		}
		next.Stocks = replacement
	}

	next.Version = e.portfolio.Version + 1
	if err := s.persist(next); err != nil {
		return model.Portfolio{}, err
	}
	e.portfolio = next
	return clonePortfolio(next), nil
}

// List returns snapshots of every portfolio, ordered by ID.
func (s *Store) List() []model.Portfolio {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	portfolios := make([]model.Portfolio, 0, len(ids))
	for _, id := range ids {
		if p, err := s.Get(id); err == nil {
			portfolios = append(portfolios, p)
		}
	}
	return portfolios
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, apperrors.ErrPortfolioNotFound)
	}
	return e, nil
}

func (s *Store) persist(p model.Portfolio) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SavePortfolio(p); err != nil {
		return fmt.Errorf("failed to persist portfolio %s: %w", p.ID, err)
	}
	return nil
}

// applyMutation computes the candidate next state without committing it.
// Mutations that target a specific ticker fail with ErrTickerNotFound when the
// holding does not exist.
func applyMutation(current model.Portfolio, m model.Mutation) (model.Portfolio, error) {
	next := clonePortfolio(current)

	switch mut := m.(type) {
	case model.AddStock:
		normalized, err := validation.NormalizeStock(mut.Stock, next.Stocks)
		if err != nil {
			return model.Portfolio{}, err
		}
		next.Stocks = append(next.Stocks, normalized)
		sortStocks(next.Stocks)

	case model.EditStock:
		i, err := indexOf(next.Stocks, mut.Ticker)
		if err != nil {
			return model.Portfolio{}, err
		}
		if mut.Weight < 0 || mut.Weight > 1 {
			return model.Portfolio{}, fmt.Errorf("%w: %s weight %v",
				apperrors.ErrWeightOutOfRange, mut.Ticker, mut.Weight)
		}
		next.Stocks[i].Weight = model.Float64Ptr(mut.Weight)

	case model.RemoveStock:
		i, err := indexOf(next.Stocks, mut.Ticker)
		if err != nil {
			return model.Portfolio{}, err
		}
		next.Stocks = append(next.Stocks[:i], next.Stocks[i+1:]...)

	case model.ReplaceStocks:
		replacement := make([]model.Stock, len(mut.Stocks))
		for i, s := range mut.Stocks {
			replacement[i] = cloneStock(s)
		}
		sortStocks(replacement)
		next.Stocks = replacement

	case model.AnnotateStock:
		i, err := indexOf(next.Stocks, mut.Ticker)
		if err != nil {
			return model.Portfolio{}, err
		}
		if mut.CompanyName != nil {
			next.Stocks[i].CompanyName = *mut.CompanyName
		}
		if mut.CurrentPrice != nil {
			next.Stocks[i].CurrentPrice = model.Float64Ptr(*mut.CurrentPrice)
		}

	default:
		return model.Portfolio{}, fmt.Errorf("unsupported mutation type %T", m)
	}

	return next, nil
}

func indexOf(stocks []model.Stock, ticker string) (int, error) {
	for i, s := range stocks {
		if s.Ticker == ticker {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", ticker, apperrors.ErrTickerNotFound)
}

func sortStocks(stocks []model.Stock) {
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Ticker < stocks[j].Ticker })
}

func clonePortfolio(p model.Portfolio) model.Portfolio {
	out := p
	if p.CurrentValue != nil {
		out.CurrentValue = model.Float64Ptr(*p.CurrentValue)
	}
	out.Stocks = make([]model.Stock, len(p.Stocks))
	for i, s := range p.Stocks {
		out.Stocks[i] = cloneStock(s)
	}
	return out
}

func cloneStock(s model.Stock) model.Stock {
	out := s
	if s.Weight != nil {
		out.Weight = model.Float64Ptr(*s.Weight)
	}
	if s.CurrentPrice != nil {
		out.CurrentPrice = model.Float64Ptr(*s.CurrentPrice)
	}
	return out
}
