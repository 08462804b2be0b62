package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/optimizer"
	"github.com/thewhitelisted/optiq/internal/reconcile"
	"github.com/thewhitelisted/optiq/internal/store"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// OptimizationService orchestrates the optimize cycle for a portfolio:
// validate intent, gate to one in-flight run per portfolio, call the
// optimizer, merge the proposal against the current snapshot, and commit.
//
// Plain edits are never blocked by an in-flight optimization. If an edit
// removes a proposed ticker mid-flight the whole cycle fails with
// ErrOptimizationStale and nothing is merged.
type OptimizationService struct {
	store  *store.Store
	client *optimizer.Client

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOptimizationService creates a new OptimizationService.
func NewOptimizationService(store *store.Store, client *optimizer.Client) *OptimizationService {
	return &OptimizationService{
		store:    store,
		client:   client,
		inFlight: make(map[string]bool),
	}
}

// Optimize runs one optimize cycle against the portfolio.
//
// Validation failures and the single-flight gate fire before any collaborator
// call. The optimizer call is the only suspension point; cancellation there
// returns the context error, applies no merge, and releases the gate. On a
// successful merge the new holding set is committed as one ReplaceStocks
// mutation and the outcome carries the per-ticker delta report.
func (s *OptimizationService) Optimize(
	ctx context.Context,
	id string,
	riskTolerance float64,
	constraints model.Constraints,
	deadline time.Duration,
) (*model.OptimizationOutcome, error) {
	if err := validation.ValidateRiskTolerance(riskTolerance); err != nil {
		return nil, err
	}
	if err := validation.ValidateConstraints(constraints); err != nil {
		return nil, err
	}

	if !s.acquire(id) {
		return nil, fmt.Errorf("portfolio %s: %w", id, apperrors.ErrOptimizationInProgress)
	}
	defer s.release(id)

	base, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	result, err := s.client.RequestOptimization(ctx, base, riskTolerance, constraints, deadline)
	if err != nil {
		return nil, err
	}

	// Merge against the state as of now, not the snapshot the optimizer saw:
	// edits committed mid-flight must win over the proposal.
	current, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	merged, err := reconcile.Merge(current, result.Weights)
	if err != nil {
		if errors.Is(err, apperrors.ErrProposalStaleTickers) && current.Version != base.Version {
			return nil, fmt.Errorf("%w: base version %d, current version %d",
				apperrors.ErrOptimizationStale, base.Version, current.Version)
		}
		return nil, err
	}

	// Commit only if no edit slipped in between the merge-time read and now;
	// a later commit must never be overwritten by the merged set.
	committed, err := s.store.ApplyAt(id, current.Version, model.ReplaceStocks{Stocks: merged.Stocks})
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: portfolio changed while committing the merge", apperrors.ErrOptimizationStale)
		}
		return nil, err
	}

	return &model.OptimizationOutcome{
		Portfolio:   committed,
		Deltas:      merged.Deltas,
		Metrics:     result.Metrics,
		BaseVersion: base.Version,
	}, nil
}

// acquire takes the per-portfolio optimize gate. Returns false when an
// optimization is already in flight; callers are expected to retry after
// completion rather than queue.
func (s *OptimizationService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *OptimizationService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
