package testutil

import (
	"context"
	"sync"

	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/optimizer"
)

// StubEngine is a scriptable optimizer.Engine for testing the optimization
// client and orchestrator without numeric work. Safe for concurrent calls.
type StubEngine struct {
	// Result and Err are returned from Optimize unless Fn is set.
	Result optimizer.Result
	Err    error

	// Fn, when set, handles the call entirely. Useful for blocking engines
	// and call-order assertions.
	Fn func(ctx context.Context, req optimizer.Request) (optimizer.Result, error)

	mu sync.Mutex
	// Calls records every request received.
	Calls []optimizer.Request
}

// Optimize implements optimizer.Engine.
func (s *StubEngine) Optimize(ctx context.Context, req optimizer.Request) (optimizer.Result, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, req)
	s.mu.Unlock()
	if s.Fn != nil {
		return s.Fn(ctx, req)
	}
	if s.Err != nil {
		return optimizer.Result{}, s.Err
	}
	return s.Result, nil
}

// ProposalEngine returns a stub whose result assigns the given weights.
func ProposalEngine(weights map[string]float64) *StubEngine {
	proposal := make(model.WeightProposal, len(weights))
	for ticker, w := range weights {
		proposal[ticker] = w
	}
	return &StubEngine{Result: optimizer.Result{Weights: proposal}}
}

// EqualWeightEngine returns a stub that proposes 1/n for every requested
// ticker.
func EqualWeightEngine() *StubEngine {
	return &StubEngine{
		Fn: func(_ context.Context, req optimizer.Request) (optimizer.Result, error) {
			proposal := make(model.WeightProposal, len(req.Tickers))
			for _, ticker := range req.Tickers {
				proposal[ticker] = 1.0 / float64(len(req.Tickers))
			}
			return optimizer.Result{Weights: proposal}, nil
		},
	}
}
