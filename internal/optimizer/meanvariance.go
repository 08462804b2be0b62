package optimizer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
)

// historyWindow is how far back price history is fetched for return
// statistics.
const historyWindow = 365 * 24 * time.Hour

// maxConcurrentFetches bounds the per-ticker history fan-out.
const maxConcurrentFetches = 4

// HistorySource supplies daily close series for a ticker. The market data
// client satisfies this.
type HistorySource interface {
	DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]float64, error)
}

// MeanVariance is the default in-process optimization engine. It maximizes
//
//	μ'w − (1 − riskTolerance) · sqrt(w'Σw)
//
// subject to Σw = 1 and per-holding bounds, where μ and Σ are annualized
// return statistics computed from one year of daily closes. The equality and
// bound constraints are folded into the objective as quadratic penalties and
// the result is projected exactly onto the feasible set afterwards.
type MeanVariance struct {
	history HistorySource
}

// NewMeanVariance creates a mean-variance engine over the given price history
// source.
func NewMeanVariance(history HistorySource) *MeanVariance {
	return &MeanVariance{history: history}
}

// Optimize computes a weight proposal for the request. Infeasible bound
// combinations fail with ErrOptimizerRejected before any prices are fetched.
func (e *MeanVariance) Optimize(ctx context.Context, req Request) (Result, error) {
	n := len(req.Tickers)
	if n == 0 {
		return Result{}, fmt.Errorf("%w: portfolio has no holdings", apperrors.ErrOptimizerRejected)
	}
	if err := checkFeasible(n, req.Constraints); err != nil {
		return Result{}, err
	}

	closes, err := e.fetchCloses(ctx, req.Tickers)
	if err != nil {
		return Result{}, err
	}

	stats, err := computeReturnStats(req.Tickers, closes)
	if err != nil {
		return Result{}, err
	}

	weights := solve(stats, req.RiskTolerance, req.Constraints)
	weights, err = projectToBounds(weights, req.Constraints)
	if err != nil {
		return Result{}, err
	}

	proposal := make(model.WeightProposal, n)
	for i, ticker := range req.Tickers {
		proposal[ticker] = weights[i]
	}
	return Result{Weights: proposal, Metrics: stats.riskMetrics()}, nil
}

// fetchCloses gathers one year of daily closes per ticker concurrently.
func (e *MeanVariance) fetchCloses(ctx context.Context, tickers []string) (map[string][]float64, error) {
	end := time.Now()
	start := end.Add(-historyWindow)

	var mu sync.Mutex
	closes := make(map[string][]float64, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, ticker := range tickers {
		g.Go(func() error {
			series, err := e.history.DailyCloses(gctx, ticker, start, end)
			if err != nil {
				return fmt.Errorf("price history for %s: %w", ticker, err)
			}
			mu.Lock()
			closes[ticker] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return closes, nil
}

// checkFeasible rejects bound combinations that cannot sum to 1.
func checkFeasible(n int, c model.Constraints) error {
	if c.MinWeight*float64(n) > 1+model.WeightSumTolerance {
		return fmt.Errorf("%w: minWeight %v with %d holdings exceeds total weight 1",
			apperrors.ErrOptimizerRejected, c.MinWeight, n)
	}
	if c.MaxWeight*float64(n) < 1-model.WeightSumTolerance {
		return fmt.Errorf("%w: maxWeight %v with %d holdings cannot reach total weight 1",
			apperrors.ErrOptimizerRejected, c.MaxWeight, n)
	}
	return nil
}

// solve runs the penalized objective through a derivative-free minimizer.
// Starting point is the equal-weight allocation, which is feasible after the
// checkFeasible gate.
func solve(stats *returnStats, riskTolerance float64, c model.Constraints) []float64 {
	n := len(stats.tickers)
	mu := mat.NewVecDense(n, stats.expected)
	riskAversion := 1 - riskTolerance
	const penalty = 1000.0

	objective := func(w []float64) float64 {
		wVec := mat.NewVecDense(n, w)
		ret := mat.Dot(mu, wVec)
		variance := mat.Inner(wVec, stats.cov, wVec)
		risk := 0.0
		if variance > 0 {
			risk = math.Sqrt(variance)
		}

		score := ret - riskAversion*risk

		var sum, violation float64
		for _, wi := range w {
			sum += wi
			if wi < c.MinWeight {
				violation += (c.MinWeight - wi) * (c.MinWeight - wi)
			}
			if wi > c.MaxWeight {
				violation += (wi - c.MaxWeight) * (wi - c.MaxWeight)
			}
		}
		return -score + penalty*(sum-1)*(sum-1) + penalty*violation
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1 / float64(n)
	}

	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || result == nil {
		// The minimizer is best-effort; the equal-weight start is feasible
		// and the projection step keeps the output valid.
		return initial
	}
	return result.X
}

// projectToBounds clamps weights into [min, max] and redistributes the
// residual across holdings with remaining slack until the weights sum to
// exactly 1 within tolerance.
func projectToBounds(weights []float64, c model.Constraints) ([]float64, error) {
	n := len(weights)
	out := make([]float64, n)
	for i, w := range weights {
		out[i] = math.Min(math.Max(w, c.MinWeight), c.MaxWeight)
	}

	for iter := 0; iter < 2*n+2; iter++ {
		var sum float64
		for _, w := range out {
			sum += w
		}
		residual := 1 - sum
		if math.Abs(residual) <= model.WeightSumTolerance/2 {
			return out, nil
		}

		var slack float64
		for _, w := range out {
			if residual > 0 {
				slack += c.MaxWeight - w
			} else {
				slack += w - c.MinWeight
			}
		}
		if slack <= 0 {
			break
		}

		for i, w := range out {
			var room float64
			if residual > 0 {
				room = c.MaxWeight - w
			} else {
				room = w - c.MinWeight
			}
			out[i] = w + residual*(room/slack)
		}
	}

	return nil, fmt.Errorf("%w: cannot satisfy weight bounds", apperrors.ErrOptimizerRejected)
}
