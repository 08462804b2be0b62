// Package optimizer issues weight optimization requests. The numeric engine
// is a pluggable collaborator behind the Engine interface; the Client wraps
// an engine with deadline enforcement and error translation. Validation of
// the returned proposal (ticker set, weight sum) is the reconciliation
// engine's job, not the collaborator's.
package optimizer

import (
	"context"

	"github.com/thewhitelisted/optiq/internal/model"
)

// Request carries a caller's optimization intent: the holding universe in
// snapshot order, a risk tolerance in [0, 1] (1 = maximize return, 0 = avoid
// risk), and per-holding weight bounds.
type Request struct {
	Tickers       []string
	RiskTolerance float64
	Constraints   model.Constraints
}

// Result is an engine's raw response: a weight proposal over the requested
// tickers, plus optional return statistics when the engine computes them.
type Result struct {
	Weights model.WeightProposal
	Metrics *model.RiskMetrics
}

// Engine is the external optimizer collaborator. Implementations must honor
// context cancellation on their blocking work and return
// apperrors.ErrOptimizerRejected when the constraints are infeasible.
type Engine interface {
	Optimize(ctx context.Context, req Request) (Result, error)
}
