// Package reconcile merges optimizer weight proposals into portfolio
// snapshots. Merge is a pure function: it builds the new holding set and a
// per-ticker delta report without touching authoritative state. Committing the
// result is the orchestrator's responsibility.
package reconcile

import (
	"fmt"
	"math"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
)

// Result is the outcome of a successful merge. Stocks is the full replacement
// holding set, ordered like the snapshot; Deltas lists every holding's old and
// new weight in the same order.
type Result struct {
	Stocks []model.Stock
	Deltas []model.WeightDelta
}

// Merge applies a weight proposal to a snapshot.
//
// Every snapshot holding keeps its identity: proposed tickers get the proposed
// weight, unproposed tickers carry their prior weight and are flagged in the
// delta report. The proposal may not reference tickers absent from the
// snapshot (the optimizer cannot invent holdings), and the resulting defined
// weights must sum to 1 within tolerance.
//
// Failure modes:
//   - ErrProposalStaleTickers: proposal references a ticker not in snapshot
//   - ErrProposalSumInvalid: merged weights deviate from 1 beyond tolerance
func Merge(snapshot model.Portfolio, proposal model.WeightProposal) (Result, error) {
	held := make(map[string]bool, len(snapshot.Stocks))
	for _, s := range snapshot.Stocks {
		held[s.Ticker] = true
	}
	for ticker := range proposal {
		if !held[ticker] {
			return Result{}, fmt.Errorf("%w: %s", apperrors.ErrProposalStaleTickers, ticker)
		}
	}

	stocks := make([]model.Stock, len(snapshot.Stocks))
	deltas := make([]model.WeightDelta, len(snapshot.Stocks))
	var sum float64
	defined := 0

	for i, s := range snapshot.Stocks {
		merged := s
		if s.Weight != nil {
			merged.Weight = model.Float64Ptr(*s.Weight)
		}
		if s.CurrentPrice != nil {
			merged.CurrentPrice = model.Float64Ptr(*s.CurrentPrice)
		}

		delta := model.WeightDelta{Ticker: s.Ticker, OldWeight: s.Weight}
		if proposed, ok := proposal[s.Ticker]; ok {
			merged.Weight = model.Float64Ptr(proposed)
		} else {
			delta.Unproposed = true
		}
		delta.NewWeight = merged.Weight

		if merged.Weight != nil {
			sum += *merged.Weight
			defined++
		}
		stocks[i] = merged
		deltas[i] = delta
	}

	if defined == 0 || math.Abs(sum-1) > model.WeightSumTolerance {
		return Result{}, fmt.Errorf("%w: sum %v over %d weighted holdings",
			apperrors.ErrProposalSumInvalid, sum, defined)
	}

	return Result{Stocks: stocks, Deltas: deltas}, nil
}
