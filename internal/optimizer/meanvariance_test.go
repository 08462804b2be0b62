package optimizer_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/optimizer"
	"github.com/thewhitelisted/optiq/internal/testutil"
)

// trendingCloses builds a close series with a constant daily return.
func trendingCloses(days int, dailyReturn float64) []float64 {
	closes := make([]float64, days)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyReturn
	}
	return closes
}

// noisyCloses builds a close series that alternates up and down moves,
// producing nonzero variance with a small mean return.
func noisyCloses(days int, amplitude float64) []float64 {
	closes := make([]float64, days)
	price := 100.0
	for i := range closes {
		closes[i] = price
		if i%2 == 0 {
			price *= 1 + amplitude
		} else {
			price *= 1 - amplitude
		}
	}
	return closes
}

// TestMeanVariance_Optimize tests the in-process engine.
//
// WHY: The proposal this engine emits feeds straight into the merge, so it
// must respect the weight-sum and bound contract exactly, and infeasible
// constraint combinations must be rejected before any price fetch.
func TestMeanVariance_Optimize(t *testing.T) {
	t.Run("weights sum to one and respect bounds", func(t *testing.T) {
		market := testutil.NewMockMarketClient().
			WithCloses("AAPL", trendingCloses(120, 0.002)).
			WithCloses("MSFT", noisyCloses(120, 0.01)).
			WithCloses("GOOG", noisyCloses(120, 0.02))
		engine := optimizer.NewMeanVariance(market)

		result, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL", "GOOG", "MSFT"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0.05, MaxWeight: 0.8},
		})
		if err != nil {
			t.Fatalf("Optimize() returned unexpected error: %v", err)
		}

		var sum float64
		for ticker, w := range result.Weights {
			sum += w
			if w < 0.05-1e-9 || w > 0.8+1e-9 {
				t.Errorf("weight for %s = %v, outside bounds [0.05, 0.8]", ticker, w)
			}
		}
		if math.Abs(sum-1) > model.WeightSumTolerance {
			t.Errorf("weights sum to %v, want 1", sum)
		}
		if result.Metrics == nil {
			t.Fatal("Metrics = nil, want covariance and correlation matrices")
		}
		if len(result.Metrics.CovarianceMatrix) != 3 {
			t.Errorf("covariance matrix has %d rows, want 3", len(result.Metrics.CovarianceMatrix))
		}
	})

	t.Run("single holding gets full weight", func(t *testing.T) {
		market := testutil.NewMockMarketClient().
			WithCloses("AAPL", trendingCloses(60, 0.001))
		engine := optimizer.NewMeanVariance(market)

		result, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0, MaxWeight: 1},
		})
		if err != nil {
			t.Fatalf("Optimize() returned unexpected error: %v", err)
		}
		if math.Abs(result.Weights["AAPL"]-1) > model.WeightSumTolerance {
			t.Errorf("Weights[AAPL] = %v, want 1", result.Weights["AAPL"])
		}
	})

	t.Run("rejects minWeight that cannot sum to one", func(t *testing.T) {
		market := testutil.NewMockMarketClient()
		engine := optimizer.NewMeanVariance(market)

		_, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL", "MSFT", "GOOG"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0.4, MaxWeight: 1},
		})
		if !errors.Is(err, apperrors.ErrOptimizerRejected) {
			t.Errorf("Optimize() error = %v, want ErrOptimizerRejected", err)
		}
		if len(market.HistoryCalls) != 0 {
			t.Errorf("history fetched %d times before feasibility check, want 0", len(market.HistoryCalls))
		}
	})

	t.Run("rejects maxWeight that cannot reach one", func(t *testing.T) {
		engine := optimizer.NewMeanVariance(testutil.NewMockMarketClient())

		_, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL", "MSFT"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0, MaxWeight: 0.3},
		})
		if !errors.Is(err, apperrors.ErrOptimizerRejected) {
			t.Errorf("Optimize() error = %v, want ErrOptimizerRejected", err)
		}
	})

	t.Run("rejects empty holding universe", func(t *testing.T) {
		engine := optimizer.NewMeanVariance(testutil.NewMockMarketClient())

		_, err := engine.Optimize(context.Background(), optimizer.Request{
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0, MaxWeight: 1},
		})
		if !errors.Is(err, apperrors.ErrOptimizerRejected) {
			t.Errorf("Optimize() error = %v, want ErrOptimizerRejected", err)
		}
	})

	t.Run("history fetch failure propagates", func(t *testing.T) {
		market := testutil.NewMockMarketClient().WithError(errors.New("upstream down"))
		engine := optimizer.NewMeanVariance(market)

		_, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL", "MSFT"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0, MaxWeight: 1},
		})
		if err == nil {
			t.Fatal("Optimize() succeeded, want history fetch error")
		}
	})

	t.Run("insufficient history fails", func(t *testing.T) {
		market := testutil.NewMockMarketClient().
			WithCloses("AAPL", []float64{100, 101})
		engine := optimizer.NewMeanVariance(market)

		_, err := engine.Optimize(context.Background(), optimizer.Request{
			Tickers:       []string{"AAPL"},
			RiskTolerance: 0.5,
			Constraints:   model.Constraints{MinWeight: 0, MaxWeight: 1},
		})
		if err == nil {
			t.Fatal("Optimize() succeeded, want insufficient history error")
		}
	})
}
