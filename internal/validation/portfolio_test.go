package validation_test

import (
	"testing"

	"github.com/thewhitelisted/optiq/internal/api/request"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// TestValidateCreatePortfolio tests creation payload validation.
func TestValidateCreatePortfolio(t *testing.T) {
	t.Run("accepts a complete payload", func(t *testing.T) {
		err := validation.ValidateCreatePortfolio(request.CreatePortfolioRequest{
			Name:     "Growth",
			BookCost: 10000,
			Stocks: []request.StockPayload{
				{Ticker: "AAPL", Weight: model.Float64Ptr(0.5)},
			},
		})
		if err != nil {
			t.Errorf("ValidateCreatePortfolio() returned unexpected error: %v", err)
		}
	})

	t.Run("collects field errors", func(t *testing.T) {
		err := validation.ValidateCreatePortfolio(request.CreatePortfolioRequest{
			Name:     " ",
			BookCost: -5,
			Stocks:   []request.StockPayload{{Ticker: ""}},
		})

		verr, ok := err.(*validation.Error)
		if !ok {
			t.Fatalf("error type = %T, want *validation.Error", err)
		}
		for _, field := range []string{"name", "bookCost", "stocks"} {
			if _, present := verr.Fields[field]; !present {
				t.Errorf("missing field error for %q in %v", field, verr.Fields)
			}
		}
	})
}

// TestValidateUpdatePortfolio tests that only provided fields are checked.
func TestValidateUpdatePortfolio(t *testing.T) {
	t.Run("empty update passes", func(t *testing.T) {
		if err := validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{}); err != nil {
			t.Errorf("ValidateUpdatePortfolio() returned unexpected error: %v", err)
		}
	})

	t.Run("provided name may not be blank", func(t *testing.T) {
		name := "  "
		err := validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{Name: &name})
		if err == nil {
			t.Error("ValidateUpdatePortfolio() accepted a blank name")
		}
	})

	t.Run("negative currentValue rejected", func(t *testing.T) {
		v := -1.0
		err := validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{CurrentValue: &v})
		if err == nil {
			t.Error("ValidateUpdatePortfolio() accepted a negative currentValue")
		}
	})
}

// TestValidateEditStock tests the reweight payload.
func TestValidateEditStock(t *testing.T) {
	t.Run("weight is required", func(t *testing.T) {
		if err := validation.ValidateEditStock(request.EditStockRequest{}); err == nil {
			t.Error("ValidateEditStock() accepted a missing weight")
		}
	})

	t.Run("weight must be in range", func(t *testing.T) {
		err := validation.ValidateEditStock(request.EditStockRequest{Weight: model.Float64Ptr(1.2)})
		if err == nil {
			t.Error("ValidateEditStock() accepted weight 1.2")
		}
	})
}

// TestValidateOptimizeRequest tests the optimize payload shape.
func TestValidateOptimizeRequest(t *testing.T) {
	t.Run("riskTolerance is required", func(t *testing.T) {
		if err := validation.ValidateOptimizeRequest(request.OptimizePortfolioRequest{}); err == nil {
			t.Error("ValidateOptimizeRequest() accepted a missing riskTolerance")
		}
	})

	t.Run("timeoutSeconds must be positive when present", func(t *testing.T) {
		zero := 0
		err := validation.ValidateOptimizeRequest(request.OptimizePortfolioRequest{
			RiskTolerance:  model.Float64Ptr(0.5),
			TimeoutSeconds: &zero,
		})
		if err == nil {
			t.Error("ValidateOptimizeRequest() accepted timeoutSeconds 0")
		}
	})

	t.Run("well-formed request passes", func(t *testing.T) {
		secs := 10
		err := validation.ValidateOptimizeRequest(request.OptimizePortfolioRequest{
			RiskTolerance:  model.Float64Ptr(0.5),
			TimeoutSeconds: &secs,
			Constraints: request.OptimizeConstraints{
				MinWeight: model.Float64Ptr(0.05),
				MaxWeight: model.Float64Ptr(0.6),
			},
		})
		if err != nil {
			t.Errorf("ValidateOptimizeRequest() returned unexpected error: %v", err)
		}
	})
}
