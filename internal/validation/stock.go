package validation

import (
	"fmt"
	"strings"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
)

// NormalizeStock validates a stock payload against the target portfolio's
// current holding set and returns it with the ticker normalized to uppercase.
// Pure: neither input is modified.
//
// Failure modes:
//   - ErrInvalidTicker: empty ticker, or ticker already held
//   - ErrWeightOutOfRange: weight present and outside [0, 1]
func NormalizeStock(s model.Stock, existing []model.Stock) (model.Stock, error) {
	ticker := strings.ToUpper(strings.TrimSpace(s.Ticker))
	if ticker == "" {
		return model.Stock{}, fmt.Errorf("%w: ticker is empty", apperrors.ErrInvalidTicker)
	}
	for _, held := range existing {
		if held.Ticker == ticker {
			return model.Stock{}, fmt.Errorf("%w: %s already held", apperrors.ErrInvalidTicker, ticker)
		}
	}
	if s.Weight != nil && (*s.Weight < 0 || *s.Weight > 1) {
		return model.Stock{}, fmt.Errorf("%w: %s weight %v", apperrors.ErrWeightOutOfRange, ticker, *s.Weight)
	}

	normalized := s
	normalized.Ticker = ticker
	return normalized, nil
}

// ValidateStockSet checks a complete candidate holding set against the
// committed-state invariants: unique non-empty tickers, every defined weight
// in [0, 1], and the defined weights summing to at most 1 within tolerance.
// Used by the store before any commit; rejection means nothing is applied.
func ValidateStockSet(stocks []model.Stock) error {
	seen := make(map[string]bool, len(stocks))
	var sum float64

	for _, s := range stocks {
		if strings.TrimSpace(s.Ticker) == "" {
			return fmt.Errorf("%w: ticker is empty", apperrors.ErrInvalidTicker)
		}
		if s.Ticker != strings.ToUpper(s.Ticker) {
			return fmt.Errorf("%w: %s is not uppercase", apperrors.ErrInvalidTicker, s.Ticker)
		}
		if seen[s.Ticker] {
			return fmt.Errorf("%w: duplicate ticker %s", apperrors.ErrInvalidTicker, s.Ticker)
		}
		seen[s.Ticker] = true

		if s.Weight != nil {
			if *s.Weight < 0 || *s.Weight > 1 {
				return fmt.Errorf("%w: %s weight %v", apperrors.ErrWeightOutOfRange, s.Ticker, *s.Weight)
			}
			sum += *s.Weight
		}
	}

	if sum > 1+model.WeightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v", apperrors.ErrWeightOutOfRange, sum)
	}
	return nil
}
