package validation

import (
	"fmt"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
)

// ValidateConstraints checks optimization weight bounds: both in [0, 1] and
// min <= max. Runs before any collaborator call.
func ValidateConstraints(c model.Constraints) error {
	if c.MinWeight < 0 || c.MinWeight > 1 {
		return fmt.Errorf("%w: minWeight %v", apperrors.ErrInvalidConstraintRange, c.MinWeight)
	}
	if c.MaxWeight < 0 || c.MaxWeight > 1 {
		return fmt.Errorf("%w: maxWeight %v", apperrors.ErrInvalidConstraintRange, c.MaxWeight)
	}
	if c.MinWeight > c.MaxWeight {
		return fmt.Errorf("%w: minWeight %v > maxWeight %v",
			apperrors.ErrInvalidConstraintRange, c.MinWeight, c.MaxWeight)
	}
	return nil
}

// ValidateRiskTolerance checks that a risk tolerance lies in [0, 1].
func ValidateRiskTolerance(r float64) error {
	if r < 0 || r > 1 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRiskTolerance, r)
	}
	return nil
}
