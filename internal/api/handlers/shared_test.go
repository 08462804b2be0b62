package handlers_test

import (
	"fmt"

	"github.com/thewhitelisted/optiq/internal/apperrors"
)

func testRejection() error {
	return fmt.Errorf("%w: bounds leave no feasible allocation", apperrors.ErrOptimizerRejected)
}

func testUnavailable() error {
	return fmt.Errorf("engine offline")
}
