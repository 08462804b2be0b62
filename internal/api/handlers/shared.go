package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// decodeJSON parses a request body, responding 400 on malformed JSON.
// Returns false when a response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return false
	}
	return true
}

// respondServiceError maps a service-layer error onto an HTTP status and
// writes the error response. The mapping follows the error taxonomy:
// validation errors are the caller's fault, coordination conflicts are
// retryable, collaborator and consistency failures are upstream problems.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError

	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrWeightOutOfRange),
		errors.Is(err, apperrors.ErrInvalidConstraintRange),
		errors.Is(err, apperrors.ErrInvalidRiskTolerance):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrTickerNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrOptimizationInProgress),
		errors.Is(err, apperrors.ErrOptimizationStale),
		errors.Is(err, apperrors.ErrDuplicateEntry):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrOptimizerRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrOptimizerTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrOptimizerUnavailable),
		errors.Is(err, apperrors.ErrProposalStaleTickers),
		errors.Is(err, apperrors.ErrProposalSumInvalid):
		status = http.StatusBadGateway
	}

	respondJSON(w, status, map[string]string{
		"error":  message,
		"detail": err.Error(),
	})
}
