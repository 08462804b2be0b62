package validation

import (
	"strings"

	"github.com/thewhitelisted/optiq/internal/api/request"
)

// ValidateCreatePortfolio validates a portfolio creation request.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if req.BookCost < 0 {
		errors["bookCost"] = "bookCost cannot be negative"
	}

	validateStockPayloads(req.Stocks, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdatePortfolio validates a partial portfolio update request.
// Only provided fields are validated.
func ValidateUpdatePortfolio(req request.UpdatePortfolioRequest) error {
	errors := make(map[string]string)

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errors["name"] = "name cannot be empty"
		} else if len(*req.Name) > 100 {
			errors["name"] = "name must be 100 characters or less"
		}
	}

	if req.BookCost != nil && *req.BookCost < 0 {
		errors["bookCost"] = "bookCost cannot be negative"
	}

	if req.CurrentValue != nil && *req.CurrentValue < 0 {
		errors["currentValue"] = "currentValue cannot be negative"
	}

	if req.Stocks != nil {
		validateStockPayloads(*req.Stocks, errors)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateAddStock validates an add-holding request. Uniqueness against the
// portfolio's current holdings is the entity model's job, not the payload's.
func ValidateAddStock(req request.AddStockRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}
	if req.Weight != nil && (*req.Weight < 0 || *req.Weight > 1) {
		errors["weight"] = "weight must be between 0 and 1"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateEditStock validates a reweight request.
func ValidateEditStock(req request.EditStockRequest) error {
	errors := make(map[string]string)

	if req.Weight == nil {
		errors["weight"] = "weight is required"
	} else if *req.Weight < 0 || *req.Weight > 1 {
		errors["weight"] = "weight must be between 0 and 1"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateOptimizeRequest validates the payload shape of an optimize request.
// Range checks on risk tolerance and constraints are the entity model's job.
func ValidateOptimizeRequest(req request.OptimizePortfolioRequest) error {
	errors := make(map[string]string)

	if req.RiskTolerance == nil {
		errors["riskTolerance"] = "riskTolerance is required"
	}
	if req.TimeoutSeconds != nil && *req.TimeoutSeconds <= 0 {
		errors["timeoutSeconds"] = "timeoutSeconds must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateStockPayloads(stocks []request.StockPayload, errors map[string]string) {
	for _, s := range stocks {
		if strings.TrimSpace(s.Ticker) == "" {
			errors["stocks"] = "every stock requires a ticker"
			return
		}
		if s.Weight != nil && (*s.Weight < 0 || *s.Weight > 1) {
			errors["stocks"] = "every weight must be between 0 and 1"
			return
		}
	}
}
