package request

// OptimizeConstraints carries the per-holding weight bounds of an
// optimization request. Omitted bounds default to the full [0, 1] range.
type OptimizeConstraints struct {
	MinWeight *float64 `json:"minWeight,omitempty"`
	MaxWeight *float64 `json:"maxWeight,omitempty"`
}

// OptimizePortfolioRequest represents the request body for running an
// optimization cycle.
type OptimizePortfolioRequest struct {
	RiskTolerance  *float64            `json:"riskTolerance"`
	Constraints    OptimizeConstraints `json:"constraints"`
	TimeoutSeconds *int                `json:"timeoutSeconds,omitempty"`
}
