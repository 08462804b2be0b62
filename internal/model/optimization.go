package model

// Constraints are the per-holding weight bounds supplied to an optimization
// request. Both bounds lie in [0, 1] with MinWeight <= MaxWeight.
type Constraints struct {
	MinWeight float64 `json:"minWeight"`
	MaxWeight float64 `json:"maxWeight"`
}

// WeightProposal maps tickers to proposed weights. A valid proposal only
// references tickers present in the snapshot it was computed from, keeps every
// weight within the requested bounds, and sums to 1 within tolerance.
type WeightProposal map[string]float64

// WeightDelta records how one holding's weight changed during a merge.
// OldWeight and NewWeight are nil when no weight was defined on that side.
// Unproposed marks holdings the optimizer returned no weight for; their prior
// weight is carried over unchanged.
type WeightDelta struct {
	Ticker     string   `json:"ticker"`
	OldWeight  *float64 `json:"oldWeight"`
	NewWeight  *float64 `json:"newWeight"`
	Unproposed bool     `json:"unproposed,omitempty"`
}

// RiskMetrics reports the return statistics behind a weight proposal.
// Matrices are keyed by ticker on both axes.
type RiskMetrics struct {
	CovarianceMatrix  map[string]map[string]float64 `json:"covarianceMatrix"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlationMatrix"`
}

// OptimizationOutcome is the committed result of one optimize cycle.
type OptimizationOutcome struct {
	Portfolio   Portfolio     `json:"portfolio"`
	Deltas      []WeightDelta `json:"deltas"`
	Metrics     *RiskMetrics  `json:"metrics,omitempty"`
	BaseVersion uint64        `json:"baseVersion"`
}
