package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTickerNotFound indicates that a holding with the given ticker does not
	// exist in the target portfolio.
	ErrTickerNotFound = errors.New("ticker not found in portfolio")

	// ErrSymbolNotFound indicates that a market data lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSettingNotFound indicates that a system setting has not been configured.
	ErrSettingNotFound = errors.New("setting not found")
)

// Validation errors represent rejected mutation payloads. They are always
// local and synchronous: the store state is never changed when one is returned.
var (
	// ErrInvalidTicker indicates an empty ticker or a ticker that duplicates an
	// existing holding in the target portfolio.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrWeightOutOfRange indicates a holding weight outside [0, 1], or a
	// committed stock set whose weights would sum past 1.
	ErrWeightOutOfRange = errors.New("weight out of range")

	// ErrInvalidConstraintRange indicates optimization weight bounds outside
	// [0, 1] or a lower bound above the upper bound.
	ErrInvalidConstraintRange = errors.New("invalid constraint range")

	// ErrInvalidRiskTolerance indicates a risk tolerance outside [0, 1].
	ErrInvalidRiskTolerance = errors.New("invalid risk tolerance")

	// ErrDuplicateEntry indicates that an entity with the same unique
	// constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Coordination errors are surfaced when concurrent operations against the same
// portfolio conflict. The caller decides whether to retry.
var (
	// ErrOptimizationInProgress indicates that an optimization cycle is already
	// in flight for the portfolio. Requests are not queued.
	ErrOptimizationInProgress = errors.New("optimization already in progress")

	// ErrOptimizationStale indicates that a concurrent edit removed a holding
	// while an optimization was in flight, so its proposal no longer applies.
	// The portfolio reflects the edit only; the caller must re-issue the request.
	ErrOptimizationStale = errors.New("optimization stale: portfolio changed during optimization")
)

// Collaborator errors are surfaced verbatim from the external optimizer.
// No fallback allocation is ever substituted.
var (
	// ErrOptimizerUnavailable indicates a transport or collaborator failure.
	ErrOptimizerUnavailable = errors.New("optimizer unavailable")

	// ErrOptimizerRejected indicates the optimizer reported the constraints as
	// infeasible (e.g. the lower bound times the holding count exceeds 1).
	ErrOptimizerRejected = errors.New("optimizer rejected constraints as infeasible")

	// ErrOptimizerTimeout indicates the caller-supplied deadline elapsed before
	// the optimizer responded.
	ErrOptimizerTimeout = errors.New("optimizer timed out")
)

// Consistency errors indicate a contract violation by the optimizer or a race
// with a concurrent edit. They always abort the merge; a partially reweighted
// portfolio is never committed.
var (
	// ErrProposalStaleTickers indicates a weight proposal referencing a ticker
	// that is not part of the portfolio snapshot being merged.
	ErrProposalStaleTickers = errors.New("proposal references tickers absent from portfolio")

	// ErrProposalSumInvalid indicates a merged weight set whose sum deviates
	// from 1 beyond tolerance.
	ErrProposalSumInvalid = errors.New("proposal weights do not sum to 1")
)
