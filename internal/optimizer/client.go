package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
)

// Client translates a portfolio snapshot and risk intent into an engine call
// under a caller-supplied deadline. It performs no retries; retry policy
// belongs to the caller.
type Client struct {
	engine Engine
}

// NewClient creates a client around the given engine.
func NewClient(engine Engine) *Client {
	return &Client{engine: engine}
}

// RequestOptimization runs one optimization against the engine.
//
// The engine call is the only suspension point of an optimize cycle. A
// deadline of zero means no client-side limit. Collaborator failures map onto
// the error taxonomy:
//   - deadline elapsed: ErrOptimizerTimeout
//   - caller cancellation: the context error, unwrapped
//   - infeasible constraints: ErrOptimizerRejected (from the engine)
//   - anything else: ErrOptimizerUnavailable
func (c *Client) RequestOptimization(
	ctx context.Context,
	snapshot model.Portfolio,
	riskTolerance float64,
	constraints model.Constraints,
	deadline time.Duration,
) (Result, error) {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	req := Request{
		Tickers:       snapshot.Tickers(),
		RiskTolerance: riskTolerance,
		Constraints:   constraints,
	}

	type engineReply struct {
		result Result
		err    error
	}
	replyCh := make(chan engineReply, 1)
	go func() {
		result, err := c.engine.Optimize(ctx, req)
		replyCh <- engineReply{result, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w after %v", apperrors.ErrOptimizerTimeout, deadline)
		}
		return Result{}, ctx.Err()
	case reply := <-replyCh:
		if reply.err != nil {
			return Result{}, translateEngineError(reply.err, deadline)
		}
		return reply.result, nil
	}
}

func translateEngineError(err error, deadline time.Duration) error {
	switch {
	case errors.Is(err, apperrors.ErrOptimizerRejected):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %v", apperrors.ErrOptimizerTimeout, deadline)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrOptimizerUnavailable, err)
	}
}
