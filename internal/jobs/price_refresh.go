// Package jobs holds scheduled background work. Jobs only consult external
// collaborators opportunistically: a failed refresh is logged and dropped,
// never surfaced into a mutation path.
package jobs

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thewhitelisted/optiq/internal/marketdata"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/store"
)

// refreshTimeout bounds one full refresh sweep.
const refreshTimeout = 2 * time.Minute

// maxConcurrentQuotes bounds the per-ticker quote fan-out.
const maxConcurrentQuotes = 4

// PriceRefresher updates the current price and company name of every held
// ticker from market data.
type PriceRefresher struct {
	store      *store.Store
	marketData marketdata.Client
}

// NewPriceRefresher creates a new PriceRefresher.
func NewPriceRefresher(store *store.Store, marketData marketdata.Client) *PriceRefresher {
	return &PriceRefresher{store: store, marketData: marketData}
}

// Run executes one refresh sweep: collect the distinct held tickers, quote
// them concurrently, and annotate each holding. Per-ticker failures are
// logged and skipped; a holding removed mid-sweep is skipped silently.
func (r *PriceRefresher) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	holders := make(map[string][]string) // ticker -> portfolio ids
	for _, p := range r.store.List() {
		for _, s := range p.Stocks {
			holders[s.Ticker] = append(holders[s.Ticker], p.ID)
		}
	}
	if len(holders) == 0 {
		return
	}

	start := time.Now()
	var updated atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for ticker, portfolioIDs := range holders {
		g.Go(func() error {
			quote, err := r.marketData.Quote(gctx, ticker)
			if err != nil {
				log.Printf("price refresh: quote for %s failed: %v", ticker, err)
				return nil
			}

			annotate := model.AnnotateStock{Ticker: ticker}
			if quote.CompanyName != "" {
				annotate.CompanyName = &quote.CompanyName
			}
			if quote.CurrentPrice > 0 {
				annotate.CurrentPrice = &quote.CurrentPrice
			}
			for _, id := range portfolioIDs {
				if _, err := r.store.Apply(id, annotate); err != nil {
					log.Printf("price refresh: annotate %s in %s failed: %v", ticker, id, err)
					continue
				}
				updated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("price refresh: updated %d holdings across %d tickers in %s",
		updated.Load(), len(holders), time.Since(start))
}
