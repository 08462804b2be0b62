package store_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/store"
	"github.com/thewhitelisted/optiq/internal/testutil"
)

// TestStore_Create tests portfolio registration.
//
// WHY: Creation is the entry point for all state. It must normalize the
// seeded holding set, reject invalid sets wholesale, and refuse duplicate
// IDs so every portfolio has exactly one authoritative entry.
func TestStore_Create(t *testing.T) {
	t.Run("normalizes tickers and sorts holdings", func(t *testing.T) {
		st := testutil.NewTestStore(t)

		p, err := st.Create(model.Portfolio{
			ID:   testutil.MakeID(),
			Name: "Growth",
			Stocks: []model.Stock{
				{Ticker: "msft", Weight: model.Float64Ptr(0.5)},
				{Ticker: "aapl", Weight: model.Float64Ptr(0.5)},
			},
		})
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		if p.Version != 1 {
			t.Errorf("Version = %d, want 1", p.Version)
		}
		if len(p.Stocks) != 2 || p.Stocks[0].Ticker != "AAPL" || p.Stocks[1].Ticker != "MSFT" {
			t.Errorf("Stocks = %+v, want AAPL then MSFT uppercase", p.Stocks)
		}
	})

	t.Run("rejects duplicate ID", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		id := testutil.MakeID()

		if _, err := st.Create(model.Portfolio{ID: id, Name: "First"}); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		_, err := st.Create(model.Portfolio{ID: id, Name: "Second"})
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Create() error = %v, want ErrDuplicateEntry", err)
		}
	})

	t.Run("rejects duplicate tickers after normalization", func(t *testing.T) {
		st := testutil.NewTestStore(t)

		_, err := st.Create(model.Portfolio{
			ID: testutil.MakeID(),
			Stocks: []model.Stock{
				{Ticker: "AAPL"},
				{Ticker: "aapl"},
			},
		})
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Create() error = %v, want ErrInvalidTicker", err)
		}
	})

	t.Run("rejects weights summing past 1", func(t *testing.T) {
		st := testutil.NewTestStore(t)

		_, err := st.Create(model.Portfolio{
			ID: testutil.MakeID(),
			Stocks: []model.Stock{
				{Ticker: "AAPL", Weight: model.Float64Ptr(0.7)},
				{Ticker: "MSFT", Weight: model.Float64Ptr(0.7)},
			},
		})
		if !errors.Is(err, apperrors.ErrWeightOutOfRange) {
			t.Errorf("Create() error = %v, want ErrWeightOutOfRange", err)
		}
	})

	t.Run("allows weights summing below 1", func(t *testing.T) {
		// Partial weight assignment is a legal intermediate state; only the
		// merged result of an optimization must sum to exactly 1.
		st := testutil.NewTestStore(t)

		_, err := st.Create(model.Portfolio{
			ID: testutil.MakeID(),
			Stocks: []model.Stock{
				{Ticker: "AAPL", Weight: model.Float64Ptr(0.3)},
				{Ticker: "MSFT"},
			},
		})
		if err != nil {
			t.Errorf("Create() returned unexpected error: %v", err)
		}
	})
}

// TestStore_Get tests snapshot isolation.
//
// WHY: Snapshots are read without locks throughout the system. If Get
// returned shared pointers, a caller mutating its copy would corrupt
// authoritative state and race with concurrent readers.
func TestStore_Get(t *testing.T) {
	t.Run("returns not found for unknown ID", func(t *testing.T) {
		st := testutil.NewTestStore(t)

		_, err := st.Get(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Get() error = %v, want ErrPortfolioNotFound", err)
		}
	})

	t.Run("snapshot mutations do not affect the store", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		created := testutil.NewPortfolio().WithStock("AAPL", 0.5).Build(t, st)

		snap, err := st.Get(created.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		*snap.Stocks[0].Weight = 0.99
		snap.Stocks[0].Ticker = "HACK"
		snap.Name = "mutated"

		fresh, err := st.Get(created.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if fresh.Name != created.Name || fresh.Stocks[0].Ticker != "AAPL" {
			t.Errorf("store state changed through a snapshot: %+v", fresh)
		}
		testutil.AssertFloat64Ptr(t, "Weight", fresh.Stocks[0].Weight, 0.5, 1e-12)
	})
}

// TestStore_Apply tests the atomic mutation boundary.
//
// WHY: Every state change funnels through Apply. Version accounting,
// holding-set validation, and all-or-nothing semantics on rejection are
// the invariants the rest of the system is built on.
func TestStore_Apply(t *testing.T) {
	t.Run("add stock advances version and keeps order", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("MSFT", 0.4).Build(t, st)

		next, err := st.Apply(p.ID, model.AddStock{Stock: model.Stock{
			Ticker: "aapl", Weight: model.Float64Ptr(0.3),
		}})
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if next.Version != p.Version+1 {
			t.Errorf("Version = %d, want %d", next.Version, p.Version+1)
		}
		if next.Stocks[0].Ticker != "AAPL" {
			t.Errorf("Stocks[0].Ticker = %s, want AAPL (sorted)", next.Stocks[0].Ticker)
		}
	})

	t.Run("add duplicate ticker is rejected", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.4).Build(t, st)

		_, err := st.Apply(p.ID, model.AddStock{Stock: model.Stock{Ticker: "aapl"}})
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Apply() error = %v, want ErrInvalidTicker", err)
		}
	})

	t.Run("edit weight of unknown ticker", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.4).Build(t, st)

		_, err := st.Apply(p.ID, model.EditStock{Ticker: "MSFT", Weight: 0.2})
		if !errors.Is(err, apperrors.ErrTickerNotFound) {
			t.Errorf("Apply() error = %v, want ErrTickerNotFound", err)
		}
	})

	t.Run("edit weight out of range", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.4).Build(t, st)

		_, err := st.Apply(p.ID, model.EditStock{Ticker: "AAPL", Weight: 1.5})
		if !errors.Is(err, apperrors.ErrWeightOutOfRange) {
			t.Errorf("Apply() error = %v, want ErrWeightOutOfRange", err)
		}
	})

	t.Run("rejected mutation leaves state and version untouched", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.6).WithStock("MSFT", 0.3).Build(t, st)

		// Would push the sum to 1.3.
		_, err := st.Apply(p.ID, model.EditStock{Ticker: "MSFT", Weight: 0.7})
		if !errors.Is(err, apperrors.ErrWeightOutOfRange) {
			t.Fatalf("Apply() error = %v, want ErrWeightOutOfRange", err)
		}

		after, err := st.Get(p.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if after.Version != p.Version {
			t.Errorf("Version = %d, want unchanged %d", after.Version, p.Version)
		}
		msft, _ := after.StockByTicker("MSFT")
		testutil.AssertFloat64Ptr(t, "MSFT weight", msft.Weight, 0.3, 1e-12)
	})

	t.Run("remove stock", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.5).WithStock("MSFT", 0.5).Build(t, st)

		next, err := st.Apply(p.ID, model.RemoveStock{Ticker: "AAPL"})
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		if len(next.Stocks) != 1 || next.Stocks[0].Ticker != "MSFT" {
			t.Errorf("Stocks = %+v, want only MSFT", next.Stocks)
		}
	})

	t.Run("replace stocks is all or nothing", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 1).Build(t, st)

		_, err := st.Apply(p.ID, model.ReplaceStocks{Stocks: []model.Stock{
			{Ticker: "GOOG", Weight: model.Float64Ptr(0.8)},
			{Ticker: "AMZN", Weight: model.Float64Ptr(0.8)},
		}})
		if !errors.Is(err, apperrors.ErrWeightOutOfRange) {
			t.Fatalf("Apply() error = %v, want ErrWeightOutOfRange", err)
		}

		after, _ := st.Get(p.ID)
		if len(after.Stocks) != 1 || after.Stocks[0].Ticker != "AAPL" {
			t.Errorf("Stocks = %+v, want original AAPL holding", after.Stocks)
		}
	})

	t.Run("annotate updates price without touching weight", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0.5).Build(t, st)

		name := "Apple Inc."
		price := 187.3
		next, err := st.Apply(p.ID, model.AnnotateStock{
			Ticker: "AAPL", CompanyName: &name, CurrentPrice: &price,
		})
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		got, _ := next.StockByTicker("AAPL")
		if got.CompanyName != "Apple Inc." {
			t.Errorf("CompanyName = %q, want %q", got.CompanyName, "Apple Inc.")
		}
		testutil.AssertFloat64Ptr(t, "CurrentPrice", got.CurrentPrice, 187.3, 1e-12)
		testutil.AssertFloat64Ptr(t, "Weight", got.Weight, 0.5, 1e-12)
	})
}

// TestStore_UpdateDetails tests display field updates.
//
// WHY: Detail updates share the version counter with holding mutations;
// staleness detection depends on every commit advancing it.
func TestStore_UpdateDetails(t *testing.T) {
	t.Run("partial update advances version", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithName("Old").Build(t, st)

		name := "New"
		value := 12500.0
		next, err := st.UpdateDetails(p.ID, &name, nil, &value, nil)
		if err != nil {
			t.Fatalf("UpdateDetails() returned unexpected error: %v", err)
		}

		if next.Name != "New" {
			t.Errorf("Name = %q, want %q", next.Name, "New")
		}
		if next.BookCost != p.BookCost {
			t.Errorf("BookCost = %v, want unchanged %v", next.BookCost, p.BookCost)
		}
		testutil.AssertFloat64Ptr(t, "CurrentValue", next.CurrentValue, 12500.0, 1e-12)
		if next.Version != p.Version+1 {
			t.Errorf("Version = %d, want %d", next.Version, p.Version+1)
		}
	})

	t.Run("details and replacement set commit as one unit", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithName("Old").WithStock("AAPL", 1).Build(t, st)

		name := "New"
		stocks := []model.Stock{
			{Ticker: "MSFT", Weight: model.Float64Ptr(0.6)},
			{Ticker: "GOOG", Weight: model.Float64Ptr(0.4)},
		}
		next, err := st.UpdateDetails(p.ID, &name, nil, nil, &stocks)
		if err != nil {
			t.Fatalf("UpdateDetails() returned unexpected error: %v", err)
		}

		if next.Name != "New" {
			t.Errorf("Name = %q, want %q", next.Name, "New")
		}
		if len(next.Stocks) != 2 {
			t.Fatalf("got %d stocks, want 2", len(next.Stocks))
		}
		if next.Version != p.Version+1 {
			t.Errorf("Version = %d, want %d", next.Version, p.Version+1)
		}
	})

	t.Run("rejected replacement set leaves details and version untouched", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithName("Old").WithStock("AAPL", 1).Build(t, st)

		name := "New"
		stocks := []model.Stock{
			{Ticker: "MSFT", Weight: model.Float64Ptr(0.9)},
			{Ticker: "GOOG", Weight: model.Float64Ptr(0.9)},
		}
		_, err := st.UpdateDetails(p.ID, &name, nil, nil, &stocks)
		if !errors.Is(err, apperrors.ErrWeightOutOfRange) {
			t.Fatalf("UpdateDetails() error = %v, want ErrWeightOutOfRange", err)
		}

		after, err := st.Get(p.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if after.Name != "Old" {
			t.Errorf("Name = %q after failed update, want %q", after.Name, "Old")
		}
		if after.Version != p.Version {
			t.Errorf("Version = %d after failed update, want %d", after.Version, p.Version)
		}
		if _, ok := after.StockByTicker("AAPL"); !ok {
			t.Error("AAPL missing after failed update")
		}
	})
}

// TestStore_ApplyAt tests the optimistic version check on commits.
//
// WHY: The optimize cycle commits its merged set against the version it merged
// from; an edit landing in between must fail the commit, never be overwritten.
func TestStore_ApplyAt(t *testing.T) {
	t.Run("commits when the version still matches", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 1).Build(t, st)

		next, err := st.ApplyAt(p.ID, p.Version, model.EditStock{Ticker: "AAPL", Weight: 0.5})
		if err != nil {
			t.Fatalf("ApplyAt() returned unexpected error: %v", err)
		}
		if next.Version != p.Version+1 {
			t.Errorf("Version = %d, want %d", next.Version, p.Version+1)
		}
	})

	t.Run("fails without committing when the version moved", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 1).Build(t, st)

		if _, err := st.Apply(p.ID, model.EditStock{Ticker: "AAPL", Weight: 0.7}); err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		_, err := st.ApplyAt(p.ID, p.Version, model.EditStock{Ticker: "AAPL", Weight: 0.5})
		if !errors.Is(err, store.ErrVersionConflict) {
			t.Fatalf("ApplyAt() error = %v, want ErrVersionConflict", err)
		}

		after, _ := st.Get(p.ID)
		got, _ := after.StockByTicker("AAPL")
		testutil.AssertFloat64Ptr(t, "Weight", got.Weight, 0.7, 1e-12)
		if after.Version != p.Version+1 {
			t.Errorf("Version = %d, want %d", after.Version, p.Version+1)
		}
	})
}

// TestStore_List tests the multi-portfolio view.
func TestStore_List(t *testing.T) {
	t.Run("returns snapshots ordered by ID", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		testutil.NewPortfolio().WithID("bbb").Build(t, st)
		testutil.NewPortfolio().WithID("aaa").Build(t, st)

		portfolios := st.List()
		if len(portfolios) != 2 {
			t.Fatalf("List() returned %d portfolios, want 2", len(portfolios))
		}
		if portfolios[0].ID != "aaa" || portfolios[1].ID != "bbb" {
			t.Errorf("List() order = %s, %s; want aaa, bbb", portfolios[0].ID, portfolios[1].ID)
		}
	})
}

// TestStore_ConcurrentMutations tests per-portfolio serialization.
//
// WHY: Operations on distinct portfolios must run concurrently while
// mutations on one portfolio serialize. Run with -race this catches both
// lost updates and lock misuse.
func TestStore_ConcurrentMutations(t *testing.T) {
	t.Run("parallel edits on one portfolio all commit", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		p := testutil.NewPortfolio().WithStock("AAPL", 0).Build(t, st)

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.Apply(p.ID, model.EditStock{Ticker: "AAPL", Weight: 0.5})
				if err != nil {
					t.Errorf("Apply() returned unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		after, _ := st.Get(p.ID)
		if after.Version != p.Version+workers {
			t.Errorf("Version = %d, want %d", after.Version, p.Version+workers)
		}
	})

	t.Run("mutations across portfolios do not interfere", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		var ids []string
		for i := 0; i < 5; i++ {
			p := testutil.NewPortfolio().WithID(fmt.Sprintf("pf-%d", i)).WithStock("AAPL", 0).Build(t, st)
			ids = append(ids, p.ID)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if _, err := st.Apply(id, model.EditStock{Ticker: "AAPL", Weight: 0.1}); err != nil {
						t.Errorf("Apply(%s) returned unexpected error: %v", id, err)
					}
				}
			}()
		}
		wg.Wait()

		for _, id := range ids {
			p, _ := st.Get(id)
			if p.Version != 11 {
				t.Errorf("portfolio %s Version = %d, want 11", id, p.Version)
			}
		}
	})
}

// TestStore_PersisterFailure tests that a failed write keeps memory state
// consistent with durable state.
func TestStore_PersisterFailure(t *testing.T) {
	t.Run("commit is rolled back when persistence fails", func(t *testing.T) {
		failing := &failingPersister{}
		st := store.New(failing)

		p := testutil.NewPortfolio().WithStock("AAPL", 0.5)
		failing.fail = false
		created, err := st.Create(model.Portfolio{ID: p.ID, Name: p.Name, Stocks: p.Stocks})
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		failing.fail = true
		if _, err := st.Apply(created.ID, model.EditStock{Ticker: "AAPL", Weight: 0.9}); err == nil {
			t.Fatal("Apply() succeeded, want persistence error")
		}

		after, _ := st.Get(created.ID)
		if after.Version != created.Version {
			t.Errorf("Version = %d, want unchanged %d", after.Version, created.Version)
		}
		aapl, _ := after.StockByTicker("AAPL")
		testutil.AssertFloat64Ptr(t, "Weight", aapl.Weight, 0.5, 1e-12)
	})
}

type failingPersister struct {
	fail bool
}

func (f *failingPersister) SavePortfolio(model.Portfolio) error {
	if f.fail {
		return errors.New("disk full")
	}
	return nil
}
