package testutil

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/thewhitelisted/optiq/internal/search"
	"github.com/thewhitelisted/optiq/internal/service"
	"github.com/thewhitelisted/optiq/internal/store"
)

// MakeID generates a random UUID string for test entities.
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a random plausible ticker symbol, e.g. "QXJZ".
func MakeTicker() string {
	letters := []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	ticker := make([]rune, 4)
	for i := range ticker {
		ticker[i] = letters[rand.Intn(len(letters))]
	}
	return string(ticker)
}

// NewTestStore creates an in-memory store with no persistence.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(nil)
}

// NewTestSearchEngine creates an in-memory search engine seeded with the
// default listing universe.
func NewTestSearchEngine(t *testing.T) *search.Engine {
	t.Helper()

	engine, err := search.NewEngine(search.SeedUniverse())
	if err != nil {
		t.Fatalf("Failed to build test search index: %v", err)
	}
	t.Cleanup(func() {
		engine.Close()
	})
	return engine
}

// NewTestPortfolioService wires a portfolio service around an in-memory store
// and the given market data mock.
func NewTestPortfolioService(t *testing.T, st *store.Store, market *MockMarketClient) *service.PortfolioService {
	t.Helper()
	return service.NewPortfolioService(st, market, NewTestSearchEngine(t))
}

// Float64Eq reports whether two floats are equal within tolerance.
func Float64Eq(a, b, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// AssertFloat64Ptr fails the test unless got points at a value within
// tolerance of want.
func AssertFloat64Ptr(t *testing.T, name string, got *float64, want, tolerance float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	if !Float64Eq(*got, want, tolerance) {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}
