// Package search provides full-text lookup over the known security universe,
// backing the research search endpoint. The index lives in memory and is
// rebuilt at boot from the seed universe plus any tickers later discovered
// through portfolio activity.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Listing is one searchable security.
type Listing struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Engine wraps an in-memory bleve index of security listings.
type Engine struct {
	index bleve.Index
}

// NewEngine builds the index and loads the given listings into it.
func NewEngine(listings []Listing) (*Engine, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	e := &Engine{index: index}
	if err := e.IndexListings(listings); err != nil {
		return nil, err
	}
	return e, nil
}

// IndexListings adds or updates listings in the index. Keyed by ticker, so
// re-indexing a known ticker refreshes its fields.
func (e *Engine) IndexListings(listings []Listing) error {
	batch := e.index.NewBatch()
	for _, listing := range listings {
		if strings.TrimSpace(listing.Ticker) == "" {
			continue
		}
		if err := batch.Index(strings.ToUpper(listing.Ticker), listing); err != nil {
			return fmt.Errorf("failed to index %s: %w", listing.Ticker, err)
		}
	}
	if err := e.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute index batch: %w", err)
	}
	return nil
}

// Search returns up to limit listings matching the query across ticker,
// company name, sector and industry. Exact ticker matches rank first via a
// boosted term query.
func (e *Engine) Search(query string, limit int) ([]Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Listing{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	tickerQuery := bleve.NewTermQuery(strings.ToUpper(query))
	tickerQuery.SetField("ticker")
	tickerQuery.SetBoost(5)

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(query))
	textQuery := bleve.NewMatchQuery(query)

	searchRequest := bleve.NewSearchRequestOptions(
		bleve.NewDisjunctionQuery(tickerQuery, prefixQuery, textQuery), limit, 0, false)
	searchRequest.Fields = []string{"ticker", "company_name", "sector", "industry", "country"}

	searchResult, err := e.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	listings := make([]Listing, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		listings = append(listings, Listing{
			Ticker:      stringField(hit.Fields, "ticker"),
			CompanyName: stringField(hit.Fields, "company_name"),
			Sector:      stringField(hit.Fields, "sector"),
			Industry:    stringField(hit.Fields, "industry"),
			Country:     stringField(hit.Fields, "country"),
		})
	}
	return listings, nil
}

// Close releases the index.
func (e *Engine) Close() error {
	return e.index.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	listingMapping := bleve.NewDocumentMapping()
	tickerMapping := bleve.NewTextFieldMapping()
	tickerMapping.Analyzer = "keyword"
	listingMapping.AddFieldMappingsAt("ticker", tickerMapping)

	textMapping := bleve.NewTextFieldMapping()
	for _, field := range []string{"company_name", "sector", "industry", "country"} {
		listingMapping.AddFieldMappingsAt(field, textMapping)
	}

	indexMapping.DefaultMapping = listingMapping
	return indexMapping
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// SeedUniverse is the default searchable universe installed at boot when no
// external listing feed is configured.
func SeedUniverse() []Listing {
	return []Listing{
		{Ticker: "AAPL", CompanyName: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics", Country: "United States"},
		{Ticker: "MSFT", CompanyName: "Microsoft Corporation", Sector: "Technology", Industry: "Software", Country: "United States"},
		{Ticker: "GOOGL", CompanyName: "Alphabet Inc.", Sector: "Communication Services", Industry: "Internet Content", Country: "United States"},
		{Ticker: "AMZN", CompanyName: "Amazon.com, Inc.", Sector: "Consumer Cyclical", Industry: "Internet Retail", Country: "United States"},
		{Ticker: "META", CompanyName: "Meta Platforms, Inc.", Sector: "Communication Services", Industry: "Internet Content", Country: "United States"},
		{Ticker: "TSLA", CompanyName: "Tesla, Inc.", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers", Country: "United States"},
		{Ticker: "NVDA", CompanyName: "NVIDIA Corporation", Sector: "Technology", Industry: "Semiconductors", Country: "United States"},
		{Ticker: "JPM", CompanyName: "JPMorgan Chase & Co.", Sector: "Financial Services", Industry: "Banks", Country: "United States"},
		{Ticker: "V", CompanyName: "Visa Inc.", Sector: "Financial Services", Industry: "Credit Services", Country: "United States"},
		{Ticker: "JNJ", CompanyName: "Johnson & Johnson", Sector: "Healthcare", Industry: "Drug Manufacturers", Country: "United States"},
	}
}
