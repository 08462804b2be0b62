package model

// Mutation is one validated change to a portfolio's holding set. Mutations are
// applied atomically by the store: the whole stock set is replaced as one
// unit, and a rejected mutation leaves the store untouched.
type Mutation interface {
	mutation()
}

// AddStock inserts a new holding. Fails if the ticker already exists.
type AddStock struct {
	Stock Stock
}

// EditStock assigns a new weight to an existing holding.
type EditStock struct {
	Ticker string
	Weight float64
}

// RemoveStock deletes a holding by ticker.
type RemoveStock struct {
	Ticker string
}

// ReplaceStocks swaps the entire holding set in one unit. Used for bulk edits
// and for committing optimization merges. All-or-nothing: if any resulting
// stock violates an invariant the whole replacement is rejected.
type ReplaceStocks struct {
	Stocks []Stock
}

// AnnotateStock backfills display data (company name, current price) from the
// market data collaborator. It never touches weights and is applied
// opportunistically; annotating an unknown ticker fails without side effects.
type AnnotateStock struct {
	Ticker       string
	CompanyName  *string
	CurrentPrice *float64
}

func (AddStock) mutation()      {}
func (EditStock) mutation()     {}
func (RemoveStock) mutation()   {}
func (ReplaceStocks) mutation() {}
func (AnnotateStock) mutation() {}
