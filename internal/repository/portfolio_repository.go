package repository

import (
	"database/sql"
	"fmt"

	"github.com/thewhitelisted/optiq/internal/model"
)

// PortfolioRepository provides data access for the portfolio and holding
// tables. The in-memory store is the authority at runtime; this repository is
// the durable write-through backing and the boot-time source.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided
// database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// SavePortfolio persists one committed portfolio snapshot: the portfolio row
// is upserted and the holding set replaced wholesale, all in one transaction
// so a reader of the database never sees a partial holding set.
func (r *PortfolioRepository) SavePortfolio(p model.Portfolio) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
          INSERT INTO portfolio (id, name, book_cost, current_value, version)
          VALUES (?, ?, ?, ?, ?)
          ON CONFLICT(id) DO UPDATE SET
              name = excluded.name,
              book_cost = excluded.book_cost,
              current_value = excluded.current_value,
              version = excluded.version
      `, p.ID, p.Name, p.BookCost, nullableFloat(p.CurrentValue), p.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio row: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM holding WHERE portfolio_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	for _, s := range p.Stocks {
		_, err := tx.Exec(`
              INSERT INTO holding (portfolio_id, ticker, company_name, sector, industry, weight, current_price)
              VALUES (?, ?, ?, ?, ?, ?, ?)
          `, p.ID, s.Ticker, s.CompanyName, s.Sector, s.Industry,
			nullableFloat(s.Weight), nullableFloat(s.CurrentPrice))
		if err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", s.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio save: %w", err)
	}
	return nil
}

// LoadPortfolios reads every persisted portfolio with its holdings, ordered
// by ticker within each portfolio. Used once at boot to seed the store.
func (r *PortfolioRepository) LoadPortfolios() ([]model.Portfolio, error) {
	rows, err := r.db.Query(`
          SELECT id, name, book_cost, current_value, version
          FROM portfolio
          ORDER BY id
      `)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	var portfolios []model.Portfolio
	for rows.Next() {
		var p model.Portfolio
		var currentValue sql.NullFloat64

		err := rows.Scan(&p.ID, &p.Name, &p.BookCost, &currentValue, &p.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		if currentValue.Valid {
			p.CurrentValue = model.Float64Ptr(currentValue.Float64)
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	for i := range portfolios {
		stocks, err := r.loadHoldings(portfolios[i].ID)
		if err != nil {
			return nil, err
		}
		portfolios[i].Stocks = stocks
	}
	return portfolios, nil
}

func (r *PortfolioRepository) loadHoldings(portfolioID string) ([]model.Stock, error) {
	rows, err := r.db.Query(`
          SELECT ticker, company_name, sector, industry, weight, current_price
          FROM holding
          WHERE portfolio_id = ?
          ORDER BY ticker
      `, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}
	for rows.Next() {
		var s model.Stock
		var weight, price sql.NullFloat64

		err := rows.Scan(&s.Ticker, &s.CompanyName, &s.Sector, &s.Industry, &weight, &price)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding row: %w", err)
		}
		if weight.Valid {
			s.Weight = model.Float64Ptr(weight.Float64)
		}
		if price.Valid {
			s.CurrentPrice = model.Float64Ptr(price.Float64)
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return stocks, nil
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
