package repository

import (
	"database/sql"
	"fmt"

	"github.com/thewhitelisted/optiq/internal/apperrors"
)

// Setting keys known to the system.
const (
	// SettingMarketDataAPIKey stores the fernet-encrypted market data API key.
	SettingMarketDataAPIKey = "marketdata_api_key"
)

// SettingsRepository provides data access for the setting table. Values are
// stored as written; encryption of sensitive values is the caller's concern.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided
// database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value stored under key, or ErrSettingNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM setting WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s: %w", key, apperrors.ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value stored under key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
          INSERT INTO setting (key, value, updated_at)
          VALUES (?, ?, CURRENT_TIMESTAMP)
          ON CONFLICT(key) DO UPDATE SET
              value = excluded.value,
              updated_at = CURRENT_TIMESTAMP
      `, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
