package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/thewhitelisted/optiq/internal/apperrors"
	"github.com/thewhitelisted/optiq/internal/database"
	"github.com/thewhitelisted/optiq/internal/repository"
	"github.com/thewhitelisted/optiq/internal/secrets"
	"github.com/thewhitelisted/optiq/internal/version"
)

// SystemService handles system-level operations: health, version, and the
// market data API key setting (encrypted at rest).
type SystemService struct {
	db           *sql.DB
	settingsRepo *repository.SettingsRepository
	vault        *secrets.Vault
	applyAPIKey  func(string)
}

// NewSystemService creates a new SystemService. vault may be nil, which
// disables key management; applyAPIKey may be nil when no live client needs
// the key pushed.
func NewSystemService(db *sql.DB, settingsRepo *repository.SettingsRepository, vault *secrets.Vault, applyAPIKey func(string)) *SystemService {
	return &SystemService{
		db:           db,
		settingsRepo: settingsRepo,
		vault:        vault,
		applyAPIKey:  applyAPIKey,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version string.
func (s *SystemService) CheckVersion() string {
	return version.Version
}

// SetMarketDataAPIKey encrypts and stores the market data API key, then
// pushes it to the live client.
func (s *SystemService) SetMarketDataAPIKey(plaintext string) error {
	if s.vault == nil {
		return fmt.Errorf("secret storage is not configured: set FERNET_KEY")
	}
	token, err := s.vault.Encrypt(plaintext)
	if err != nil {
		return err
	}
	if err := s.settingsRepo.Set(repository.SettingMarketDataAPIKey, token); err != nil {
		return err
	}
	if s.applyAPIKey != nil {
		s.applyAPIKey(plaintext)
	}
	return nil
}

// LoadMarketDataAPIKey decrypts the stored key, if any, and pushes it to the
// live client. Returns whether a key was configured.
func (s *SystemService) LoadMarketDataAPIKey() (bool, error) {
	if s.vault == nil {
		return false, nil
	}
	token, err := s.settingsRepo.Get(repository.SettingMarketDataAPIKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrSettingNotFound) {
			return false, nil
		}
		return false, err
	}
	plaintext, err := s.vault.Decrypt(token)
	if err != nil {
		return false, err
	}
	if s.applyAPIKey != nil {
		s.applyAPIKey(plaintext)
	}
	return true, nil
}

// MarketDataKeyConfigured reports whether a key is stored, without
// decrypting it.
func (s *SystemService) MarketDataKeyConfigured() (bool, error) {
	_, err := s.settingsRepo.Get(repository.SettingMarketDataAPIKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrSettingNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
