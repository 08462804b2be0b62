// Package secrets encrypts sensitive settings (external API keys) before they
// reach the database, using fernet tokens.
package secrets

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// Vault encrypts and decrypts short secrets with a single fernet key.
type Vault struct {
	key *fernet.Key
}

// NewVault parses a base64-encoded fernet key. Returns an error for an empty
// or malformed key; callers treat a nil vault as "secrets disabled".
func NewVault(encodedKey string) (*Vault, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("fernet key is empty")
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet key: %w", err)
	}
	return &Vault{key: key}, nil
}

// Encrypt seals a plaintext secret into a fernet token.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), v.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return string(token), nil
}

// Decrypt opens a fernet token. Tokens do not expire; the zero TTL disables
// the age check.
func (v *Vault) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), time.Duration(0), []*fernet.Key{v.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt secret: token invalid for configured key")
	}
	return string(plaintext), nil
}
