package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/models"
)

// ErrCredentialNotFound covers every denial the store can produce: unknown
// key, deactivated key, empty key. Callers cannot tell these apart, so a
// probe learns nothing about which keys exist.
var ErrCredentialNotFound = errors.New("credential not found")

// Store persists API credentials and resolves bearer keys to their owner.
type Store interface {
	// LookupOwner returns the user owning apiKey. Inactive and unknown
	// keys both yield ErrCredentialNotFound.
	LookupOwner(ctx context.Context, apiKey string) (uuid.UUID, error)

	// Create mints a new key for userID. The second return value is the
	// plaintext key, available only at creation time.
	Create(ctx context.Context, userID uuid.UUID, name string) (*models.APICredential, string, error)

	List(ctx context.Context, userID uuid.UUID) ([]models.APICredential, error)

	// Delete removes one of userID's credentials. Deleting someone
	// else's credential is ErrCredentialNotFound.
	Delete(ctx context.Context, userID, credentialID uuid.UUID) error
}

// HashKey returns the hex SHA-256 digest stored in place of the plaintext.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// GenerateKey mints a fresh plaintext API key. The vx_ prefix makes keys
// recognizable in logs and support tickets without revealing the secret.
func GenerateKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "vx_" + hex.EncodeToString(buf), nil
}

// KeyPrefix is the displayable fragment retained alongside the hash.
func KeyPrefix(key string) string {
	if len(key) <= 10 {
		return key
	}
	return key[:10]
}
