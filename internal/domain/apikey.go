package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APITokenPrefix starts every storelens API token: slk_ + 64 hex chars.
const APITokenPrefix = "slk_"

const apiTokenHexLen = 64

// APIKey authenticates requests on behalf of a workspace. Only the token's
// hash is kept; the plaintext is shown once, at creation.
type APIKey struct {
	ID          string
	WorkspaceID string
	Name        string
	KeyHash     string
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

func NewAPIKey(id, workspaceID, name, keyHash string, createdAt time.Time, revokedAt *time.Time) *APIKey {
	return &APIKey{
		ID:          id,
		WorkspaceID: workspaceID,
		Name:        name,
		KeyHash:     keyHash,
		CreatedAt:   createdAt,
		RevokedAt:   revokedAt,
	}
}

func (a *APIKey) IsRevoked() bool {
	return a.RevokedAt != nil
}

func ValidateAPIKey(a *APIKey) error {
	if a == nil {
		return fmt.Errorf("api key cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("api key ID is required")
	}

	if a.WorkspaceID == "" {
		return fmt.Errorf("api key WorkspaceID is required")
	}

	if a.Name == "" {
		return fmt.Errorf("api key Name is required")
	}

	if len(a.KeyHash) != sha256.Size*2 {
		return fmt.Errorf("api key KeyHash must be a hex sha256 digest")
	}

	return nil
}

// GenerateAPIToken returns a fresh token from 32 random bytes.
func GenerateAPIToken() (string, error) {
	buf := make([]byte, apiTokenHexLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return APITokenPrefix + hex.EncodeToString(buf), nil
}

// HashAPIToken is the lookup key stored in place of a token.
func HashAPIToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// IsValidAPIToken checks the token shape without a lookup. Hex digits may be
// upper or lower case.
func IsValidAPIToken(token string) bool {
	hexPart, ok := strings.CutPrefix(token, APITokenPrefix)
	if !ok || len(hexPart) != apiTokenHexLen {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}
