package user

import (
	"errors"
	"time"
)

// APIKeyPrefix is prepended to every generated API key so keys are
// recognizable in logs and config files without exposing the secret.
const APIKeyPrefix = "pxk_"

// APIKey represents a long-lived API credential for programmatic access.
// Only the SHA-256 hash of the key is stored; the plaintext is shown once
// at creation time.
type APIKey struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TenantID   string     `json:"tenant_id"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"` // first 12 chars, for identification
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateAPIKeyRequest is the input for minting a new API key.
type CreateAPIKeyRequest struct {
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in,omitempty"` // days, 0 = never
}

// Validate checks the CreateAPIKeyRequest.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.ExpiresIn < 0 {
		return errors.New("expires_in must not be negative")
	}
	return nil
}

// CreateAPIKeyResponse returns the plaintext key exactly once.
type CreateAPIKeyResponse struct {
	Key    APIKey `json:"key"`
	Secret string `json:"secret"`
}
