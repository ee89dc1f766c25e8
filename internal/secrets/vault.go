// Package secrets keeps LLM provider API keys out of the YAML config.
// Keys are read from the process environment at startup and held in
// memory for the lifetime of the process.
package secrets

import (
	"fmt"
	"sync"
)

// Loader fetches the current credential set from its source.
type Loader func() (map[string]string, error)

// Vault hands out provider API keys to the adapter constructors. The key
// map is replaced wholesale on Reload, never mutated, so a rotation takes
// effect for later lookups without touching in-flight requests.
type Vault struct {
	mu     sync.RWMutex
	loader Loader
	keys   map[string]string
}

// NewVault runs the loader once so a misconfigured source fails at startup.
func NewVault(loader Loader) (*Vault, error) {
	keys, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load provider keys: %w", err)
	}
	return &Vault{
		loader: loader,
		keys:   keys,
	}, nil
}

// Get returns the credential stored under key, or "" when absent. Callers
// treat an empty key as "provider not configured".
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.keys[key]
}

// Reload re-runs the loader and swaps in the fresh key set. On loader
// failure the previous keys stay in place.
func (v *Vault) Reload() error {
	keys, err := v.loader()
	if err != nil {
		return fmt.Errorf("refresh provider keys: %w", err)
	}
	v.mu.Lock()
	v.keys = keys
	v.mu.Unlock()
	return nil
}
