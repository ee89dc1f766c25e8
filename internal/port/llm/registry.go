package llm

import (
	"fmt"
	"sync"
)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available by name.
// Registering the same name twice is a programming error.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()

	name := p.Name()
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("llm: duplicate registration for %q", name))
	}
	providers[name] = p
}

// Get returns the provider registered under name.
func Get(name string) (Provider, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
	return p, nil
}

// Available returns the names of all registered providers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

// Reset removes all registered providers. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	providers = make(map[string]Provider)
}
