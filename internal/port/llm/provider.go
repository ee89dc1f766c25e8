// Package llm defines the LLM provider port: the request/response shape
// shared by all provider adapters and a process-wide provider registry.
package llm

import "context"

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string // provider model identifier
	System      string // system prompt
	Prompt      string // user prompt
	MaxTokens   int
	Temperature float64
}

// Usage reports token consumption for one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a provider-agnostic completion response.
type Response struct {
	Text     string
	Model    string // model that actually served the request
	Provider string // provider name, set by the adapter
	Usage    Usage
}

// Provider is the port interface implemented by each LLM adapter.
type Provider interface {
	// Name returns the registry name of the provider (e.g. "openai").
	Name() string

	// Complete performs a single completion request.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Healthy reports whether the provider is currently usable:
	// configured, authenticated, and not circuit-broken.
	Healthy() bool
}
