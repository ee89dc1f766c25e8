package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/port/cache"
	"github.com/praxis-legal/praxis/internal/port/llm"
)

// ErrNoProvider is returned when no healthy LLM provider can serve a request.
var ErrNoProvider = errors.New("no healthy llm provider available")

// ProviderMetrics receives per-completion measurements. Implemented by the
// otel adapter; nil disables recording.
type ProviderMetrics interface {
	RecordCompletion(ctx context.Context, provider, model string, latency time.Duration, costUSD float64, failed bool)
}

// Completion is the result of one orchestrated LLM call.
type Completion struct {
	Response  llm.Response
	CostUSD   float64
	FromCache bool
}

// ProviderInfo describes one registered provider for the listing endpoint.
type ProviderInfo struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Healthy bool   `json:"healthy"`
}

// Orchestrator dispatches completion requests across LLM providers with
// priority selection, fallback, response caching, and cost accounting.
type Orchestrator struct {
	cfg     config.AI
	cache   cache.Cache
	log     *slog.Logger
	sf      singleflight.Group
	metrics ProviderMetrics
}

// NewOrchestrator creates an Orchestrator. The cache is used for response
// replay; pass the tiered cache in production.
func NewOrchestrator(cfg config.AI, c cache.Cache, log *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, cache: c, log: log}
}

// SetMetrics attaches a metrics recorder for completions.
func (o *Orchestrator) SetMetrics(m ProviderMetrics) {
	o.metrics = m
}

// Providers returns the registered providers in configured priority order.
func (o *Orchestrator) Providers() []ProviderInfo {
	var infos []ProviderInfo
	for _, name := range o.cfg.Priority {
		p, err := llm.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, ProviderInfo{
			Name:    name,
			Model:   o.defaultModel(name),
			Healthy: p.Healthy(),
		})
	}
	return infos
}

// Complete runs a single completion. An explicit provider is used as-is;
// otherwise providers are tried in priority order, skipping open breakers
// and falling back on failure. Identical (kind, model, prompt) requests
// are served from cache and collapsed via singleflight while in flight.
func (o *Orchestrator) Complete(ctx context.Context, kind, provider string, req llm.Request) (*Completion, error) {
	candidates, err := o.candidates(provider)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = o.defaultModel(candidates[0].Name())
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = o.cfg.MaxTokens
	}

	key := completionCacheKey(kind, model, req.Prompt)

	v, err, _ := o.sf.Do(key, func() (any, error) {
		if cached, ok := o.cacheGet(ctx, key); ok {
			return &Completion{Response: *cached, CostUSD: 0, FromCache: true}, nil
		}

		resp, err := o.tryProviders(ctx, candidates, req)
		if err != nil {
			return nil, err
		}

		cost := estimateCost(resp.Model, resp.Usage)
		o.cacheSet(ctx, key, resp)
		return &Completion{Response: *resp, CostUSD: cost}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Completion), nil
}

// tryProviders calls each candidate in order until one succeeds.
func (o *Orchestrator) tryProviders(ctx context.Context, candidates []llm.Provider, req llm.Request) (*llm.Response, error) {
	var lastErr error
	for _, p := range candidates {
		cctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
		start := time.Now()
		resp, err := p.Complete(cctx, req)
		cancel()

		if o.metrics != nil {
			var cost float64
			if err == nil {
				cost = estimateCost(resp.Model, resp.Usage)
			}
			o.metrics.RecordCompletion(ctx, p.Name(), req.Model, time.Since(start), cost, err != nil)
		}

		if err == nil {
			return resp, nil
		}
		lastErr = err
		o.log.Warn("provider completion failed, trying next",
			"provider", p.Name(), "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// candidates resolves the provider list for a request. An explicit name
// bypasses health filtering so callers get the real provider error.
func (o *Orchestrator) candidates(explicit string) ([]llm.Provider, error) {
	if explicit != "" {
		p, err := llm.Get(explicit)
		if err != nil {
			return nil, err
		}
		return []llm.Provider{p}, nil
	}

	var out []llm.Provider
	for _, name := range o.cfg.Priority {
		p, err := llm.Get(name)
		if err != nil {
			continue
		}
		if !p.Healthy() {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrNoProvider
	}
	return out, nil
}

func (o *Orchestrator) defaultModel(provider string) string {
	switch provider {
	case "openai":
		return o.cfg.OpenAI.Model
	case "anthropic":
		return o.cfg.Anthropic.Model
	case "google":
		return o.cfg.Google.Model
	}
	return ""
}

func (o *Orchestrator) cacheGet(ctx context.Context, key string) (*llm.Response, bool) {
	if o.cache == nil {
		return nil, false
	}
	data, ok, err := o.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var resp llm.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (o *Orchestrator) cacheSet(ctx context.Context, key string, resp *llm.Response) {
	if o.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, key, data, o.cfg.CacheTTL); err != nil {
		o.log.Warn("failed to cache completion", "error", err)
	}
}

func completionCacheKey(kind, model, prompt string) string {
	h := sha256.Sum256([]byte(kind + "|" + model + "|" + prompt))
	return "llm:" + hex.EncodeToString(h[:])
}
