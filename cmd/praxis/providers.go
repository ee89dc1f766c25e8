package main

import (
	"log/slog"

	"github.com/praxis-legal/praxis/internal/adapter/anthropic"
	"github.com/praxis-legal/praxis/internal/adapter/googleai"
	"github.com/praxis-legal/praxis/internal/adapter/openai"
	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/port/llm"
	"github.com/praxis-legal/praxis/internal/resilience"
	"github.com/praxis-legal/praxis/internal/secrets"
)

// registerProviders wires up each enabled LLM provider that has an API key
// in the environment. Every provider gets its own circuit breaker so one
// failing upstream cannot trip the others.
func registerProviders(cfg *config.Config, vault *secrets.Vault) {
	type candidate struct {
		name    string
		keyName string
		pcfg    config.Provider
		build   func(config.Provider, string) llm.Provider
	}

	candidates := []candidate{
		{anthropic.Name, secrets.KeyAnthropic, cfg.AI.Anthropic, func(p config.Provider, key string) llm.Provider {
			c := anthropic.New(p, key, cfg.AI.RequestTimeout)
			c.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
			return c
		}},
		{openai.Name, secrets.KeyOpenAI, cfg.AI.OpenAI, func(p config.Provider, key string) llm.Provider {
			c := openai.New(p, key, cfg.AI.RequestTimeout)
			c.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
			return c
		}},
		{googleai.Name, secrets.KeyGoogle, cfg.AI.Google, func(p config.Provider, key string) llm.Provider {
			c := googleai.New(p, key, cfg.AI.RequestTimeout)
			c.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
			return c
		}},
	}

	for _, c := range candidates {
		if !c.pcfg.Enabled {
			continue
		}
		key := vault.Get(c.keyName)
		if key == "" {
			slog.Warn("provider enabled but api key not set, skipping",
				"provider", c.name, "env", c.keyName)
			continue
		}
		llm.Register(c.build(c.pcfg, key))
		slog.Info("llm provider registered", "provider", c.name, "model", c.pcfg.Model)
	}
}
