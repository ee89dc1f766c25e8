package secrets

import "os"

// Environment variables holding LLM provider API keys.
const (
	KeyOpenAI    = "OPENAI_API_KEY"
	KeyAnthropic = "ANTHROPIC_API_KEY"
	KeyGoogle    = "GOOGLE_API_KEY"
)

// EnvLoader returns a Loader that reads the named environment variables.
// Unset or empty variables are omitted so callers can distinguish a
// configured provider from an unconfigured one.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}
