package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "praxis.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PRAXIS_PORT")
	setString(&cfg.Server.CORSOrigin, "PRAXIS_CORS_ORIGIN")
	setDuration(&cfg.Server.ReadTimeout, "PRAXIS_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "PRAXIS_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "PRAXIS_IDLE_TIMEOUT")
	setInt64(&cfg.Server.MaxBodyBytes, "PRAXIS_MAX_BODY_BYTES")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "PRAXIS_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "PRAXIS_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "PRAXIS_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "PRAXIS_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "PRAXIS_PG_HEALTH_CHECK")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "PRAXIS_NATS_STREAM")

	setString(&cfg.Auth.JWTSecret, "PRAXIS_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenTTL, "PRAXIS_ACCESS_TOKEN_TTL")
	setDuration(&cfg.Auth.RefreshTokenTTL, "PRAXIS_REFRESH_TOKEN_TTL")
	setString(&cfg.Auth.Issuer, "PRAXIS_JWT_ISSUER")
	setString(&cfg.Auth.Audience, "PRAXIS_JWT_AUDIENCE")
	setInt(&cfg.Auth.BcryptCost, "PRAXIS_BCRYPT_COST")
	setString(&cfg.Auth.SeedAdminEmail, "PRAXIS_SEED_ADMIN_EMAIL")

	setString(&cfg.Logging.Level, "PRAXIS_LOG_LEVEL")
	setString(&cfg.Logging.Service, "PRAXIS_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "PRAXIS_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "PRAXIS_BREAKER_TIMEOUT")

	setInt(&cfg.Rate.RequestsPerWindow, "PRAXIS_RATE_REQUESTS")
	setDuration(&cfg.Rate.Window, "PRAXIS_RATE_WINDOW")

	setDuration(&cfg.Idempotency.TTL, "PRAXIS_IDEMPOTENCY_TTL")

	setInt64(&cfg.Cache.L1MaxSizeMB, "PRAXIS_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.L1TTL, "PRAXIS_CACHE_L1_TTL")

	setBool(&cfg.AI.OpenAI.Enabled, "PRAXIS_AI_OPENAI_ENABLED")
	setString(&cfg.AI.OpenAI.BaseURL, "PRAXIS_AI_OPENAI_BASE_URL")
	setString(&cfg.AI.OpenAI.Model, "PRAXIS_AI_OPENAI_MODEL")
	setBool(&cfg.AI.Anthropic.Enabled, "PRAXIS_AI_ANTHROPIC_ENABLED")
	setString(&cfg.AI.Anthropic.BaseURL, "PRAXIS_AI_ANTHROPIC_BASE_URL")
	setString(&cfg.AI.Anthropic.Model, "PRAXIS_AI_ANTHROPIC_MODEL")
	setBool(&cfg.AI.Google.Enabled, "PRAXIS_AI_GOOGLE_ENABLED")
	setString(&cfg.AI.Google.BaseURL, "PRAXIS_AI_GOOGLE_BASE_URL")
	setString(&cfg.AI.Google.Model, "PRAXIS_AI_GOOGLE_MODEL")
	setStringSlice(&cfg.AI.Priority, "PRAXIS_AI_PRIORITY")
	setInt(&cfg.AI.ConsensusQuorum, "PRAXIS_AI_CONSENSUS_QUORUM")
	setDuration(&cfg.AI.RequestTimeout, "PRAXIS_AI_REQUEST_TIMEOUT")
	setDuration(&cfg.AI.CacheTTL, "PRAXIS_AI_CACHE_TTL")
	setInt(&cfg.AI.MaxTokens, "PRAXIS_AI_MAX_TOKENS")

	setBool(&cfg.MCP.Enabled, "PRAXIS_MCP_ENABLED")
	setString(&cfg.MCP.Port, "PRAXIS_MCP_PORT")

	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (set PRAXIS_JWT_SECRET)")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 bytes")
	}
	if cfg.Auth.BcryptCost < 10 || cfg.Auth.BcryptCost > 15 {
		return errors.New("auth.bcrypt_cost must be between 10 and 15")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.RequestsPerWindow < 1 {
		return errors.New("rate.requests_per_window must be >= 1")
	}
	if cfg.Rate.Window <= 0 {
		return errors.New("rate.window must be positive")
	}
	if len(cfg.AI.Priority) == 0 {
		return errors.New("ai.priority must list at least one provider")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		*dst = parts
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
