// Praxis is the legal operations backend: REST API, async AI analysis
// workers, and an MCP server for agent access.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	pxhttp "github.com/praxis-legal/praxis/internal/adapter/http"
	"github.com/praxis-legal/praxis/internal/adapter/mcp"
	pxnats "github.com/praxis-legal/praxis/internal/adapter/nats"
	"github.com/praxis-legal/praxis/internal/adapter/otel"
	"github.com/praxis-legal/praxis/internal/adapter/postgres"
	pxredis "github.com/praxis-legal/praxis/internal/adapter/redis"
	"github.com/praxis-legal/praxis/internal/adapter/ristretto"
	"github.com/praxis-legal/praxis/internal/adapter/tiered"
	"github.com/praxis-legal/praxis/internal/adapter/ws"
	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/logger"
	"github.com/praxis-legal/praxis/internal/middleware"
	"github.com/praxis-legal/praxis/internal/secrets"
	"github.com/praxis-legal/praxis/internal/service"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"mcp_enabled", cfg.MCP.Enabled,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool)

	redisClient, err := pxredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	queue, err := pxnats.Connect(ctx, cfg.NATS)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	l2 := pxredis.NewCache(redisClient)
	responseCache := tiered.New(l1, l2, cfg.Cache.L1TTL)

	// --- LLM providers ---
	vault, err := secrets.NewVault(secrets.EnvLoader(
		secrets.KeyOpenAI, secrets.KeyAnthropic, secrets.KeyGoogle,
	))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	registerProviders(cfg, vault)

	orch := service.NewOrchestrator(cfg.AI, responseCache, log)

	// --- Services ---
	hub := ws.NewHub()
	authSvc := service.NewAuthService(store, cfg.Auth, log)
	tenantSvc := service.NewTenantService(store)
	userSvc := service.NewUserService(store)
	clientSvc := service.NewClientService(store)
	matterSvc := service.NewMatterService(store)
	contractSvc := service.NewContractService(store)
	disputeSvc := service.NewDisputeService(store)
	documentSvc := service.NewDocumentService(store)
	analysisSvc := service.NewAnalysisService(store, queue, orch, hub, log)
	draftSvc := service.NewDraftService(store, queue, orch, hub, log)

	if cfg.Telemetry.OTLPEndpoint != "" {
		metrics, err := otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		orch.SetMetrics(metrics)
		analysisSvc.SetMetrics(metrics)
		draftSvc.SetMetrics(metrics)
	}

	if err := authSvc.SeedAdmin(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	authSvc.StartTokenCleanup(ctx, time.Hour)

	// --- Async workers ---
	cancelAnalyses, err := analysisSvc.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("analysis subscriber: %w", err)
	}
	defer cancelAnalyses()

	cancelDrafts, err := draftSvc.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("draft subscriber: %w", err)
	}
	defer cancelDrafts()

	// --- HTTP ---
	handlers := &pxhttp.Handlers{
		Auth:      authSvc,
		Tenants:   tenantSvc,
		Users:     userSvc,
		Clients:   clientSvc,
		Matters:   matterSvc,
		Contracts: contractSvc,
		Disputes:  disputeSvc,
		Documents: documentSvc,
		Analyses:  analysisSvc,
		Drafts:    draftSvc,
		LLM:       orch,
		Hub:       hub,
		Version:   version,

		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if !queue.IsConnected() {
				return fmt.Errorf("nats disconnected")
			}
			return nil
		},
	}

	limiter := pxredis.NewSlidingWindow(redisClient, cfg.Rate.RequestsPerWindow, cfg.Rate.Window)

	// No RealIP middleware: the rate limiter keys on the TCP peer address
	// and must not honor client-supplied proxy headers.
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(pxhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(pxhttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(otel.HTTPMiddleware())
	r.Use(pxhttp.Logger)
	r.Use(middleware.TenantID)
	r.Use(middleware.RateLimit(limiter, log))
	r.Use(middleware.Idempotency(l2, cfg.Idempotency.TTL))

	pxhttp.MountRoutes(r, handlers, middleware.Auth(authSvc))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// --- MCP ---
	var mcpSrv *mcp.Server
	if cfg.MCP.Enabled {
		mcpSrv = mcp.NewServer(mcp.ServerConfig{
			Addr:    ":" + cfg.MCP.Port,
			Name:    "praxis",
			Version: version,
		}, mcp.ServerDeps{
			Matters:   matterSvc,
			Contracts: contractSvc,
			Analyses:  analysisSvc,
			Drafts:    draftSvc,
			Providers: orch,
			Validate:  authSvc.ValidateAPIKey,
		})
		if err := mcpSrv.Start(); err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
	}

	// --- Graceful shutdown ---
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mcpSrv != nil {
		if err := mcpSrv.Stop(shutdownCtx); err != nil {
			slog.Error("mcp shutdown failed", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Error("otel shutdown failed", "error", err)
	}
	return nil
}
