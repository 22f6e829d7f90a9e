// Package main provides the entrypoint for the Carbon Guardian API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/alerting"
	"github.com/carbonguardian/carbonguardian/internal/api"
	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
	"github.com/carbonguardian/carbonguardian/internal/apikey"
	"github.com/carbonguardian/carbonguardian/internal/audit"
	"github.com/carbonguardian/carbonguardian/internal/auth"
	"github.com/carbonguardian/carbonguardian/internal/config"
	"github.com/carbonguardian/carbonguardian/internal/database"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
	"github.com/carbonguardian/carbonguardian/internal/provincial"
	"github.com/carbonguardian/carbonguardian/internal/registry"
	"github.com/carbonguardian/carbonguardian/internal/tasks"
	"github.com/carbonguardian/carbonguardian/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "carbonguardian-api"

	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup structured logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting Carbon Guardian API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("database connected")

	// Initialize JWT service for the admin surface
	jwtSigningKey := cfg.Auth.JWTSigningKey
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	})

	// Initialize registry service. The parameter catalog is code-defined
	// outside production; production deployments manage it in the database.
	buildingRepo := registry.NewPostgresBuildingRepository(pool)
	var parameterRepo registry.ParameterRepository
	if cfg.Environment == "production" {
		parameterRepo = registry.NewPostgresParameterRepository(pool)
	} else {
		parameterRepo = registry.NewInMemoryParameterRepository(registry.DefaultParameters())
	}
	registryService := registry.NewService(buildingRepo, parameterRepo)
	log.Info().Msg("registry service initialized")

	// Initialize API key service
	apiKeyService := apikey.NewService(apikey.NewPostgresRepository(pool))
	log.Info().Msg("api key service initialized")

	// Initialize audit log service
	auditService := audit.NewService(audit.NewPostgresRepository(pool), log)
	log.Info().Msg("audit service initialized")

	// Initialize alerting service, with the Pub/Sub system channel when
	// configured
	var notifier alerting.Notifier
	if cfg.Notify.PubSubProjectID != "" {
		psNotifier, notifyErr := alerting.NewPubSubNotifier(ctx, alerting.PubSubConfig{
			ProjectID: cfg.Notify.PubSubProjectID,
			Topic:     cfg.Notify.PubSubTopic,
			Logger:    log,
		})
		if notifyErr != nil {
			log.Fatal().Err(notifyErr).Msg("failed to initialize alert publisher")
		}
		defer psNotifier.Close()
		notifier = psNotifier
		log.Info().
			Str("topic", cfg.Notify.PubSubTopic).
			Msg("alert publisher initialized")
	} else {
		log.Warn().Msg("alert publishing not configured - system channel alerts stay local")
	}

	alertingService := alerting.NewService(alerting.ServiceConfig{
		Rules:    alerting.NewPostgresRuleRepository(pool),
		Alerts:   alerting.NewPostgresAlertRepository(pool),
		Notifier: notifier,
		Logger:   log,
	})
	log.Info().Msg("alerting service initialized")

	// Initialize task service
	taskService := tasks.NewService(tasks.NewPostgresRepository(pool), log)
	log.Info().Msg("task service initialized")

	// Initialize the provincial sync agent when credentials are configured
	var agent *provincial.Agent
	if cfg.Provincial.Token != "" {
		upstreamMetrics, err := provincial.NewMetrics()
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize upstream metrics")
		}

		client := provincial.NewClient(provincial.ClientConfig{
			BaseURL:         cfg.Provincial.BaseURL,
			APIKey:          cfg.Provincial.APIKey,
			ProvincialToken: cfg.Provincial.Token,
			Timeout:         cfg.Provincial.PushTimeout,
			Audit:           auditService,
			Metrics:         upstreamMetrics,
		})

		agent = provincial.NewAgent(provincial.AgentConfig{
			Upstream:          client,
			Alerter:           alertingService,
			Logger:            log,
			HeartbeatInterval: cfg.Provincial.HeartbeatInterval,
			BufferSize:        cfg.Provincial.BufferSize,
			FlushInterval:     cfg.Provincial.FlushInterval,
			ErrorThreshold:    cfg.Provincial.ErrorThreshold,
			PushTimeout:       cfg.Provincial.PushTimeout,
		})
		log.Info().
			Str("base_url", cfg.Provincial.BaseURL).
			Msg("provincial sync agent initialized")
	} else {
		log.Warn().Msg("provincial platform not configured - sync disabled")
	}

	// Initialize ingestion service
	emissionsService := emissions.NewService(emissions.ServiceConfig{
		Repository: emissions.NewPostgresRepository(pool),
		Registry:   registryService,
		Evaluator:  alertingService,
		Forwarder:  agent,
		Logger:     log,
	})
	log.Info().Msg("ingestion service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		IngestRateLimit:  cfg.RateLimit.RequestsPerMinute,
		Pool:             pool,
		JWTService:       jwtService,
		APIKeyService:    apiKeyService,
		EmissionsService: emissionsService,
		RegistryService:  registryService,
		AlertingService:  alertingService,
		TaskService:      taskService,
		AuditService:     auditService,
		SyncAgent:        agent,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run the sync agent alongside the server
	agentCtx, stopAgent := context.WithCancel(ctx)
	agentDone := make(chan struct{})
	if agent != nil {
		go func() {
			defer close(agentDone)
			agent.Run(agentCtx)
		}()
	} else {
		close(agentDone)
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	// Stop the agent after the server so in-flight submissions can still
	// enqueue; Run flushes the remaining buffer on its way out.
	stopAgent()
	<-agentDone

	log.Info().Msg("server stopped")
}
