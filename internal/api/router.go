// Package api provides the HTTP API for Carbon Guardian.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/alerting"
	"github.com/carbonguardian/carbonguardian/internal/api/handler"
	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
	"github.com/carbonguardian/carbonguardian/internal/apikey"
	"github.com/carbonguardian/carbonguardian/internal/audit"
	"github.com/carbonguardian/carbonguardian/internal/auth"
	"github.com/carbonguardian/carbonguardian/internal/emissions"
	"github.com/carbonguardian/carbonguardian/internal/provincial"
	"github.com/carbonguardian/carbonguardian/internal/registry"
	"github.com/carbonguardian/carbonguardian/internal/tasks"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	IngestRateLimit int // requests per minute per API key; 0 uses the default

	Pool *pgxpool.Pool // nil when running on in-memory stores

	JWTService       *auth.JWTService
	APIKeyService    *apikey.Service
	EmissionsService *emissions.Service
	RegistryService  *registry.Service
	AlertingService  *alerting.Service
	TaskService      *tasks.Service
	AuditService     *audit.Service
	SyncAgent        *provincial.Agent
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "carbonguardian-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.SyncAgent)
	dataHandler := handler.NewDataHandler(cfg.EmissionsService)
	registryHandler := handler.NewRegistryHandler(cfg.RegistryService)
	apiKeyHandler := handler.NewAPIKeyHandler(cfg.APIKeyService)
	alertHandler := handler.NewAlertHandler(cfg.AlertingService)
	taskHandler := handler.NewTaskHandler(cfg.TaskService)
	logsHandler := handler.NewLogsHandler(cfg.AuditService)

	// Auth middleware: API keys for the integration surface, JWTs for the
	// administrative one.
	keyAuth := middleware.APIKeyAuth(cfg.APIKeyService)
	requireWrite := middleware.RequirePermission(cfg.APIKeyService, apikey.PermissionWrite)
	requireRead := middleware.RequirePermission(cfg.APIKeyService, apikey.PermissionRead)
	adminAuth := middleware.AdminAuth(cfg.JWTService)

	ingestLimit := middleware.IngestRateLimit
	if cfg.IngestRateLimit > 0 {
		ingestLimit.RequestLimit = cfg.IngestRateLimit
	}
	ingestRateLimit := middleware.RateLimitByAPIKey(ingestLimit)
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)

	auditTrail := middleware.AuditTrail(cfg.AuditService)

	// Liveness probe polled by the provincial platform. Lives outside /v1:
	// the path is part of the upstream's contract, not ours to version.
	r.Get("/provincial/heartbeat", opsHandler.Heartbeat)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(adminAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Data ingestion (API key authenticated, audited, rate limited per key)
		r.Route("/data", func(r chi.Router) {
			r.Use(keyAuth)
			r.Use(ingestRateLimit)
			r.Use(auditTrail)

			r.With(requireWrite).Post("/", dataHandler.Submit)
			r.With(requireWrite).Post("/batch", dataHandler.SubmitBatch)
			r.With(requireRead).Get("/", dataHandler.ListRecords)
			r.With(requireRead).Get("/{recordId}", dataHandler.GetRecord)
		})

		// Registry read endpoints (API key authenticated)
		r.Group(func(r chi.Router) {
			r.Use(keyAuth)
			r.Use(ingestRateLimit)

			r.With(requireRead).Get("/buildings", registryHandler.ListBuildings)
			r.With(requireRead).Get("/buildings/{code}", registryHandler.GetBuilding)
			r.With(requireRead).Get("/parameters", registryHandler.ListParameters)
		})

		// Sync agent state (admin)
		if cfg.SyncAgent != nil {
			syncHandler := handler.NewSyncHandler(cfg.SyncAgent)
			r.Route("/sync", func(r chi.Router) {
				r.Use(adminAuth)
				r.Use(adminRateLimit)

				r.Get("/status", syncHandler.Status)
				r.With(middleware.RequireOperator).Post("/flush", syncHandler.Flush)
			})
		}

		// Threshold rules, alerts, tasks and logs (admin)
		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(adminRateLimit)

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", alertHandler.ListRules)
				r.With(middleware.RequireOperator).Post("/", alertHandler.CreateRule)
				r.With(middleware.RequireOperator).Put("/{ruleId}/active", alertHandler.SetRuleActive)
				r.With(middleware.RequireOperator).Delete("/{ruleId}", alertHandler.DeleteRule)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.ListAlerts)
				r.Get("/{alertId}", alertHandler.GetAlert)
				r.With(middleware.RequireOperator).Put("/{alertId}/status", alertHandler.TransitionAlert)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.With(middleware.RequireOperator).Post("/", taskHandler.Create)
				r.Route("/{taskId}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.With(middleware.RequireOperator).Put("/status", taskHandler.Transition)
					r.Get("/feedback", taskHandler.ListFeedback)
					r.With(middleware.RequireOperator).Post("/feedback", taskHandler.AddFeedback)
				})
			})

			// Integration log browsing (the log itself is append-only)
			r.Get("/logs", logsHandler.Query)

			// Admin endpoints - key issuance and registry management
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireOperator)

				r.Route("/apikeys", func(r chi.Router) {
					r.Get("/", apiKeyHandler.List)
					r.Post("/", apiKeyHandler.Create)
					r.Get("/{keyId}", apiKeyHandler.Get)
					r.Delete("/{keyId}", apiKeyHandler.Revoke)
				})

				r.Route("/buildings", func(r chi.Router) {
					r.Post("/", registryHandler.CreateBuilding)
					r.Put("/{buildingId}/status", registryHandler.UpdateBuildingStatus)
				})
			})
		})
	})

	return r
}
