// Package web provides the HTTP API for the entitlement service.
// The platform backend is the only intended client; it authenticates
// with a shared service key.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/quotagate/quotagate/adapters/metrics"
	"github.com/quotagate/quotagate/app"
	"github.com/quotagate/quotagate/ports"
)

// Handler provides the HTTP API endpoints.
type Handler struct {
	engine    *app.Engine
	accounts  *app.AccountService
	usageLog  ports.UsageLog // optional
	hasher    ports.Hasher
	idGen     ports.IDGenerator
	logger    zerolog.Logger
	version   string
	startTime time.Time

	authEnabled    bool
	authHeader     string
	serviceKeyHash []byte
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Engine   *app.Engine
	Accounts *app.AccountService
	UsageLog ports.UsageLog // optional; nil disables the events endpoint
	Hasher   ports.Hasher
	IDGen    ports.IDGenerator
	Logger   zerolog.Logger
	Version  string

	AuthEnabled    bool
	AuthHeader     string // default: X-Service-Key
	ServiceKeyHash []byte // bcrypt hash of the shared service key
}

// NewHandler creates a new HTTP API handler.
func NewHandler(deps Deps) *Handler {
	header := deps.AuthHeader
	if header == "" {
		header = "X-Service-Key"
	}

	return &Handler{
		engine:         deps.Engine,
		accounts:       deps.Accounts,
		usageLog:       deps.UsageLog,
		hasher:         deps.Hasher,
		idGen:          deps.IDGen,
		logger:         deps.Logger,
		version:        deps.Version,
		startTime:      time.Now(),
		authEnabled:    deps.AuthEnabled,
		authHeader:     header,
		serviceKeyHash: deps.ServiceKeyHash,
	}
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	Metrics     *metrics.Collector
	MetricsPath string // default: /metrics
	EnableDocs  bool
}

// NewRouter creates the main HTTP router.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	// Ops endpoints (no auth required)
	r.Get("/healthz", h.Health)
	r.Get("/version", h.Version)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	if cfg.EnableDocs {
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/doc.json"),
		))
	}

	// Service API
	r.Route("/v1", func(r chi.Router) {
		r.Use(h.serviceKeyAuth)

		r.Get("/tiers", h.ListTiers)

		r.Post("/accounts", h.CreateAccount)
		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/", h.GetAccount)
			r.Delete("/", h.DeleteAccount)
			r.Put("/tier", h.SetTier)

			// Decision/record API
			r.Post("/check", h.Check)
			r.Post("/usage", h.RecordUsage)
			r.Post("/consume", h.Consume)

			// Read views
			r.Get("/usage", h.GetUsage)
			r.Get("/recommendation", h.GetRecommendation)
			r.Get("/events", h.GetEvents)

			// Billable endpoints guarded by the gate middleware.
			r.With(h.RequireQuota("upload")).Post("/uploads", h.AcceptUpload)
			r.With(h.RequireQuota("audio"), h.AttachUsageStats).Post("/transcriptions", h.AcceptTranscription)
			r.With(h.RequireQuota("contract")).Post("/contracts", h.AcceptContract)
			r.With(h.RequireExtension).Get("/stream-token", h.StreamToken)
		})
	})

	return r
}

// Health handles liveness checks.
//
//	@Summary	Liveness check
//	@Tags		Ops
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Version reports the running build.
//
//	@Summary	Service version
//	@Tags		Ops
//	@Produce	json
//	@Success	200	{object}	versionResponse
//	@Router		/version [get]
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Service: "quotagate",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

type healthResponse struct {
	Status string `json:"status" example:"ok"`
}

type versionResponse struct {
	Service string `json:"service" example:"quotagate"`
	Version string `json:"version" example:"1.0.0"`
	Uptime  string `json:"uptime" example:"2h30m0s"`
}
