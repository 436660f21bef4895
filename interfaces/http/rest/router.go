package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"promptbuilder/application/commands/bus"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/application/services"
	"promptbuilder/infrastructure/config"
	"promptbuilder/infrastructure/di"
	"promptbuilder/interfaces/http/rest/handlers"
	"promptbuilder/interfaces/http/rest/middleware"
	"promptbuilder/pkg/auth"
	"promptbuilder/pkg/common"
	pkgerrors "promptbuilder/pkg/errors"
	"promptbuilder/pkg/observability"
)

// ReadinessChecker reports the state of the backing stores
type ReadinessChecker interface {
	Ready() bool
	ReadinessChecks() map[string]string
}

// Dependencies are the services the router dispatches to
type Dependencies struct {
	Config     *config.Config
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Documents  *services.DocumentService
	Validator  *auth.JWTValidator
	Metrics    *observability.Metrics
	Readiness  ReadinessChecker
	Logger     *zap.Logger
}

// DependenciesFromContainer picks the router's dependencies out of the
// wired container
func DependenciesFromContainer(c *di.Container) Dependencies {
	return Dependencies{
		Config:     c.Config,
		CommandBus: c.CommandBus,
		QueryBus:   c.QueryBus,
		Documents:  c.Documents,
		Validator:  c.JWTValidator,
		Metrics:    c.Metrics,
		Readiness:  c,
		Logger:     c.Logger,
	}
}

// Router creates and configures the HTTP router
type Router struct {
	deps   Dependencies
	errors *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		deps:   deps,
		errors: pkgerrors.NewErrorHandler(deps.Logger, deps.Config.IsDevelopment()),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	cfg := rt.deps.Config
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.deps.Logger))
	if cfg.EnableMetrics && rt.deps.Metrics != nil {
		router.Use(middleware.Metrics(rt.deps.Metrics))
	}
	router.Use(versionMiddleware)

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if cfg.EnableMetrics && rt.deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.deps.Metrics.Handler())
	}

	// API v1 routes (legacy - redirects to v2)
	router.Route("/api/v1", func(r chi.Router) {
		r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
			target := strings.Replace(req.URL.Path, "/api/v1", "/api/v2", 1)
			if req.URL.RawQuery != "" {
				target += "?" + req.URL.RawQuery
			}
			http.Redirect(w, req, target, http.StatusPermanentRedirect)
		})
	})

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate(middleware.AuthConfig{
			Validator:     rt.deps.Validator,
			IPRateLimit:   cfg.IPRateLimit,
			UserRateLimit: cfg.UserRateLimit,
			TrustGateway:  cfg.IsLambda,
			Logger:        rt.deps.Logger,
		}))

		promptHandler := handlers.NewPromptHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errors, rt.deps.Logger)
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", promptHandler.ListPrompts)
			r.Post("/", promptHandler.CreatePrompt)
			r.Get("/{promptID}", promptHandler.GetPrompt)
			r.Put("/{promptID}", promptHandler.UpdatePrompt)
			r.Delete("/{promptID}", promptHandler.DeletePrompt)
		})
		r.Get("/tags", promptHandler.ListTags)

		draftHandler := handlers.NewDraftHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.deps.Documents, rt.errors, rt.deps.Logger)
		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", draftHandler.ListDrafts)
			r.Get("/{draftID}", draftHandler.GetDraft)
			r.Put("/{draftID}", draftHandler.SaveDraft)
			r.Delete("/{draftID}", draftHandler.DeleteDraft)
		})

		documentHandler := handlers.NewDocumentHandler(rt.deps.Documents, rt.deps.CommandBus, rt.deps.QueryBus, rt.errors, rt.deps.Logger)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/normalize", documentHandler.Normalize)
			r.Post("/move", documentHandler.Move)
			r.Post("/insert", documentHandler.Insert)
			r.Post("/remove", documentHandler.Remove)
			r.Post("/backspace", documentHandler.Backspace)
			r.Post("/resolve", documentHandler.Resolve)
			r.Post("/export", documentHandler.Export)
			r.Post("/save-as-prompt", documentHandler.SaveAsPrompt)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports 503 while a guarded store is failing fast
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.deps.Readiness == nil {
		common.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
		return
	}

	status, code := "ready", http.StatusOK
	if !rt.deps.Readiness.Ready() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	common.RespondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": rt.deps.Readiness.ReadinessChecks(),
	})
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.HasPrefix(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "false")

		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		}

		next.ServeHTTP(w, r)
	})
}
