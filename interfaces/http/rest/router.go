package rest

import (
	"net/http"

	"axon-backend/application/commands/bus"
	querybus "axon-backend/application/queries/bus"
	"axon-backend/infrastructure/config"
	"axon-backend/interfaces/http/rest/handlers"
	"axon-backend/interfaces/http/rest/middleware"
	"axon-backend/pkg/auth"
	pkgerrors "axon-backend/pkg/errors"
	pkgobs "axon-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// MetricsEndpoint records HTTP metrics and serves them for scraping
type MetricsEndpoint interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// Options carries the optional collaborators of the router. Nil fields
// switch the matching feature off.
type Options struct {
	Validator   *auth.JWTValidator
	VoteLimiter auth.RateLimiter
	Metrics     MetricsEndpoint
	Tracer      *pkgobs.Tracer
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        *config.Config
	errors     *pkgerrors.ErrorHandler
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	errs *pkgerrors.ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		errors:     errs,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Tracing(rt.opts.Tracer))
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.Metrics != nil {
		router.Use(middleware.Metrics(rt.opts.Metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.UserIDHeader},
			ExposedHeaders:   []string{"X-Request-ID", "Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	wheels := handlers.NewWheelHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
	requireUser := middleware.RequireUser(rt.errors)

	router.Route("/api/wheels", func(r chi.Router) {
		if rt.opts.Validator != nil {
			r.Use(middleware.Authenticate(rt.opts.Validator, rt.errors, rt.logger))
		} else {
			r.Use(middleware.HeaderIdentity())
		}

		// Public wheels are readable anonymously
		r.Get("/{wheelID}", wheels.GetWheel)
		r.Get("/{wheelID}/report", wheels.GenerateReport)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", wheels.ListWheels)
			r.Post("/", wheels.CreateWheel)
			r.Put("/{wheelID}", wheels.SaveWheel)
			r.Patch("/{wheelID}", wheels.SetVisibility)
			r.Delete("/{wheelID}", wheels.DeleteWheel)

			r.With(rt.voteLimit()).Post("/{wheelID}/nodes/{nodeID}/vote", wheels.CastVote)
		})
	})

	return router
}

func (rt *Router) voteLimit() func(http.Handler) http.Handler {
	if rt.opts.VoteLimiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(rt.opts.VoteLimiter, rt.errors, rt.logger)
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
