package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"retroboard-backend/application/commands/bus"
	querybus "retroboard-backend/application/queries/bus"
	"retroboard-backend/interfaces/http/rest/handlers"
	"retroboard-backend/interfaces/http/rest/middleware"
	v1 "retroboard-backend/interfaces/http/rest/v1"
	"retroboard-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	limiter    *auth.DistributedRateLimiter
	logger     *zap.Logger
}

// NewRouter creates a new router instance. The limiter may be nil, in
// which case only the in-process limiters apply.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	limiter *auth.DistributedRateLimiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		limiter:    limiter,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.retroboard.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes (legacy - redirects to v2)
	router.Mount("/api/v1", v1.NewRouter())

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate())
		if rt.limiter != nil {
			r.Use(middleware.Throttle(rt.limiter, rt.logger))
		}

		cardHandler := handlers.NewCardHandler(rt.commandBus, rt.queryBus, rt.logger)
		reactionHandler := handlers.NewReactionHandler(rt.commandBus, rt.logger)
		boardHandler := handlers.NewBoardHandler(rt.commandBus, rt.queryBus, rt.logger)

		// Card endpoints
		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Post("/bulk-delete", cardHandler.BulkDeleteCards)
			r.Get("/{cardID}", cardHandler.GetCard)
			r.Put("/{cardID}", cardHandler.UpdateCard)
			r.Delete("/{cardID}", cardHandler.DeleteCard)
			r.Post("/{cardID}/move", cardHandler.MoveCard)
			r.Get("/{cardID}/link-suggestions", cardHandler.SuggestLinks)

			// Relationship endpoints
			r.Put("/{cardID}/parent", cardHandler.SetParent)
			r.Delete("/{cardID}/parent", cardHandler.ClearParent)
			r.Post("/{cardID}/links", cardHandler.AddLink)
			r.Delete("/{cardID}/links/{feedbackID}", cardHandler.RemoveLink)

			// Reaction endpoints
			r.Put("/{cardID}/reactions", reactionHandler.UpsertReaction)
			r.Delete("/{cardID}/reactions", reactionHandler.RemoveReaction)
		})

		// Board endpoints
		r.Route("/boards/{boardID}", func(r chi.Router) {
			r.Get("/cards", boardHandler.ListCards)
			r.Get("/quota", boardHandler.GetQuota)

			// Teardown requires the admin capability on the token
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Post("/clear", boardHandler.ClearBoard)
				r.Post("/reset", boardHandler.ResetBoard)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.Contains(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "false")

		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
			w.Header().Set("X-API-Deprecation-Date", "2025-06-01")
			w.Header().Set("X-API-Sunset-Date", "2025-12-01")
		}

		next.ServeHTTP(w, r)
	})
}
