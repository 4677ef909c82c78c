package rest

import (
	"net/http"

	"userdir-backend/application/services"
	"userdir-backend/interfaces/http/rest/handlers"
	"userdir-backend/interfaces/http/rest/middleware"
	"userdir-backend/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	directory  *services.DirectoryService
	generator  *auth.Generator
	validator  *auth.Validator
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	directory *services.DirectoryService,
	generator *auth.Generator,
	validator *auth.Validator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		directory:  directory,
		generator:  generator,
		validator:  validator,
		enableCORS: enableCORS,
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

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Public auth endpoint
	authHandler := handlers.NewAuthHandler(rt.directory, rt.generator, rt.logger)
	router.Post("/auth/login", authHandler.Login)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		r.Route("/users", func(r chi.Router) {
			userHandler := handlers.NewUserHandler(rt.directory, rt.logger)
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.FindUser)
			r.Get("/{uid}", userHandler.GetUser)
			r.Patch("/{uid}", userHandler.UpdateUser)
			r.Put("/{uid}/password", userHandler.UpdatePassword)
			r.With(middleware.RequirePolicy("manage_users")).Delete("/{uid}", userHandler.DeleteUser)
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

// readinessCheck reports whether the store connection has been confirmed
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !rt.directory.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
