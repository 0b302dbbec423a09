// Package api provides the HTTP API server and handlers for the Simmer application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
	"github.com/simmerapp/simmer-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService       *service.AuthService
	cookbookService   *service.CookbookService
	recipeService     *service.RecipeService
	shareService      *service.ShareService
	searchService     *service.SearchService
	extractionService *service.ExtractionService
	extractLimiter    *ratelimit.KeyedRateLimiter
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// extractLimiter throttles the AI extraction endpoints per user; pass nil to
// disable throttling (tests).
func NewServer(authService *service.AuthService, cookbookService *service.CookbookService, recipeService *service.RecipeService, shareService *service.ShareService, searchService *service.SearchService, extractionService *service.ExtractionService, extractLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		authService:       authService,
		cookbookService:   cookbookService,
		recipeService:     recipeService,
		shareService:      shareService,
		searchService:     searchService,
		extractionService: extractionService,
		extractLimiter:    extractLimiter,
		router:            chi.NewRouter(),
		logger:            logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Current user.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Cookbooks (require auth).
		r.Route("/cookbooks", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCookbook)
			r.Get("/", s.handleListCookbooks)
			r.Get("/{id}", s.handleGetCookbook)
			r.Patch("/{id}", s.handleUpdateCookbook)
			r.Delete("/{id}", s.handleDeleteCookbook)
			r.Post("/{id}/shares", s.handleIssueShare)
			r.Get("/{id}/shares", s.handleListShares)
			r.Post("/{id}/recipes", s.handleCreateRecipe)
			r.Get("/{id}/recipes", s.handleListRecipes)
		})

		// Recipes (require auth; image serving goes through the same
		// visibility checks).
		r.Route("/recipes", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/{id}", s.handleGetRecipe)
			r.Patch("/{id}", s.handleUpdateRecipe)
			r.Delete("/{id}", s.handleDeleteRecipe)
			r.Post("/{id}/image", s.handleUploadRecipeImage)
			r.Get("/{id}/image", s.handleGetRecipeImage)
		})

		// AI extraction (require auth, rate limited per user).
		r.Route("/extract", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.rateLimitByUser)
			r.Post("/url", s.handleExtractFromURL)
			r.Post("/image", s.handleExtractFromImage)
		})

		// Search (require auth).
		r.Route("/search", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/recipes", s.handleSearchRecipes)
		})

		// Share links. Resolution is public, redemption needs an
		// account to copy into.
		r.Route("/shares", func(r chi.Router) {
			r.Get("/{token}", s.handleResolveShare)
			r.With(s.requireAuth).Post("/{token}/redeem", s.handleRedeemShare)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
