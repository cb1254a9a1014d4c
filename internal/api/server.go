// Package api is the HTTP transport of mealmate: a chi router exposing the
// planner, the shopping list and the movie companion per session.
package api

import (
	"context"
	"net/http"
	"time"

	"mealmate/internal/companion"
	"mealmate/internal/metrics"
	"mealmate/internal/planner"
	"mealmate/internal/session"
	"mealmate/internal/shopping"
	"mealmate/internal/tmdb"
	"mealmate/internal/trivia"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Planner generates weekly plans.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Result, error)
	Validate(req planner.Request) error
}

// ShoppingCompiler builds and rescales shopping lists for a plan.
type ShoppingCompiler interface {
	Basis(ctx context.Context, plan planner.WeekPlan) shopping.Basis
	Rescale(ctx context.Context, basis shopping.Basis, desiredServings int) (*shopping.Result, error)
}

// Companion is the movie companion.
type Companion interface {
	Search(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	Details(ctx context.Context, mediaType string, id int) (*tmdb.Media, error)
	Recommendations(ctx context.Context, mediaType string, id int) ([]tmdb.Recommendation, error)
	Pairings(ctx context.Context, media *tmdb.Media, foodType string) (companion.Pairing, error)
	AllPairings(ctx context.Context, media *tmdb.Media) ([]companion.Pairing, error)
	Chat(ctx context.Context, media *tmdb.Media, question string) (companion.Reply, error)
	Grocery(ctx context.Context, recipeIDs []int, desired int) (*companion.Grocery, error)
}

// TriviaMaker starts trivia games.
type TriviaMaker interface {
	NewGame(ctx context.Context, title, overview string) *trivia.Game
}

// Services are the collaborators behind the routes.
type Services struct {
	Planner   Planner
	Shopping  ShoppingCompiler
	Companion Companion
	Trivia    TriviaMaker
	Sessions  session.Store
	Tokens    *session.Tokens
	Collector *metrics.Collector

	// Health is probed by GET /health when set.
	Health func(ctx context.Context) error
}

// Config configures the HTTP server.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	config   Config
	services Services
	logger   *zap.Logger
	router   chi.Router
	server   *http.Server
}

// NewServer creates the server and its routes.
func NewServer(cfg Config, services Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		config:   cfg,
		services: services,
		logger:   logger.Named("api"),
		router:   chi.NewRouter(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.config.RequestTimeout))

	r.Get("/health", s.handleHealth)
	if s.services.Collector != nil {
		r.Method(http.MethodGet, "/metrics", s.services.Collector.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionAuth)

			r.Post("/plans", s.handleCreatePlan)
			r.Get("/plans/current", s.handleCurrentPlan)
			r.Get("/plans/current.csv", s.handleCurrentPlanCSV)

			r.Post("/shopping-list", s.handleShoppingList)
			r.Get("/shopping-list.txt", s.handleShoppingListText)

			r.Post("/calories", s.handleCalories)

			r.Route("/media", func(r chi.Router) {
				r.Get("/search", s.handleMediaSearch)
				r.Route("/{type}/{id}", func(r chi.Router) {
					r.Get("/", s.handleMediaDetails)
					r.Get("/recommendations", s.handleRecommendations)
					r.Get("/pairings", s.handlePairings)
					r.Get("/dishes", s.handleDishes)
					r.Post("/chat", s.handleChat)
				})
			})

			r.Post("/trivia", s.handleNewTrivia)
			r.Get("/trivia/question", s.handleTriviaQuestion)
			r.Post("/trivia/answer", s.handleTriviaAnswer)

			r.Post("/grocery", s.handleGrocery)
		})
	})
}

// Mount attaches an extra handler, e.g. the Telegram webhook.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.config.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.services.Health != nil {
		if err := s.services.Health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, code, map[string]any{
		"status": status,
		"time":   time.Now().UTC(),
	})
}
