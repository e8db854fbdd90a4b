package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/ai"
	"github.com/hongminglow/skillpath-be/internal/auth"
	"github.com/hongminglow/skillpath-be/internal/config"
	"github.com/hongminglow/skillpath-be/internal/http/handlers"
	"github.com/hongminglow/skillpath-be/internal/middleware"
	"github.com/hongminglow/skillpath-be/internal/service"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	Store storage.Store
	// AI is nil when no model is configured; AI routes then answer 503.
	AI      ai.Client
	Limiter middleware.Limiter
	States  auth.StateStore
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps, log *zap.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, deps, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Roadmap generation can take tens of seconds.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Routes builds the full handler tree.
func Routes(cfg config.Config, deps Deps, log *zap.Logger) http.Handler {
	var (
		gen       ai.RoadmapGenerator
		assistant ai.Assistant
	)
	if deps.AI != nil {
		gen, assistant = deps.AI, deps.AI
	}
	if deps.States == nil {
		deps.States = auth.NewMemoryStateStore()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	google := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, deps.States)

	accounts := service.NewAccounts(deps.Store, log)
	roadmaps := service.NewRoadmaps(deps.Store, deps.Store, gen, log)
	community := service.NewCommunity(deps.Store, deps.Store, log)
	assistantSvc := service.NewAssistant(assistant, deps.Store, log)

	guard := handlers.Guard(middleware.RequireAuth(tokens))
	limited := guard
	if deps.Limiter != nil {
		rl := middleware.RateLimit(deps.Limiter, log)
		limited = func(h http.Handler) http.Handler {
			return middleware.Chain(h, middleware.RequireAuth(tokens), rl)
		}
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.AI != nil).Register(mux)
	handlers.NewAuthHandler(accounts, tokens, google, log).Register(mux)
	handlers.NewAccountHandler(accounts, log).Register(mux, guard)
	handlers.NewRoadmapHandler(roadmaps, log).Register(mux, guard, limited)
	handlers.NewCommunityHandler(community, log).Register(mux, guard)
	handlers.NewAssistantHandler(assistantSvc, log).Register(mux, limited)

	return middleware.Chain(mux, middleware.CORS(cfg.CORSOrigins), middleware.Logging(log))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
