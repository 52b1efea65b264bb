// Package server is the composition root: it builds every service and
// handler from the configuration and an already-open store, mounts the
// routes and runs the HTTP server until a shutdown signal arrives.
//
// DEPENDENCY FLOW:
//
//	main → config.Load, database.Open → server.New(cfg, logger, store)
//	server.New → TokenService, PasswordService, (GitHubProvider)
//	           → ThoughtService, AuthService → ThoughtHandler, AuthHandler
//
// Handlers never see the store, services never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/brain-bank/internal/auth"
	"github.com/sakif/brain-bank/internal/config"
	"github.com/sakif/brain-bank/internal/handler"
	"github.com/sakif/brain-bank/internal/middleware"
	"github.com/sakif/brain-bank/internal/repository"
	"github.com/sakif/brain-bank/internal/service"
)

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store

	tokens    *auth.TokenService
	passwords *auth.PasswordService
	github    *auth.GitHubProvider
}

// Option tweaks a Server before its routes are mounted.
type Option func(*Server)

// WithPasswordCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(s *Server) { s.passwords = auth.NewPasswordService(cost) }
}

// New wires the application around store. It does not start listening.
func New(cfg *config.Config, logger *slog.Logger, store repository.Store, opts ...Option) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		store:     store,
		tokens:    tokens,
		passwords: auth.NewPasswordService(auth.DefaultCost),
	}
	if cfg.GitHubEnabled() {
		s.github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// routes mounts every endpoint.
//
// ROUTE TABLE:
//
//	GET    /                              banner
//	GET    /healthz                       store ping
//	POST   /api/auth/register             create account, set cookie
//	POST   /api/auth/login                sign in, set cookie
//	POST   /api/auth/logout               clear cookie
//	GET    /api/auth/me                   current user            [guarded]
//	GET    /api/auth/github/login         GitHub redirect         [if configured]
//	GET    /api/auth/github/callback      GitHub return           [if configured]
//	GET    /api/thoughts                  list + filters          [guarded]
//	POST   /api/thoughts                  create                  [guarded]
//	GET    /api/thoughts/favorites/all    favorites               [guarded]
//	GET    /api/thoughts/stats/summary    statistics              [guarded]
//	GET    /api/thoughts/{id}             get                     [guarded]
//	PUT    /api/thoughts/{id}             update                  [guarded]
//	DELETE /api/thoughts/{id}             delete                  [guarded]
//	PATCH  /api/thoughts/{id}/favorite    toggle favorite         [guarded]
//
// chi matches static segments before {id}, so "favorites" and "stats" are
// never taken for an id.
//
// MIDDLEWARE ORDER:
// RequestID → RealIP → Logger → Recoverer → CORS. Recoverer sits inside
// Logger so a panic still produces a logged 500.
func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))

	s.router.Get("/", handler.HandleRoot)
	s.router.Get("/healthz", handler.HandleHealth(s.store))

	requireAuth := auth.RequireAuth(s.tokens, s.store, s.config.CookieName, s.logger)

	authService := service.NewAuthService(s.store, s.tokens, s.passwords, s.logger)
	authHandler := handler.NewAuthHandler(
		authService,
		s.github,
		handler.SessionCookie{Name: s.config.CookieName, Secure: s.config.CookieSecure, TTL: s.config.TokenTTL},
		s.config.FrontendURL,
		s.logger,
	)

	thoughtService := service.NewThoughtService(s.store, s.logger)
	thoughtHandler := handler.NewThoughtHandler(thoughtService, s.logger)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		if s.github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api/thoughts", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", thoughtHandler.HandleList)
		r.Post("/", thoughtHandler.HandleCreate)
		r.Get("/favorites/all", thoughtHandler.HandleFavorites)
		r.Get("/stats/summary", thoughtHandler.HandleStats)
		r.Get("/{id}", thoughtHandler.HandleGetByID)
		r.Put("/{id}", thoughtHandler.HandleUpdate)
		r.Delete("/{id}", thoughtHandler.HandleDelete)
		r.Patch("/{id}/favorite", thoughtHandler.HandleToggleFavorite)
	})
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("driver", s.config.DBDriver),
			slog.Bool("github", s.github != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
