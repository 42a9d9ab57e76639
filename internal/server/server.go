// Package server wires the HTTP router, middleware, and all route
// definitions. It is the composition root: every repository, service,
// and handler is constructed here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/handler"
	"github.com/sakif/conduit/internal/middleware"
	sqliteRepo "github.com/sakif/conduit/internal/repository/sqlite"
	"github.com/sakif/conduit/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and password
// services, domain services, handlers, and routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Router exposes the configured router, mainly for tests that drive the
// server through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this itself; Close
// exists for callers that never reach Start, such as tests.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// s.db implements every repository interface, so it is passed wherever
	// a repository is needed. Services only see the interfaces.
	userService := service.NewUserService(s.db, passwords, s.logger)
	profileService := service.NewProfileService(s.db, s.db, s.logger)
	articleService := service.NewArticleService(s.db, s.db, s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.db, s.logger)

	userHandler := handler.NewUserHandler(userService, tokens, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	articleHandler := handler.NewArticleHandler(articleService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/users/login", userHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user", userHandler.HandleGetCurrent)
			r.Put("/user", userHandler.HandleUpdate)
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/profiles/{username}", profileHandler.HandleGet)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/profiles/{username}/follow", profileHandler.HandleFollow)
			r.Delete("/profiles/{username}/follow", profileHandler.HandleUnfollow)
		})

		// The feed route is registered before {slug} routes so chi does not
		// treat "feed" as a slug.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/articles/feed", articleHandler.HandleFeed)
			r.Post("/articles", articleHandler.HandleCreate)
			r.Put("/articles/{slug}", articleHandler.HandleUpdate)
			r.Delete("/articles/{slug}", articleHandler.HandleDelete)
			r.Post("/articles/{slug}/favorite", articleHandler.HandleFavorite)
			r.Delete("/articles/{slug}/favorite", articleHandler.HandleUnfavorite)
			r.Post("/articles/{slug}/comments", commentHandler.HandleCreate)
		})
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/articles", articleHandler.HandleList)
			r.Get("/articles/{slug}/comments", commentHandler.HandleList)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
