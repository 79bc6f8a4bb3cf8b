// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the "composition root": every dependency — store, password
// hasher, session service, OAuth provider, services, handlers — is
// wired together here, in one place, and connected to routes. main.go
// stays minimal (read config, call New, call Start).
//
// REQUEST PIPELINE:
//
//	request → chi built-ins → request logging → session restore
//	        → (per-route guard) → handler → service → repository
//
// The session restore runs on every request; the guards only on the
// routes that need them.
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

	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/handler"
	"github.com/sakif/blogit/internal/middleware"
	sqliteRepo "github.com/sakif/blogit/internal/repository/sqlite"
	"github.com/sakif/blogit/internal/service"
)

// Config holds server configuration, loaded from the environment in
// main and passed down as a single value.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	// SessionSecret signs session tokens; SessionTTL bounds how long a
	// login lasts.
	SessionSecret string
	SessionTTL    time.Duration

	// Google OAuth credentials. When empty, the /auth/google routes are
	// not registered and the login page hides the Google button.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// StrictOwnership restricts edit/delete to the post's author.
	// Off by default: historically any logged-in user could edit any
	// post, and flipping that silently would break existing workflows.
	StrictOwnership bool
}

// Server owns the router and the resources that need closing on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the dependency
// graph, and registers all routes.
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

// setupRoutes wires the dependency graph and the route table.
//
// ROUTE TABLE:
//
//	GET  /                        home (public)
//	GET  /about, /contact         static pages (public)
//	GET  /blogs/{title}           view post (public)
//	POST /blogs/{title}           delete via _method override (auth)
//	GET  /author/{userID}         posts by author (public)
//	GET|POST /compose             new post (auth)
//	GET|POST /edit/{title}        edit post (auth)
//	GET  /dashboard               own posts (auth)
//	GET|POST /register, /login    account forms (anonymous only)
//	GET  /logout                  clear session
//	GET  /auth/google             start OAuth (anonymous only)
//	GET  /auth/google/dashboard   OAuth callback
//	GET  /static/*                assets
func (s *Server) setupRoutes() error {
	// === Shared services ===
	sessions, err := auth.NewSessionService(s.config.SessionSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.config.GoogleClientID != "" && s.config.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db.Users, passwords, s.logger)
	postService := service.NewPostService(s.db.Posts, s.config.StrictOwnership, s.logger)

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	pageHandler := handler.NewPageHandler(postService, render, s.logger)
	postHandler := handler.NewPostHandler(postService, render, s.logger)
	authHandler := handler.NewAuthHandler(authService, sessions, google, render, s.logger)

	// === Global middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	// Session restore runs on every request so templates can show the
	// right nav; it never blocks anything.
	s.router.Use(auth.RestoreSession(sessions))

	// === Static files ===
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Public routes ===
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get("/about", pageHandler.HandleAbout)
	s.router.Get("/contact", pageHandler.HandleContact)
	s.router.Get("/blogs/{title}", postHandler.HandleBlog)
	s.router.Get("/author/{userID}", postHandler.HandleAuthor)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === Anonymous-only routes (logged-in users go to /dashboard) ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated)
		r.Get("/register", authHandler.HandleRegisterPage)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/login", authHandler.HandleLoginPage)
		r.Post("/login", authHandler.HandleLogin)
	})

	// === Authenticated routes (anonymous users go to /login) ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/compose", postHandler.HandleComposePage)
		r.Post("/compose", postHandler.HandleCompose)
		r.Get("/dashboard", postHandler.HandleDashboard)
		r.Get("/edit/{title}", postHandler.HandleEditPage)
		r.Post("/edit/{title}", postHandler.HandleEdit)
		r.Post("/blogs/{title}", postHandler.HandleDelete)
	})

	// === Google OAuth (only when configured) ===
	if google != nil {
		s.router.Group(func(r chi.Router) {
			r.Use(auth.RedirectIfAuthenticated)
			r.Get("/auth/google", authHandler.HandleGoogleLogin)
		})
		s.router.Get("/auth/google/dashboard", authHandler.HandleGoogleCallback)
	} else {
		s.logger.Warn("Google OAuth not configured — /auth/google routes disabled")
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the database (flushes the WAL, releases the file lock).
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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
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
