// Package server is the composition root: it opens the backends, builds
// the services and handlers, and mounts every route on one chi router.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config
//	  → sqlite.DB (local cache, always; document store when driver=sqlite)
//	  → repository.Store (sqlite | surreal | disabled)
//	  → services (catalog, comments, admin CRUD, uploads, auth, profile)
//	  → handlers → routes
//
// Nothing below this package knows which backend it is talking to.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/repository"
	sqliteRepo "github.com/sakif/portfolio/internal/repository/sqlite"
	"github.com/sakif/portfolio/internal/repository/surreal"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/upload"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and every backend connection. Close releases them.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger

	db      *sqliteRepo.DB
	surreal *surreal.Store // nil unless driver=surreal
	store   repository.Store
	static  service.Static

	catalog *service.CatalogService
}

// Option adjusts a Server before its routes are built.
type Option func(*Server)

// WithStatic replaces the bundled dataset. Tests use it to get a small,
// fixed catalog.
func WithStatic(static service.Static) Option {
	return func(s *Server) { s.static = static }
}

// New opens the backends and wires the routes. It does not start listening.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		static: service.BundledStatic,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store, s.surreal = OpenStore(cfg, db, logger)

	if err := s.setupRoutes(); err != nil {
		s.Close(context.Background())
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// OpenDB opens the SQLite file, creating its directory first.
func OpenDB(path string) (*sqliteRepo.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// OpenStore picks the document store for cfg.Store.Driver. The returned
// surreal.Store is non-nil only for the surreal driver and must be closed.
func OpenStore(cfg config.Config, db *sqliteRepo.DB, logger *slog.Logger) (repository.Store, *surreal.Store) {
	switch cfg.Store.Driver {
	case config.DriverSurreal:
		sc := cfg.Store.Surreal
		st := surreal.New(surreal.Config{
			URL:       sc.URL,
			Namespace: sc.Namespace,
			Database:  sc.Database,
			Username:  sc.Username,
			Password:  sc.Password,
		}, logger)
		if !st.Configured() {
			logger.Warn("surreal store selected but not configured, serving cached and bundled data only")
		}
		return st, st
	case config.DriverNone:
		logger.Info("no document store, serving cached and bundled data only")
		return repository.Disabled{}, nil
	default:
		return db, nil
	}
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz, /sitemap.xml, /uploads/*
//	GET  /api/projects, /api/projects/{id}, /api/certificates, /api/stats,
//	     /api/profile-photo, /api/comments
//	POST /api/comments
//	POST /auth/login, /auth/logout; GET /auth/github/login, /auth/github/callback
//	     /api/admin/*   (RequireAuth)
//
// MIDDLEWARE ORDER: RequestID first so the logger can print it, Recoverer
// last so a panic still gets logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	s.catalog = service.NewCatalogService(s.store, s.db, s.static, service.CatalogOptions{
		KeepStale:   s.config.Cache.KeepStale,
		CareerStart: s.config.CareerStartDate(),
	}, s.logger)
	profile := service.NewProfileService(s.db, s.logger)
	comments := service.NewCommentService(s.store, s.logger)
	projects := service.NewProjectService(s.store, s.catalog, s.logger)
	certificates := service.NewCertificateService(s.store, s.catalog, s.logger)

	disk := upload.NewDiskStore(s.config.Upload.Dir, s.config.PublicURL())
	uploads := upload.NewService(disk, s.config.Upload.MaxBytes, s.logger)

	// === Handlers ===
	catalogHandler := handler.NewCatalogHandler(s.catalog, profile, s.logger)
	commentHandler := handler.NewCommentHandler(comments, s.logger)
	sitemapHandler := handler.NewSitemapHandler(s.catalog, s.config.SiteURL, s.logger)
	adminHandler := handler.NewAdminHandler(projects, certificates, uploads, profile, s.logger)

	// === Admin auth ===
	// Without a JWT secret no session can be issued, so the admin surface is
	// not mounted at all.
	var (
		tokens      *auth.TokenService
		authHandler *handler.AuthHandler
	)
	if s.config.AuthEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.Admin.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		authService := service.NewAuthService(service.AdminCredentials{
			Email:        s.config.Admin.Email,
			PasswordHash: s.config.Admin.PasswordHash,
			GitHubLogin:  s.config.Admin.GitHub.AllowedLogin,
		}, tokens, auth.NewPasswordService(), s.githubProvider(), s.logger)
		authHandler = handler.NewAuthHandler(authService, strings.HasPrefix(s.config.SiteURL, "https://"), s.logger)
	} else {
		s.logger.Warn("admin.jwt_secret not set, admin routes are disabled")
	}

	// === Public routes ===
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Get("/sitemap.xml", sitemapHandler.HandleSitemap)
	if disk.Configured() {
		s.router.Handle("/uploads/*", disk.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/projects", catalogHandler.HandleProjects)
		r.Get("/projects/{id}", catalogHandler.HandleProject)
		r.Get("/certificates", catalogHandler.HandleCertificates)
		r.Get("/stats", catalogHandler.HandleStats)
		r.Get("/profile-photo", catalogHandler.HandleProfilePhoto)
		r.Get("/comments", commentHandler.HandleList)
		r.Post("/comments", commentHandler.HandleSubmit)

		if authHandler == nil {
			return
		}

		// === Admin routes ===
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Post("/projects", adminHandler.HandleCreateProject)
			r.Put("/projects/{id}", adminHandler.HandleUpdateProject)
			r.Delete("/projects/{id}", adminHandler.HandleDeleteProject)

			r.Post("/certificates", adminHandler.HandleCreateCertificate)
			r.Put("/certificates/{id}", adminHandler.HandleUpdateCertificate)
			r.Delete("/certificates/{id}", adminHandler.HandleDeleteCertificate)

			r.Get("/comments", commentHandler.HandleList)
			r.Post("/comments", commentHandler.HandleAdminPost)
			r.Put("/comments/{id}/pin", commentHandler.HandlePin)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Post("/upload", adminHandler.HandleUpload)
			r.Put("/profile-photo", adminHandler.HandleSetProfilePhoto)
			r.Get("/tab", adminHandler.HandleGetTab)
			r.Put("/tab", adminHandler.HandleSetTab)
		})
	})

	if authHandler != nil {
		s.router.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		})
	}

	return nil
}

// githubProvider returns the GitHub login provider, or nil when GitHub
// login is not configured. The callback defaults to the site URL.
func (s *Server) githubProvider() service.GitHubIdentity {
	if !s.config.GitHubEnabled() {
		return nil
	}
	gh := s.config.Admin.GitHub
	callback := gh.CallbackURL
	if callback == "" {
		callback = strings.TrimRight(s.config.SiteURL, "/") + "/auth/github/callback"
	}
	return auth.NewGitHubProvider(gh.ClientID, gh.ClientSecret, callback)
}

// Run serves until ctx is cancelled, then shuts down gracefully: stop
// accepting connections, give in-flight requests shutdownTimeout to
// finish, and close the backends.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // uploads
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Warm the cache so the first visitor does not pay for the store round trip.
	go s.catalog.Refresh(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.SiteURL),
			slog.String("store", s.store.Name()),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close releases the document store connection and the database.
func (s *Server) Close(ctx context.Context) {
	if s.surreal != nil {
		if err := s.surreal.Close(ctx); err != nil {
			s.logger.Warn("closing document store", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
