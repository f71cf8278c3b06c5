package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/randalmurphal/storyflow/auth"
	"github.com/randalmurphal/storyflow/metrics"
	"github.com/randalmurphal/storyflow/thumbnail"
)

// DefaultMaxUploadBytes caps multipart uploads.
const DefaultMaxUploadBytes = 20 << 20

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Verifier decides whether two images show the same person.
type Verifier interface {
	Verify(ctx context.Context, reference, candidate []byte) (bool, error)
}

// Config holds the media server configuration.
type Config struct {
	Addr            string
	JWT             auth.JWTConfig // authentication is off without a secret
	CORSOrigins     []string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server serves face verification and thumbnail events.
type Server struct {
	router     *chi.Mux
	cfg        Config
	verifier   Verifier
	thumbnails thumbnail.Processor
	logger     *slog.Logger
	httpSrv    *http.Server
}

// New creates a server. Either collaborator may be nil, in which case its
// routes answer 503.
func New(cfg Config, verifier Verifier, thumbnails thumbnail.Processor) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		router:     chi.NewRouter(),
		cfg:        cfg,
		verifier:   verifier,
		thumbnails: thumbnails,
		logger:     cfg.Logger,
	}
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		if len(s.cfg.JWT.Secret) > 0 {
			r.Use(auth.Middleware(s.cfg.JWT))
		}
		r.With(auth.RequireScope(auth.ScopeFacesVerify)).Post("/faces/verify", s.handleVerifyFaces)
		r.With(auth.RequireScope(auth.ScopeThumbnailsProcess)).Post("/thumbnails/events", s.handleThumbnailEvent)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	s.logger.Info("media server listening",
		"address", s.cfg.Addr,
		"auth", len(s.cfg.JWT.Secret) > 0,
	)

	select {
	case <-ctx.Done():
		s.logger.Info("media server stopping", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-serveErrCh:
		return err
	}
}
