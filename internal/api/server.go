// Package api exposes the text analysis core over a local HTTP/JSON host.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	defaultRequestTimeout = 30 * time.Second
	readHeaderTimeout     = 10 * time.Second
	maxUploadBytes        = 32 << 20
)

// Importer turns an uploaded file into raw text.
type Importer interface {
	Import(ctx context.Context, path string) (string, error)
}

// Options configures the Server.
type Options struct {
	Address        string
	AllowedOrigins []string
	RequestTimeout time.Duration
	// MaxSentences is the summary length used when a request omits it.
	MaxSentences int
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer builds the router. importer may be nil, in which case uploads
// answer 503.
func NewServer(options Options, importer Importer, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              options.Address,
			Handler:           NewRouter(options, importer, log),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: log,
	}
}

// NewRouter wires middleware and routes.
func NewRouter(options Options, importer Importer, log *logger.Logger) http.Handler {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	handler := &handler{
		importer:     importer,
		logger:       log,
		maxSentences: options.MaxSentences,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	if len(options.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: options.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	router.Get("/health", handler.health)

	router.Route("/api", func(api chi.Router) {
		api.Post("/clean", handler.clean)
		api.Post("/sentences", handler.sentences)
		api.Post("/summarize", handler.summarize)
		api.Post("/answer", handler.answer)
		api.Post("/documents", handler.uploadDocument)
	})

	return router
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve http: %w", err)
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infof("Shutting down HTTP server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
