// Package web serves the resume optimizer and image generator pages.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/optimizer"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 30 * time.Second

// ImageGenerator produces PNG bytes for a prompt
type ImageGenerator interface {
	GeneratePNG(ctx context.Context, prompt string) ([]byte, error)
}

// ImageFactory creates the image generator for one request. It fails
// with a missing-credential error when no key is configured.
type ImageFactory func() (ImageGenerator, error)

// Config holds server configuration
type Config struct {
	Addr           string
	MaxUploadBytes int64
	Version        string
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	optimizer  *optimizer.Service
	images     ImageFactory
	pages      map[string]*template.Template
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new server instance
func New(cfg Config, svc *optimizer.Service, images ImageFactory) (*Server, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		optimizer: svc,
		images:    images,
		pages:     pages,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /optimize", s.handleOptimize)
	mux.HandleFunc("GET /image", s.handleImageForm)
	mux.HandleFunc("POST /image", s.handleImage)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = withRequestID(withLogging(withRecovery(mux)))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      300 * time.Second, // Long timeout for provider calls
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"resume.html", "image.html"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		clog.Info("server starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		clog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	clog.Info("server stopped")
	return nil
}
