// Package server exposes the planner over HTTP: lead qualification,
// diagnostic scoring, report generation, and PDF download.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/report"
	"github.com/leomayn/planner/internal/server/ratelimit"
	"github.com/leomayn/planner/internal/store"
)

// Renderer renders a stored report to PDF bytes. Satisfied by pdf.Renderer.
type Renderer interface {
	Render(ctx context.Context, rec *planner.StoredReport) ([]byte, error)
}

// defaultAllowedOrigins are the browser origins permitted to call the API.
var defaultAllowedOrigins = []string{
	"https://leomayn.com",
	"https://www.leomayn.com",
	"http://localhost:3000",
	"http://localhost:3001",
}

// Config holds the server's dependencies and settings.
type Config struct {
	Port           int
	Assembler      *report.Assembler
	Store          store.ReportStore
	Renderer       Renderer
	RateLimit      *ratelimit.Config
	AllowedOrigins []string
}

// Server is the planner HTTP API server.
type Server struct {
	port       int
	assembler  *report.Assembler
	store      store.ReportStore
	renderer   Renderer
	limiter    *ratelimit.Limiter
	allowed    map[string]bool
	httpServer *http.Server
}

// New creates a server with the given configuration.
func New(cfg Config) *Server {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Server{
		port:      cfg.Port,
		assembler: cfg.Assembler,
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		limiter:   ratelimit.NewLimiter(ratelimit.NewMemoryStore(), cfg.RateLimit),
		allowed:   allowed,
	}
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/planner/qualify", s.handleQualify)
	mux.HandleFunc("POST /api/planner/score", s.handleScore)
	mux.HandleFunc("POST /api/planner/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/planner/pdf/{id}", s.handlePDF)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withOrigin(mux)))
}

// Start runs the server until an interrupt or termination signal arrives,
// then shuts down gracefully.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("planner API listening on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Printf("server stopped")
	return nil
}

// withOrigin rejects browser requests from origins outside the allow-list.
// Requests without an Origin header (curl, email links) pass through.
func (s *Server) withOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !s.allowed[origin] {
			errorResponse(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with its status and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

// withRateLimit applies the sliding-window limiter per client IP and path.
// The health endpoint is exempt.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		info := s.limiter.Allow(extractClientIP(r), r.URL.Path)
		setRateLimitHeaders(w, info)
		if !info.Allowed {
			rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientIP returns the client IP, preferring the first entry of
// X-Forwarded-For so clients behind the production proxy are not collapsed
// into one rate-limit bucket. Falls back to RemoteAddr without the port.
func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
}

func rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
	errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
