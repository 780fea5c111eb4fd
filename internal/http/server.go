package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	v1 "ppr/internal/api/v1"
	"ppr/internal/metrics"
	"ppr/internal/tracing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

type Server struct {
	api     *v1.Handler
	db      Pinger
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewServer wires the versioned API behind the shared middleware stack. The
// rate limiter's janitor stops when ctx is canceled.
func NewServer(ctx context.Context, api *v1.Handler, db Pinger, logger *slog.Logger, m *metrics.Metrics, tracer trace.Tracer, limit RateLimit) *Server {
	s := &Server{api: api, db: db, logger: logger, metrics: m, tracer: tracer}
	if limit.MaxRequests > 0 && limit.Window > 0 {
		s.limiter = NewRateLimiter(ctx, limit.MaxRequests, limit.Window, tooManyRequests)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware(s.tracer))
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Mount("/", s.api.Routes())
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status, code := "ok", http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"too many requests"}}` + "\n"))
}
