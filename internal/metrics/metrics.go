package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recomputes      *prometheus.CounterVec
	launches        *prometheus.CounterVec
	configWarnings  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		recomputes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppr_recomputes_total",
				Help: "Goal recomputes by outcome",
			},
			[]string{"outcome"},
		),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppr_launch_transitions_total",
				Help: "Launch lifecycle transitions by action",
			},
			[]string{"action"},
		),
		configWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppr_configuration_warnings_total",
			Help: "Goals evaluated with an unusable configuration, such as an unknown frequency",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.recomputes,
		m.launches,
		m.configWarnings,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests by chi route pattern rather than raw path so
// goal IDs do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) RecomputeDone(outcome string) {
	if m == nil {
		return
	}
	m.recomputes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LaunchTransition(action string) {
	if m == nil {
		return
	}
	m.launches.WithLabelValues(action).Inc()
}

func (m *Metrics) ConfigurationWarning() {
	if m == nil {
		return
	}
	m.configWarnings.Inc()
}
