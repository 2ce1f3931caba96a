// Package metrics exposes norm and HTTP counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Petronorm/internal/calc/cipw"
)

type Metrics struct {
	registry *prometheus.Registry
	samples  *prometheus.CounterVec
	warnings *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petronorm",
			Name:      "samples_total",
			Help:      "Norm samples computed, by the state the silica resolver ended in.",
		}, []string{"terminal"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petronorm",
			Name:      "warnings_total",
			Help:      "Per-sample warnings, by kind.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petronorm",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "petronorm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		m.samples, m.warnings, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSample matches the cipw.WithObserver signature.
func (m *Metrics) ObserveSample(s *cipw.SampleNorm, warnings []cipw.Warning) {
	m.samples.WithLabelValues(s.Terminal).Inc()
	for _, w := range warnings {
		m.warnings.WithLabelValues(string(w.Kind)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by their mux route template so that path
// variables do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
