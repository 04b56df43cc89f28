// Package metrics exposes Prometheus collectors for the analysis pipeline,
// the background task runner and the HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dreamtracer"

// Metrics groups the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	analyzerDuration *prometheus.HistogramVec
	analyzerFailures *prometheus.CounterVec
	tasksProcessed   *prometheus.CounterVec
	tasksActive      prometheus.Gauge
	httpDuration     *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
	embeddingCache   *prometheus.CounterVec
	gatherer         prometheus.Gatherer
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// Default returns a Metrics registered once with the global registry.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNew(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return sharedMetrics
}

// MustNew registers the collectors on reg and panics on conflicting
// registrations. Collectors already registered with the same descriptor are reused.
func MustNew(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		analyzerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "analyzer_duration_seconds",
			Help:      "Time spent in each dream analyzer.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"analyzer", "status"}),
		analyzerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "analyzer_failures_total",
			Help:      "Analyzer runs replaced by their default result.",
		}, []string{"analyzer", "reason"}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "processed_total",
			Help:      "Background tasks processed by type and final status.",
		}, []string{"type", "status"}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "active",
			Help:      "Background tasks currently executing.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limiter.",
		}, []string{"route"}),
		embeddingCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "similarity",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result.",
		}, []string{"result"}),
		gatherer: gatherer,
	}

	m.analyzerDuration = register(reg, m.analyzerDuration)
	m.analyzerFailures = register(reg, m.analyzerFailures)
	m.tasksProcessed = register(reg, m.tasksProcessed)
	m.tasksActive = register(reg, m.tasksActive)
	m.httpDuration = register(reg, m.httpDuration)
	m.rateLimited = register(reg, m.rateLimited)
	m.embeddingCache = register(reg, m.embeddingCache)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveAnalyzer records one analyzer run. Non-ok statuses also count as failures.
func (m *Metrics) ObserveAnalyzer(name, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.analyzerDuration.WithLabelValues(name, status).Observe(duration.Seconds())
	if status != "ok" {
		m.analyzerFailures.WithLabelValues(name, status).Inc()
	}
}

// TaskStarted marks a task as executing.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasksActive.Inc()
}

// TaskFinished marks a task as done with the given final status.
func (m *Metrics) TaskFinished(taskType, status string) {
	if m == nil {
		return
	}
	m.tasksActive.Dec()
	m.tasksProcessed.WithLabelValues(taskType, status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(duration.Seconds())
}

// RateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// EmbeddingCacheLookup counts one embedding cache hit or miss.
func (m *Metrics) EmbeddingCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.embeddingCache.WithLabelValues(result).Inc()
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
