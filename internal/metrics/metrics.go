// Package metrics exposes Prometheus collectors for the knowledge pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal      *prometheus.CounterVec
	bytesFetchedTotal      *prometheus.CounterVec
	fetchDurationSeconds   *prometheus.HistogramVec
	fetchRetriesTotal      *prometheus.CounterVec
	rateLimitDelaysSeconds *prometheus.HistogramVec
	locationsTotal         *prometheus.CounterVec
	reportEntriesTotal     *prometheus.CounterVec

	once sync.Once
	mu   sync.RWMutex
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times. Observe helpers are no-ops
// until Init has run.
func Init() {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_pages_fetched_total",
				Help: "Total number of pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "status"},
		)

		bytesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_bytes_fetched_total",
				Help: "Total number of HTML bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kb_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies including retries.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)

		fetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_fetch_retries_total",
				Help: "Total number of retried operations, labeled by operation kind.",
			},
			[]string{"label"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kb_rate_limit_delays_seconds",
				Help:    "Histogram of Retry-After delays requested by rate limited sites.",
				Buckets: []float64{0, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)

		locationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_locations_total",
				Help: "Total number of normalized locations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		reportEntriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_report_entries_total",
				Help: "Total number of normalization report entries, labeled by kind.",
			},
			[]string{"kind"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one settled page fetch.
func ObservePage(rawURL, status string, bytesFetched int, duration time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	if pagesFetchedTotal == nil {
		return
	}
	site := SanitizeSite(rawURL)
	pagesFetchedTotal.WithLabelValues(site, status).Inc()
	if bytesFetched > 0 {
		bytesFetchedTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
	fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveRetry counts one retry of an operation. Only the label prefix up to
// the first space is used so URLs do not explode label cardinality.
func ObserveRetry(label string) {
	mu.RLock()
	defer mu.RUnlock()
	if fetchRetriesTotal == nil {
		return
	}
	kind, _, _ := strings.Cut(label, " ")
	fetchRetriesTotal.WithLabelValues(kind).Inc()
}

// ObserveRateLimitDelay records the Retry-After requested by a site.
func ObserveRateLimitDelay(rawURL string, delay time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	if rateLimitDelaysSeconds == nil {
		return
	}
	rateLimitDelaysSeconds.WithLabelValues(SanitizeSite(rawURL)).Observe(delay.Seconds())
}

// ObserveLocation counts a normalized location as "emitted" or "rejected".
func ObserveLocation(outcome string) {
	mu.RLock()
	defer mu.RUnlock()
	if locationsTotal == nil {
		return
	}
	locationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveReportEntries adds n report entries of the given kind.
func ObserveReportEntries(kind string, n int) {
	mu.RLock()
	defer mu.RUnlock()
	if reportEntriesTotal == nil || n <= 0 {
		return
	}
	reportEntriesTotal.WithLabelValues(kind).Add(float64(n))
}
