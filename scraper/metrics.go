package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request kinds used as metric labels.
const (
	kindPage     = "page"
	kindProbe    = "probe"
	kindDownload = "download"
)

// Metrics bundles Prometheus collectors for a run.
type Metrics struct {
	Registry           *prometheus.Registry
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	LinksTotal         *prometheus.CounterVec
	DownloadsTotal     *prometheus.CounterVec
	DownloadBytesTotal prometheus.Counter
	PageCacheHitsTotal prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themefinder_requests_total",
			Help: "Total HTTP requests issued, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "themefinder_request_duration_seconds",
			Help:    "HTTP request latency by kind.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	links := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themefinder_links_total",
			Help: "Links seen per workflow stage.",
		},
		[]string{"stage"},
	)
	downloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themefinder_downloads_total",
			Help: "Download attempts by outcome.",
		},
		[]string{"outcome"},
	)
	downloadBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "themefinder_download_bytes_total",
			Help: "Bytes written to completed downloads.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "themefinder_page_cache_hits_total",
			Help: "Page fetches served from the in-memory page cache.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themefinder_errors_total",
			Help: "Total number of request errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, links, downloads, downloadBytes, cacheHits, errorsTotal)

	return &Metrics{
		Registry:           registry,
		RequestsTotal:      requests,
		RequestDuration:    requestDuration,
		LinksTotal:         links,
		DownloadsTotal:     downloads,
		DownloadBytesTotal: downloadBytes,
		PageCacheHitsTotal: cacheHits,
		ErrorsTotal:        errorsTotal,
	}
}

// IncRequest increments the requests counter.
func (m *Metrics) IncRequest(kind, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// AddLinks adds n links to a workflow stage.
func (m *Metrics) AddLinks(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.LinksTotal.WithLabelValues(stage).Add(float64(n))
}

// IncDownload counts a finished download attempt.
func (m *Metrics) IncDownload(outcome string, bytes int64) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.DownloadBytesTotal.Add(float64(bytes))
	}
}

// IncCacheHit increments the page cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.PageCacheHitsTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
