package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"repx/internal/models"
	"repx/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncFramesIn()
	IncFramesOut()
	IncFramesDropped(reason string)
	IncRatingsNew()
	IncRatingsUpdated()
	IncUndeliverable()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	framesIn            prometheus.Counter
	framesOut           prometheus.Counter
	framesDropped       *prometheus.CounterVec
	ratingsNew          prometheus.Counter
	ratingsUpdated      prometheus.Counter
	undeliverable       prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncFramesIn() {
	m.framesIn.Inc()
}

func (m *MetricsProvider) IncFramesOut() {
	m.framesOut.Inc()
}

func (m *MetricsProvider) IncFramesDropped(reason string) {
	m.framesDropped.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) IncRatingsNew() {
	m.ratingsNew.Inc()
}

func (m *MetricsProvider) IncRatingsUpdated() {
	m.ratingsUpdated.Inc()
}

func (m *MetricsProvider) IncUndeliverable() {
	m.undeliverable.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store *models.RatingStore) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "repx_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repx_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "repx_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		framesIn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_frames_in_total",
			Help: "Total number of transport frames received",
		}),

		framesOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_frames_out_total",
			Help: "Total number of transport frames sent",
		}),

		framesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "repx_frames_dropped_total",
			Help: "Total number of inbound frames dropped before reconciliation",
		}, []string{"reason"}),

		ratingsNew: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_ratings_new_total",
			Help: "Total number of newly stored remote ratings",
		}),

		ratingsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_ratings_updated_total",
			Help: "Total number of remote ratings that replaced an earlier one",
		}),

		undeliverable: promauto.NewCounter(prometheus.CounterOpts{
			Name: "repx_undeliverable_total",
			Help: "Total number of outgoing reviews that could not fit a frame",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "repx_received_ratings_total",
		Help: "Current number of stored received ratings",
	}, func() float64 {
		return float64(store.Counts().Received)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "repx_given_ratings_total",
		Help: "Current number of stored given ratings",
	}, func() float64 {
		return float64(store.Counts().Given)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "repx_known_participants_total",
		Help: "Current number of known participants",
	}, func() float64 {
		return float64(store.Counts().Known)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncFramesIn()                                     {}
func (n *noopMetrics) IncFramesOut()                                    {}
func (n *noopMetrics) IncFramesDropped(_ string)                        {}
func (n *noopMetrics) IncRatingsNew()                                   {}
func (n *noopMetrics) IncRatingsUpdated()                               {}
func (n *noopMetrics) IncUndeliverable()                                {}
