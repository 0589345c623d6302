package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental_sync/internal/app"
	"rental_sync/internal/domain"
)

const namespace = "rental_sync"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "imports_total", Help: "Property imports by outcome."},
		[]string{"outcome"}, // ok|skipped|unsupported_language|failed
	)
	ImportLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "import_duration_seconds",
			Help:    "Wall time of one property import.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	AttributesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "attributes_written_total", Help: "Post meta records upserted."},
		[]string{"stage"}, // topic|script|image
	)
	Images = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "images_total", Help: "Listing images by resolution."},
		[]string{"event"}, // reused|uploaded|skipped
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		Imports, ImportLatency, AttributesWritten, Images)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

// External returns an OnCall hook for an outbound client of service.
func External(service string) func(endpoint string, status int, d time.Duration) {
	return func(endpoint string, status int, d time.Duration) { ObserveExternal(service, endpoint, status, d) }
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveImport records the outcome of one import and what it wrote.
func ObserveImport(res app.Result, err error, dur time.Duration) {
	Imports.WithLabelValues(Outcome(err)).Inc()
	ImportLatency.Observe(dur.Seconds())

	for _, s := range res.Topics {
		AttributesWritten.WithLabelValues("topic").Add(float64(len(s.Keys)))
	}
	for _, s := range res.Scripts {
		AttributesWritten.WithLabelValues("script").Add(float64(len(s.Keys)))
	}
	for _, im := range res.Images {
		AttributesWritten.WithLabelValues("image").Add(float64(len(im.Keys)))
		if im.Reused {
			Images.WithLabelValues("reused").Inc()
		} else {
			Images.WithLabelValues("uploaded").Inc()
		}
	}
	if skipped := res.ImagesFound - len(res.Images); skipped > 0 && err == nil {
		Images.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// Outcome classifies an import error for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrPermanentSkip):
		return "skipped"
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return "unsupported_language"
	default:
		return "failed"
	}
}
