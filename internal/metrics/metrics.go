package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/locus/internal/places"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Lookups        *prometheus.CounterVec
	LookupErrors   *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	TaskProcessed  *prometheus.CounterVec
	ActiveWorkers  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "place_lookups_total",
			Help: "Total number of place details responses, by API status.",
		}, []string{"status"}),
		LookupErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "place_lookup_errors_total",
			Help: "Total number of place details lookups that failed before an API status was read.",
		}, []string{"kind"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "place_lookup_duration_seconds",
			Help:    "Duration of requests to the place details API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "place_resolver_tasks_processed_total",
			Help: "Total number of place resolution tasks processed.",
		}, []string{"result"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "place_resolver_active_workers",
			Help: "Current number of active workers resolving tasks.",
		}),
	}
}

// ObserveLookup implements places.Observer.
func (m *Metrics) ObserveLookup(backend string, duration time.Duration, resp places.Response, err error) {
	m.RequestSeconds.WithLabelValues(backend).Observe(duration.Seconds())

	if err != nil {
		m.LookupErrors.WithLabelValues(errorKind(err)).Inc()
		return
	}

	m.Lookups.WithLabelValues(string(resp.Status())).Inc()
}

// errorKind classifies the cause of a failed lookup for the "kind" label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, places.ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}
